package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cufe-extractor/internal/common"
	"github.com/joseph-ayodele/cufe-extractor/internal/testutil"
)

type stubDoc struct {
	pages  []string
	failAt int
	closed bool
}

func (d *stubDoc) NumPages() int { return len(d.pages) }

func (d *stubDoc) PageText(n int) (string, error) {
	if n == d.failAt {
		return "", errors.New("bad page")
	}
	return d.pages[n-1], nil
}

func (d *stubDoc) Close() error {
	d.closed = true
	return nil
}

type stubReader struct {
	name string
	doc  *stubDoc
	err  error
}

func (r stubReader) Name() string { return r.name }

func (r stubReader) Open(context.Context, string) (Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.doc, nil
}

func TestLedongthucReader_GeneratedPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.pdf")
	testutil.WritePDF(t, path,
		[]string{"FACTURA ELECTRONICA", "Total: 1.000,00"},
		[]string{"Second page"},
	)

	doc, err := LedongthucReader{}.Open(context.Background(), path)
	require.NoError(t, err)
	defer doc.Close()

	assert.Equal(t, 2, doc.NumPages())

	first, err := doc.PageText(1)
	require.NoError(t, err)
	assert.Contains(t, first, "FACTURA ELECTRONICA")
	assert.Contains(t, first, "Total: 1.000,00")

	second, err := doc.PageText(2)
	require.NoError(t, err)
	assert.Contains(t, second, "Second page")
}

func TestReaders_RejectCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	testutil.WriteCorrupt(t, path)

	for _, r := range []Reader{LedongthucReader{}, PdfcpuReader{}} {
		t.Run(r.Name(), func(t *testing.T) {
			doc, err := r.Open(context.Background(), path)
			assert.Error(t, err)
			assert.Nil(t, doc)
		})
	}
}

// openFDs counts the descriptors held by this process.
func openFDs(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Skip("no /proc/self/fd on this platform")
	}
	return len(entries)
}

// damagedVariants returns copies of a valid PDF that are cut short, or that
// keep the header and trailer but lose a slice of the body so the xref
// offsets point at the wrong bytes.
func damagedVariants(data []byte) [][]byte {
	var out [][]byte
	for n := 16; n < len(data); n += 16 {
		out = append(out, append([]byte(nil), data[:n]...))
	}
	tail := bytes.Index(data, []byte("\nxref\n")) + 1
	for n := 16; n < tail; n += 24 {
		v := append([]byte(nil), data[:n]...)
		out = append(out, append(v, data[tail:]...))
	}
	return out
}

func TestReaders_ReleaseHandleOnDamagedFile(t *testing.T) {
	dir := t.TempDir()
	data := testutil.BuildPDF([]string{"FACTURA ELECTRONICA", testutil.HexID(96)}, []string{"page two"})
	variants := damagedVariants(data)
	require.NotEmpty(t, variants)

	for _, r := range []Reader{LedongthucReader{}, PdfcpuReader{}} {
		t.Run(r.Name(), func(t *testing.T) {
			open := func(path string) {
				doc, err := r.Open(context.Background(), path)
				if err == nil {
					require.NoError(t, doc.Close())
				}
			}
			// the first open may set up runtime descriptors of its own
			warm := filepath.Join(dir, r.Name()+"-warm.pdf")
			require.NoError(t, os.WriteFile(warm, variants[0], 0o644))
			open(warm)

			before := openFDs(t)
			for i, v := range variants {
				path := filepath.Join(dir, fmt.Sprintf("%s-%03d.pdf", r.Name(), i))
				require.NoError(t, os.WriteFile(path, v, 0o644))
				open(path)
			}
			after := openFDs(t)

			assert.LessOrEqual(t, after, before+2, "%d damaged files opened", len(variants))
		})
	}
}

func TestExtractor_Ledongthuc(t *testing.T) {
	id := testutil.HexID(99)
	path := filepath.Join(t.TempDir(), "invoice.pdf")
	testutil.WritePDF(t, path,
		[]string{"Invoice 42"},
		[]string{"CUFE:", id},
	)

	ex := NewExtractor(common.ExtractConfig{Backend: common.BackendLedongthuc}, nil)
	res, err := ex.Extract(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, "ledongthuc", res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Contains(t, res.Text, "Invoice 42")
	assert.Contains(t, res.Text, id)
	assert.Less(t, strings.Index(res.Text, "Invoice 42"), strings.Index(res.Text, id))
}

func TestExtractor_AutoCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.pdf")
	testutil.WriteCorrupt(t, path)

	ex := NewExtractor(common.ExtractConfig{Backend: common.BackendAuto}, nil)
	res, err := ex.Extract(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ledongthuc")
	assert.Contains(t, err.Error(), "pdfcpu")
	assert.Equal(t, 0, res.Pages)
	assert.Empty(t, res.Text)
}

func TestExtractor_FallsBackToNextReader(t *testing.T) {
	second := &stubDoc{pages: []string{"hello", "", "world"}}
	ex := newExtractor([]Reader{
		stubReader{name: "first", err: errors.New("cannot parse")},
		stubReader{name: "second", doc: second},
	}, 0, nil)

	res, err := ex.Extract(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, "second", res.Method)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, "hello\nworld\n", res.Text)
	assert.True(t, second.closed)
}

func TestExtractor_KeepsPageCountOnPageFailure(t *testing.T) {
	doc := &stubDoc{pages: []string{"a", "b", "c"}, failAt: 2}
	ex := newExtractor([]Reader{stubReader{name: "only", doc: doc}}, 0, nil)

	res, err := ex.Extract(context.Background(), "x.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad page")
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, "only", res.Method)
	assert.True(t, doc.closed)
}

func TestExtractor_PicksResultWithMostPages(t *testing.T) {
	ex := newExtractor([]Reader{
		stubReader{name: "a", err: errors.New("no")},
		stubReader{name: "b", doc: &stubDoc{pages: []string{"x", "y"}, failAt: 1}},
	}, 0, nil)

	res, err := ex.Extract(context.Background(), "x.pdf")
	require.Error(t, err)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "b", res.Method)
}

func TestExtractor_MaxPages(t *testing.T) {
	doc := &stubDoc{pages: []string{"one", "two", "three"}}
	ex := newExtractor([]Reader{stubReader{name: "only", doc: doc}}, 2, nil)

	res, err := ex.Extract(context.Background(), "x.pdf")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Pages)
	assert.Equal(t, "one\ntwo\n", res.Text)
	assert.Len(t, res.Warnings, 1)
}

func TestExtractor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ex := newExtractor([]Reader{
		stubReader{name: "a", doc: &stubDoc{pages: []string{"x"}}},
		stubReader{name: "b", doc: &stubDoc{pages: []string{"y"}}},
	}, 0, nil)
	_, err := ex.Extract(ctx, "x.pdf")
	assert.ErrorIs(t, err, context.Canceled)
}
