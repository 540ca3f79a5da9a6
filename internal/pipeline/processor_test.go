package pipeline

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cufe-extractor/constants"
	"github.com/joseph-ayodele/cufe-extractor/internal/common"
	"github.com/joseph-ayodele/cufe-extractor/internal/cufe"
	"github.com/joseph-ayodele/cufe-extractor/internal/extract"
	"github.com/joseph-ayodele/cufe-extractor/internal/testutil"
)

type stubExtractor struct {
	res extract.TextExtractionResult
	err error
}

func (s stubExtractor) Extract(context.Context, string) (extract.TextExtractionResult, error) {
	return s.res, s.err
}

func writeFile(t *testing.T, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "factura.pdf")
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte{'x'}, size), 0o644))
	return path
}

func TestProcess_Matched(t *testing.T) {
	id := testutil.HexID(97)
	split := id[:40] + "\n" + id[40:]
	path := writeFile(t, 2048)

	p := NewProcessor(nil, stubExtractor{res: extract.TextExtractionResult{
		Text:   "Factura\nCUFE: " + split + "\nTotal",
		Pages:  3,
		Method: "stub",
	}})
	res := p.Process(context.Background(), path)

	assert.Equal(t, constants.StatusMatched, res.Status)
	assert.NoError(t, res.Err)
	assert.Equal(t, cufe.TierSplit, res.Tier)
	assert.Equal(t, "factura.pdf", res.Record.FileName)
	assert.Equal(t, 3, res.Record.PageCount)
	assert.Equal(t, "2.00 KB", res.Record.FileSize)
	require.NotNil(t, res.Record.Identifier)
	assert.Equal(t, id, *res.Record.Identifier)
}

func TestProcess_NotFound(t *testing.T) {
	path := writeFile(t, 512)
	p := NewProcessor(nil, stubExtractor{res: extract.TextExtractionResult{Text: "no identifier here", Pages: 1}})

	res := p.Process(context.Background(), path)
	assert.Equal(t, constants.StatusNotFound, res.Status)
	assert.Nil(t, res.Record.Identifier)
	assert.Equal(t, "512 B", res.Record.FileSize)
	assert.Equal(t, 1, res.Record.PageCount)
	assert.NoError(t, res.Err)
}

func TestProcess_ExtractionFailureKeepsMetadata(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	path := writeFile(t, 100)

	// text is present but must be ignored when the extractor fails
	p := NewProcessor(logger, stubExtractor{
		res: extract.TextExtractionResult{Text: testutil.HexID(96), Pages: 4},
		err: errors.New("page 3: bad stream"),
	})
	res := p.Process(common.WithRunID(context.Background(), "run-1"), path)

	assert.Equal(t, constants.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, common.ErrExtraction)
	assert.Contains(t, res.Err.Error(), "bad stream")
	assert.Nil(t, res.Record.Identifier)
	assert.Equal(t, 4, res.Record.PageCount)
	assert.Equal(t, "100 B", res.Record.FileSize)

	out := logs.String()
	assert.True(t, strings.Contains(out, `"file":"factura.pdf"`), out)
	assert.Contains(t, out, `"run_id":"run-1"`)
	assert.Contains(t, out, "bad stream")
}

func TestProcess_MissingFileStillProducesRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.pdf")
	p := NewProcessor(nil, stubExtractor{err: errors.New("open: no such file")})

	res := p.Process(context.Background(), path)
	assert.Equal(t, constants.StatusFailed, res.Status)
	assert.Equal(t, "gone.pdf", res.Record.FileName)
	assert.Equal(t, "0 B", res.Record.FileSize)
	assert.Equal(t, 0, res.Record.PageCount)
}

func TestProcess_RealPDF(t *testing.T) {
	id := testutil.HexID(99)
	path := filepath.Join(t.TempDir(), "real.pdf")
	testutil.WritePDF(t, path, []string{"FACTURA", "CUFE: " + id})

	p := NewProcessor(nil, extract.NewExtractor(common.ExtractConfig{Backend: common.BackendAuto}, nil))
	res := p.Process(context.Background(), path)

	require.Equal(t, constants.StatusMatched, res.Status, "err: %v", res.Err)
	assert.Equal(t, 1, res.Record.PageCount)
	assert.Equal(t, id, *res.Record.Identifier)
	assert.Equal(t, "ledongthuc", res.Method)
}
