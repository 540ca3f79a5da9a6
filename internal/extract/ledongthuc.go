package extract

import (
	"context"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// LedongthucReader reads PDFs with github.com/ledongthuc/pdf.
type LedongthucReader struct{}

func (LedongthucReader) Name() string { return "ledongthuc" }

func (LedongthucReader) Open(_ context.Context, path string) (doc Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	// the library panics on malformed objects instead of returning errors;
	// f is ours until the document takes it over
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("error reading PDF: %v", rec)
		}
		if err != nil {
			_ = f.Close()
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	r, err := pdf.NewReader(f, fi.Size())
	if err != nil {
		return nil, fmt.Errorf("error opening PDF: %w", err)
	}
	return &ledongthucDoc{
		f:     f,
		r:     r,
		pages: r.NumPage(),
	}, nil
}

type ledongthucDoc struct {
	f     *os.File
	r     *pdf.Reader
	pages int
}

func (d *ledongthucDoc) NumPages() int { return d.pages }

func (d *ledongthucDoc) PageText(n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: %v", n, rec)
		}
	}()

	p := d.r.Page(n)
	if p.V.IsNull() {
		return "", nil
	}
	// font names are page-scoped, so no cache is shared across pages
	return p.GetPlainText(nil)
}

func (d *ledongthucDoc) Close() error {
	return d.f.Close()
}
