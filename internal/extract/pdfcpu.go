package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PdfcpuReader reads PDFs with pdfcpu and recovers text from the string
// operands of the page content streams. It parses files ledongthuc rejects
// (xref streams, broken trailers) but ignores font encodings.
type PdfcpuReader struct{}

// pdfcpu otherwise creates and reads a config dir under the user's home.
var disableConfigDir sync.Once

func (PdfcpuReader) Name() string { return "pdfcpu" }

func (PdfcpuReader) Open(_ context.Context, path string) (doc Document, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rec := recover(); rec != nil {
			doc, err = nil, fmt.Errorf("pdfcpu read: %v", rec)
		}
		if err != nil {
			_ = f.Close()
		}
	}()

	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return &pdfcpuDoc{f: f, ctx: ctx}, nil
}

type pdfcpuDoc struct {
	f   *os.File
	ctx *model.Context
}

func (d *pdfcpuDoc) NumPages() int { return d.ctx.PageCount }

func (d *pdfcpuDoc) PageText(n int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("page %d: %v", n, rec)
		}
	}()

	r, err := pdfcpu.ExtractPageContent(d.ctx, n)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", n, err)
	}
	if r == nil {
		return "", nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("page %d: %w", n, err)
	}
	return contentText(data), nil
}

func (d *pdfcpuDoc) Close() error {
	return d.f.Close()
}
