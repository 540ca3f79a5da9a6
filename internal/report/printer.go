// Package report writes the operator-facing progress and dump output.
package report

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/joseph-ayodele/cufe-extractor/constants"
	"github.com/joseph-ayodele/cufe-extractor/internal/cufe"
	"github.com/joseph-ayodele/cufe-extractor/internal/entity"
	"github.com/joseph-ayodele/cufe-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cufe-extractor/internal/services/batch"
)

const timeLayout = "2006-01-02 15:04:05"

type Options struct {
	NoColor    bool
	PreviewLen int // characters of the CUFE shown while processing; <= 0 shows all
}

// Printer implements batch.Reporter.
type Printer struct {
	w          io.Writer
	previewLen int
	colors     map[string]*color.Color
}

func NewPrinter(w io.Writer, opts Options) *Printer {
	p := &Printer{
		w:          w,
		previewLen: opts.PreviewLen,
		colors: map[string]*color.Color{
			"title":    color.New(color.FgWhite, color.Bold),
			"file":     color.New(color.FgCyan),
			"positive": color.New(color.FgGreen),
			"negative": color.New(color.FgRed),
			"warning":  color.New(color.FgYellow),
		},
	}
	if opts.NoColor {
		for _, c := range p.colors {
			c.DisableColor()
		}
	}
	return p
}

// Header announces how many files will be processed.
func (p *Printer) Header(found int) {
	fmt.Fprintf(p.w, "Found %d PDF files\n", found)
	fmt.Fprintln(p.w, strings.Repeat("-", 60))
}

func (p *Printer) FileStarted(_, _ int, path string) {
	fmt.Fprintf(p.w, "Processing: %s\n", p.colors["file"].Sprint(filepath.Base(path)))
}

func (p *Printer) FileDone(res pipeline.FileResult) {
	fmt.Fprintf(p.w, "  - Pages: %d\n", res.Record.PageCount)
	fmt.Fprintf(p.w, "  - Size: %s\n", res.Record.FileSize)
	if res.Record.HasIdentifier() {
		fmt.Fprintf(p.w, "  - CUFE: %s\n", p.colors["positive"].Sprint(cufe.Preview(*res.Record.Identifier, p.previewLen)))
	} else {
		fmt.Fprintf(p.w, "  - CUFE: %s\n", p.colors["warning"].Sprint("not found"))
	}
	if res.Status == constants.StatusFailed && res.Err != nil {
		fmt.Fprintf(p.w, "  - Error: %s\n", p.colors["negative"].Sprint(res.Err.Error()))
	}
	fmt.Fprintln(p.w)
}

// Completion closes the progress block.
func (p *Printer) Completion(sum batch.Summary, dbPath string) {
	fmt.Fprintln(p.w, strings.Repeat("-", 60))
	fmt.Fprintf(p.w, "Processing complete. Data saved to '%s'\n", dbPath)
	fmt.Fprintf(p.w, "Processed: %d  Matched: %s  Not found: %s  Failed: %s\n",
		sum.Processed,
		p.colors["positive"].Sprint(sum.Matched),
		p.colors["warning"].Sprint(sum.NotFound),
		p.colors["negative"].Sprint(sum.Failed),
	)
}

// Warn prints an operator message such as a missing directory.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.colors["warning"].Sprintf(format, args...))
}

// Dump prints every stored record.
func (p *Printer) Dump(recs []*entity.ExtractionRecord) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, strings.Repeat("=", 80))
	fmt.Fprintln(p.w, p.colors["title"].Sprint("DATABASE CONTENTS"))
	fmt.Fprintln(p.w, strings.Repeat("=", 80))

	for _, r := range recs {
		ident := "not found"
		if r.HasIdentifier() {
			ident = *r.Identifier
		}
		fmt.Fprintf(p.w, "\nID: %d\n", r.ID)
		fmt.Fprintf(p.w, "File name: %s\n", r.FileName)
		fmt.Fprintf(p.w, "Pages: %d\n", r.PageCount)
		fmt.Fprintf(p.w, "CUFE: %s\n", ident)
		fmt.Fprintf(p.w, "File size: %s\n", r.FileSize)
		fmt.Fprintf(p.w, "Extracted at: %s\n", r.ExtractedAt.Format(timeLayout))
		fmt.Fprintln(p.w, strings.Repeat("-", 40))
	}
}
