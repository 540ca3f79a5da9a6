package extract

import (
	"context"
	"fmt"
	"strings"
)

// PdftotextReader shells out to poppler's pdftotext and splits its output on
// form feeds, one element per page.
type PdftotextReader struct {
	Bin    string
	Runner Runner
}

func (PdftotextReader) Name() string { return "pdftotext" }

func (p PdftotextReader) Open(ctx context.Context, path string) (Document, error) {
	bin := p.Bin
	if bin == "" {
		bin = "pdftotext"
	}
	// pdftotext -enc UTF-8 -eol unix <path> -
	out, errb, err := p.Runner.Run(ctx, bin, "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		if msg := strings.TrimSpace(string(errb)); msg != "" {
			return nil, fmt.Errorf("pdftotext: %w: %s", err, truncate(msg, 512))
		}
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	return textDoc(splitPages(string(out))), nil
}

// splitPages breaks pdftotext output into pages. Every page is terminated by
// a form feed, so the trailing empty element is dropped.
func splitPages(out string) []string {
	if out == "" {
		return nil
	}
	pages := strings.Split(out, "\f")
	if last := len(pages) - 1; strings.TrimSpace(pages[last]) == "" {
		pages = pages[:last]
	}
	return pages
}

// textDoc is a Document over text that is already split into pages.
type textDoc []string

func (d textDoc) NumPages() int { return len(d) }

func (d textDoc) PageText(n int) (string, error) {
	if n < 1 || n > len(d) {
		return "", fmt.Errorf("page %d out of range (1..%d)", n, len(d))
	}
	return d[n-1], nil
}

func (textDoc) Close() error { return nil }
