package extract

import (
	"context"
	"time"
)

// Document is the capability the extractor needs from a PDF library.
// Pages are numbered from 1.
type Document interface {
	NumPages() int
	// PageText returns the best-effort plain text of a page; empty is valid.
	PageText(page int) (string, error)
	Close() error
}

// Reader opens a file as a Document.
type Reader interface {
	Name() string
	Open(ctx context.Context, path string) (Document, error)
}

// TextExtractor turns a file into concatenated page text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text     string
	Pages    int
	Method   string // reader name: "ledongthuc" | "pdfcpu" | "pdftotext"
	Duration time.Duration
	Warnings []string
}
