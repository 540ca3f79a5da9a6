package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/cufe-extractor/internal/common"
)

// Extractor reads a PDF with an ordered list of readers. The first reader that
// gets through every page wins; otherwise the result with the most pages is
// returned together with the joined errors.
type Extractor struct {
	readers  []Reader
	maxPages int
	logger   *slog.Logger
}

func NewExtractor(cfg common.ExtractConfig, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	var readers []Reader
	switch cfg.Backend {
	case common.BackendLedongthuc:
		readers = []Reader{LedongthucReader{}}
	case common.BackendPdfcpu:
		readers = []Reader{PdfcpuReader{}}
	case common.BackendPdftotext:
		readers = []Reader{PdftotextReader{Bin: cfg.Pdftotext, Runner: CommandRunner{Logger: logger}}}
	default:
		readers = []Reader{LedongthucReader{}, PdfcpuReader{}}
	}
	return newExtractor(readers, cfg.MaxPages, logger)
}

func newExtractor(readers []Reader, maxPages int, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{readers: readers, maxPages: maxPages, logger: logger}
}

// Extract implements TextExtractor.
func (e *Extractor) Extract(ctx context.Context, path string) (TextExtractionResult, error) {
	start := time.Now()
	logger := e.logger
	if name := common.FileFromContext(ctx); name != "" {
		logger = logger.With("file", name)
	}
	var (
		best TextExtractionResult
		errs []error
	)
	for _, r := range e.readers {
		logger.Debug("starting text extraction", "path", path, "method", r.Name())
		res, err := e.read(ctx, r, path)
		res.Duration = time.Since(start)
		if err == nil {
			logger.Debug("text extracted",
				"path", path,
				"method", res.Method,
				"pages", res.Pages,
				"chars", len(res.Text),
				"duration_ms", res.Duration.Milliseconds(),
			)
			return res, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		logger.Warn("reader failed", "path", path, "method", r.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
		best.Warnings = append(best.Warnings, res.Warnings...)
		if res.Pages > best.Pages {
			best.Pages = res.Pages
			best.Method = res.Method
		}
	}
	if len(errs) == 0 {
		return best, errors.New("no readers configured")
	}
	best.Duration = time.Since(start)
	return best, errors.Join(errs...)
}

func (e *Extractor) read(ctx context.Context, r Reader, path string) (TextExtractionResult, error) {
	res := TextExtractionResult{Method: r.Name()}

	doc, err := r.Open(ctx, path)
	if err != nil {
		return res, err
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("failed to close document", "path", path, "error", cerr)
		}
	}()

	res.Pages = doc.NumPages()
	limit := res.Pages
	if e.maxPages > 0 && limit > e.maxPages {
		limit = e.maxPages
		res.Warnings = append(res.Warnings, fmt.Sprintf("only the first %d of %d pages were read", limit, res.Pages))
	}

	var b strings.Builder
	for n := 1; n <= limit; n++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		txt, err := doc.PageText(n)
		if err != nil {
			return res, err
		}
		if txt != "" {
			b.WriteString(txt)
			b.WriteByte('\n')
		}
	}
	res.Text = b.String()
	return res, nil
}
