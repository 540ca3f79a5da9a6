package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/cufe-extractor/constants"
	"github.com/joseph-ayodele/cufe-extractor/internal/common"
	"github.com/joseph-ayodele/cufe-extractor/internal/cufe"
	"github.com/joseph-ayodele/cufe-extractor/internal/entity"
	"github.com/joseph-ayodele/cufe-extractor/internal/extract"
	"github.com/joseph-ayodele/cufe-extractor/internal/utils"
)

// FileResult is the outcome of processing one PDF. Record is always usable
// for persistence; Err is set only when Status is StatusFailed.
type FileResult struct {
	Path   string
	Record entity.ExtractionRecord
	Status constants.ExtractStatus
	Tier   cufe.Tier
	Method string
	Err    error
}

// Processor turns a PDF path into a FileResult: file metadata, text, then the
// CUFE matcher.
type Processor struct {
	Logger    *slog.Logger
	Extractor extract.TextExtractor
}

func NewProcessor(logger *slog.Logger, ex extract.TextExtractor) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, Extractor: ex}
}

// Process never fails: extraction errors are logged and reported through
// the result so the caller can persist the record and move on.
func (p *Processor) Process(ctx context.Context, path string) FileResult {
	name := filepath.Base(path)
	res := FileResult{
		Path: path,
		Record: entity.ExtractionRecord{
			FileName: name,
			FileSize: utils.FormatFileSize(0),
		},
	}
	log := p.Logger.With("run_id", common.RunIDFromContext(ctx), "file", name)

	if info, err := os.Stat(path); err != nil {
		log.Warn("stat failed", "error", err)
	} else {
		res.Record.FileSize = utils.FormatFileSize(info.Size())
	}

	out, err := p.Extractor.Extract(common.WithFile(ctx, name), path)
	res.Record.PageCount = out.Pages
	res.Method = out.Method
	if err != nil {
		res.Status = constants.StatusFailed
		res.Err = fmt.Errorf("%w: %s: %w", common.ErrExtraction, name, err)
		log.Error("pdf processing failed", "pages", out.Pages, "error", err)
		return res
	}
	for _, w := range out.Warnings {
		log.Warn("extraction warning", "warning", w)
	}

	m := cufe.Match(out.Text)
	res.Tier = m.Tier
	if !m.Found() {
		res.Status = constants.StatusNotFound
		log.Info("no cufe found", "pages", out.Pages, "method", out.Method)
		return res
	}
	id := m.Value
	res.Record.Identifier = &id
	res.Status = constants.StatusMatched
	log.Info("cufe extracted",
		"pages", out.Pages,
		"method", out.Method,
		"tier", m.Tier.String(),
		"duration_ms", out.Duration.Milliseconds(),
	)
	return res
}
