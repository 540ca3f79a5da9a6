package batch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/cufe-extractor/constants"
	"github.com/joseph-ayodele/cufe-extractor/internal/common"
	"github.com/joseph-ayodele/cufe-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cufe-extractor/internal/repository"
)

// FileProcessor turns one PDF into a record. *pipeline.Processor implements it.
type FileProcessor interface {
	Process(ctx context.Context, path string) pipeline.FileResult
}

// Reporter receives progress for operator output.
type Reporter interface {
	FileStarted(index, total int, path string)
	FileDone(res pipeline.FileResult)
}

// Summary counts the outcomes of a run.
type Summary struct {
	RunID     string
	Found     int
	Processed int
	Matched   int
	NotFound  int
	Failed    int
	Duration  time.Duration
}

func (s *Summary) add(res pipeline.FileResult) {
	s.Processed++
	switch res.Status {
	case constants.StatusMatched:
		s.Matched++
	case constants.StatusNotFound:
		s.NotFound++
	default:
		s.Failed++
	}
}

// Service processes files one at a time and persists a record for each.
type Service struct {
	processor FileProcessor
	records   repository.RecordRepository
	reporter  Reporter
	logger    *slog.Logger
}

// NewService creates a batch service. reporter may be nil.
func NewService(p FileProcessor, records repository.RecordRepository, reporter Reporter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		processor: p,
		records:   records,
		reporter:  reporter,
		logger:    logger,
	}
}

// Run processes files in order. Per-file extraction failures are counted and
// still persisted; a store failure stops the run and is returned wrapped in
// common.ErrDatabase.
func (s *Service) Run(ctx context.Context, files []string) (Summary, error) {
	start := time.Now()
	sum := Summary{RunID: uuid.NewString(), Found: len(files)}
	ctx = common.WithRunID(ctx, sum.RunID)
	log := s.logger.With("run_id", sum.RunID)

	log.Info("batch started", "files", len(files))
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			log.Warn("batch interrupted", "processed", sum.Processed, "error", err)
			sum.Duration = time.Since(start)
			return sum, err
		}
		if s.reporter != nil {
			s.reporter.FileStarted(i+1, len(files), path)
		}
		res, err := s.ProcessFile(ctx, path)
		if err != nil {
			sum.Duration = time.Since(start)
			return sum, err
		}
		sum.add(res)
		if s.reporter != nil {
			s.reporter.FileDone(res)
		}
	}
	sum.Duration = time.Since(start)

	log.Info("batch finished",
		"found", sum.Found,
		"processed", sum.Processed,
		"matched", sum.Matched,
		"not_found", sum.NotFound,
		"failed", sum.Failed,
		"duration_ms", sum.Duration.Milliseconds(),
	)
	return sum, nil
}

// ProcessFile extracts one file and stores its record. The returned error is
// non-nil only when the record could not be stored.
func (s *Service) ProcessFile(ctx context.Context, path string) (pipeline.FileResult, error) {
	res := s.processor.Process(ctx, path)

	stored, err := s.records.Create(ctx, res.Record)
	if err != nil {
		s.logger.Error("failed to store record",
			"run_id", common.RunIDFromContext(ctx),
			"file", filepath.Base(path),
			"error", err,
		)
		return res, fmt.Errorf("%w: store %s: %w", common.ErrDatabase, res.Record.FileName, err)
	}
	res.Record = *stored
	s.logger.Info("record stored",
		"run_id", common.RunIDFromContext(ctx),
		"id", stored.ID,
		"file", stored.FileName,
		"status", string(res.Status),
		"tier", res.Tier.String(),
		"method", res.Method,
	)
	return res, nil
}
