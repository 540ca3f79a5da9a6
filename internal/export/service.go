package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cufe-extractor/internal/entity"
	"github.com/joseph-ayodele/cufe-extractor/internal/repository"
	"github.com/joseph-ayodele/cufe-extractor/internal/utils"
)

const sheet = "CUFE"

// Service is a tiny façade over the record repository that writes table dumps.
type Service struct {
	records repository.RecordRepository
	logger  *slog.Logger
}

func NewService(records repository.RecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// ExportXLSX returns an XLSX workbook (as bytes) with one row per stored record.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	start := time.Now()
	recs, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("failed to close workbook", "error", err)
		}
	}()
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	headers := []string{"ID", "File Name", "Pages", "CUFE", "File Size", "Extracted At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range recs {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.ID)
		write(2, r.FileName)
		write(3, r.PageCount)
		write(4, utils.StrOrEmpty(r.Identifier))
		write(5, r.FileSize)
		write(6, r.ExtractedAt.UTC().Format("2006-01-02 15:04:05"))
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 8)   // id
	_ = f.SetColWidth(sheet, "B", "B", 36)  // file name
	_ = f.SetColWidth(sheet, "C", "C", 8)   // pages
	_ = f.SetColWidth(sheet, "D", "D", 100) // cufe
	_ = f.SetColWidth(sheet, "E", "E", 12)  // size
	_ = f.SetColWidth(sheet, "F", "F", 20)  // timestamp

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// Document is the JSON export layout.
type Document struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Count       int                        `json:"count"`
	Records     []*entity.ExtractionRecord `json:"records"`
}

// ExportJSON returns the stored records as an indented JSON document that has
// been checked against RecordsSchema.
func (s *Service) ExportJSON(ctx context.Context) ([]byte, error) {
	start := time.Now()
	recs, err := s.records.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	if recs == nil {
		recs = []*entity.ExtractionRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Document{GeneratedAt: time.Now().UTC(), Count: len(recs), Records: recs}); err != nil {
		return nil, fmt.Errorf("json encode: %w", err)
	}
	if err := ValidateJSONAgainstSchema(RecordsSchema(), buf.Bytes()); err != nil {
		s.logger.Error("export.json.invalid", "error", err)
		return nil, err
	}

	s.logger.Info("export.json.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// WriteFile writes data to path, replacing any existing file.
func WriteFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
