package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cufe-extractor/internal/bootstrap"
	"github.com/joseph-ayodele/cufe-extractor/internal/common"
	"github.com/joseph-ayodele/cufe-extractor/internal/export"
	"github.com/joseph-ayodele/cufe-extractor/internal/extract"
	"github.com/joseph-ayodele/cufe-extractor/internal/ingest"
	"github.com/joseph-ayodele/cufe-extractor/internal/pipeline"
	"github.com/joseph-ayodele/cufe-extractor/internal/report"
	"github.com/joseph-ayodele/cufe-extractor/internal/repository"
	"github.com/joseph-ayodele/cufe-extractor/internal/services/batch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if common.IsConfigError(err) {
			fmt.Fprintln(os.Stderr, "Run 'cufe-extract --help' for usage.")
		}
		os.Exit(1)
	}
}

type options struct {
	configPath string
	xlsxPath   string
	jsonPath   string
	backend    string
	noColor    bool
	watch      bool
	debounce   time.Duration
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "cufe-extract <pdf_directory> [db_path]",
		Short: "Extract CUFE identifiers from PDF invoices into a database",
		Example: "  cufe-extract ./invoices\n" +
			"  cufe-extract ./invoices invoices.db --xlsx invoices.xlsx",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			dbPath := ""
			if len(args) > 1 {
				dbPath = args[1]
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, args[0], dbPath)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "also export the table to this XLSX file")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "also export the table to this JSON file")
	cmd.Flags().StringVar(&opts.backend, "backend", "", "text extraction backend: auto, ledongthuc, pdfcpu or pdftotext")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "keep running and process PDFs added to the directory")
	cmd.Flags().DurationVar(&opts.debounce, "debounce", 2*time.Second, "quiet period before a watched file is processed")

	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, opts options, dir, dbArg string) error {
	cfg, logger, err := bootstrap.Load(bootstrap.Options{
		ConfigPath: opts.configPath,
		DBPath:     dbArg,
		Backend:    opts.backend,
		NoColor:    opts.noColor,
		LogOutput:  stderr,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	out := report.NewPrinter(stdout, report.Options{NoColor: cfg.Output.NoColor, PreviewLen: cfg.Output.PreviewLen})
	st := &store{cfg: cfg, logger: logger}
	defer st.close()

	files, stats, err := ingest.ListCandidates(dir)
	switch {
	case errors.Is(err, common.ErrDirNotFound):
		out.Warn("Error: directory '%s' does not exist.", dir)
	case errors.Is(err, common.ErrNoCandidates):
		out.Warn("No PDF files found in '%s'", dir)
	case err != nil:
		return err
	}
	logger.Debug("directory scanned", "dir", dir, "scanned", stats.Scanned, "matched", stats.Matched)

	if err == nil || (opts.watch && errors.Is(err, common.ErrNoCandidates)) {
		records, err := st.open(ctx)
		if err != nil {
			return err
		}
		proc := pipeline.NewProcessor(logger, extract.NewExtractor(cfg.Extract, logger))
		svc := batch.NewService(proc, records, out, logger)

		if len(files) > 0 {
			out.Header(len(files))
			sum, err := svc.Run(ctx, files)
			if err != nil {
				return err
			}
			out.Completion(sum, cfg.Database.Path)
		}
		if opts.watch {
			if err := watch(ctx, svc, out, logger, dir, opts.debounce); err != nil {
				return err
			}
		}
	}

	// the dump and exports also run after an interrupt in watch mode
	return dump(context.WithoutCancel(ctx), st, out, opts)
}

// store opens the database once, on first use.
type store struct {
	cfg     *common.Config
	logger  *slog.Logger
	db      *repository.DB
	records repository.RecordRepository
}

func (s *store) open(ctx context.Context) (repository.RecordRepository, error) {
	if s.db != nil {
		return s.records, nil
	}
	db, records, err := bootstrap.OpenStore(ctx, s.cfg, s.logger)
	if err != nil {
		return nil, err
	}
	s.db, s.records = db, records
	return records, nil
}

func (s *store) close() {
	if s.db != nil {
		s.db.Close()
	}
}

func watch(ctx context.Context, svc *batch.Service, out *report.Printer, logger *slog.Logger, dir string, debounce time.Duration) error {
	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{Dir: dir, Debounce: debounce, Logger: logger})
	if err != nil {
		return err
	}
	out.Warn("Watching '%s' for new PDF files (Ctrl+C to stop)", dir)

	ctx = common.WithRunID(ctx, "watch")
	n := 0
	for {
		select {
		case path, ok := <-events:
			if !ok {
				return nil
			}
			n++
			out.FileStarted(n, 0, path)
			res, err := svc.ProcessFile(ctx, path)
			if err != nil {
				return err
			}
			out.FileDone(res)
		case err, ok := <-errs:
			if ok {
				logger.Warn("watch error", "error", err)
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func dump(ctx context.Context, st *store, out *report.Printer, opts options) error {
	path := st.cfg.Database.Path
	if st.db == nil && !bootstrap.StoreExists(path) {
		out.Warn("Database '%s' does not exist.", path)
		return nil
	}
	records, err := st.open(ctx)
	if err != nil {
		return err
	}
	if err := writeExports(ctx, records, st.logger, opts.xlsxPath, opts.jsonPath); err != nil {
		return err
	}

	recs, err := records.List(ctx)
	if err != nil {
		return err
	}
	out.Dump(recs)
	return nil
}

func writeExports(ctx context.Context, records repository.RecordRepository, logger *slog.Logger, xlsxPath, jsonPath string) error {
	if xlsxPath == "" && jsonPath == "" {
		return nil
	}
	svc := export.NewService(records, logger)
	if xlsxPath != "" {
		data, err := svc.ExportXLSX(ctx)
		if err != nil {
			return common.WrapError(err, "xlsx export")
		}
		if err := export.WriteFile(xlsxPath, data); err != nil {
			return err
		}
	}
	if jsonPath != "" {
		data, err := svc.ExportJSON(ctx)
		if err != nil {
			return common.WrapError(err, "json export")
		}
		if err := export.WriteFile(jsonPath, data); err != nil {
			return err
		}
	}
	return nil
}
