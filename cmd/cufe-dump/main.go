package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cufe-extractor/internal/bootstrap"
	"github.com/joseph-ayodele/cufe-extractor/internal/export"
	"github.com/joseph-ayodele/cufe-extractor/internal/report"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

type options struct {
	configPath string
	xlsxPath   string
	jsonPath   string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "cufe-dump [db_path]",
		Short: "Print the stored CUFE records",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			dbPath := ""
			if len(args) > 0 {
				dbPath = args[0]
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, dbPath)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "YAML configuration file")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "write the records to this XLSX file")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "write the records to this JSON file")
	cmd.Flags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, opts options, dbArg string) error {
	cfg, logger, err := bootstrap.Load(bootstrap.Options{
		ConfigPath: opts.configPath,
		DBPath:     dbArg,
		NoColor:    opts.noColor,
		LogOutput:  stderr,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	out := report.NewPrinter(stdout, report.Options{NoColor: cfg.Output.NoColor})
	if !bootstrap.StoreExists(cfg.Database.Path) {
		out.Warn("Database '%s' does not exist.", cfg.Database.Path)
		return nil
	}

	db, records, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	recs, err := records.List(ctx)
	if err != nil {
		return err
	}
	out.Dump(recs)

	svc := export.NewService(records, logger)
	if opts.xlsxPath != "" {
		data, err := svc.ExportXLSX(ctx)
		if err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
		if err := export.WriteFile(opts.xlsxPath, data); err != nil {
			return err
		}
	}
	if opts.jsonPath != "" {
		data, err := svc.ExportJSON(ctx)
		if err != nil {
			return fmt.Errorf("json export: %w", err)
		}
		if err := export.WriteFile(opts.jsonPath, data); err != nil {
			return err
		}
	}
	return nil
}
