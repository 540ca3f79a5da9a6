package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cufe-extractor/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		timeout    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "dbhealth [db_path]",
		Short: "Ping the CUFE database and print the record count",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			dbPath := ""
			if len(args) > 0 {
				dbPath = args[0]
			}
			return run(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), configPath, dbPath, timeout)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "YAML configuration file")
	cmd.Flags().DurationVar(&timeout, "timeout", time.Second, "ping timeout")
	return cmd
}

func run(ctx context.Context, stdout, stderr io.Writer, configPath, dbArg string, timeout time.Duration) error {
	cfg, logger, err := bootstrap.Load(bootstrap.Options{ConfigPath: configPath, DBPath: dbArg, LogOutput: stderr})
	if err != nil {
		return err
	}
	if !bootstrap.StoreExists(cfg.Database.Path) {
		return fmt.Errorf("database %q does not exist", cfg.Database.Path)
	}

	db, records, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.HealthCheck(ctx, timeout); err != nil {
		return fmt.Errorf("DB health: FAIL (%w)", err)
	}
	fmt.Fprintln(stdout, "DB health: OK")

	n, err := records.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting records: %w", err)
	}
	fmt.Fprintf(stdout, "dialect: %s\n", db.Dialect())
	fmt.Fprintf(stdout, "records: %d\n", n)
	return nil
}
