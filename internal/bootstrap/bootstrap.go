// Package bootstrap wires configuration, logging and the store for the cmds.
package bootstrap

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/cufe-extractor/internal/common"
	"github.com/joseph-ayodele/cufe-extractor/internal/repository"
)

// Options are command-line overrides. Empty fields keep the configured value.
type Options struct {
	ConfigPath string
	DBPath     string
	Backend    string
	NoColor    bool
	LogOutput  io.Writer
}

// Load resolves configuration (defaults, YAML file, env, then opts) and builds
// the process logger.
func Load(opts Options) (*common.Config, *slog.Logger, error) {
	cfg, err := common.LoadConfigFile(opts.ConfigPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.DBPath != "" {
		cfg.Database.Path = opts.DBPath
	}
	if opts.Backend != "" {
		cfg.Extract.Backend = opts.Backend
	}
	if opts.NoColor {
		cfg.Output.NoColor = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	w := opts.LogOutput
	if w == nil {
		w = os.Stderr
	}
	return cfg, common.NewLogger(cfg.Log, w), nil
}

func RepositoryConfig(c common.DatabaseConfig) repository.Config {
	return repository.Config{
		DSN:         c.Path,
		MaxConns:    c.MaxConns,
		DialTimeout: c.DialTimeout,
		BusyTimeout: c.BusyTimeout,
	}
}

// OpenStore opens the configured database and makes sure the records table exists.
func OpenStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, repository.RecordRepository, error) {
	db, err := repository.Open(ctx, RepositoryConfig(cfg.Database), logger)
	if err != nil {
		return nil, nil, common.NewAppError(common.CodeDatabase, "opening database", errors.Join(common.ErrDatabase, err))
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, common.NewAppError(common.CodeDatabase, "preparing schema", errors.Join(common.ErrDatabase, err))
	}
	return db, repository.NewRecordRepository(db, logger), nil
}

// StoreExists reports whether there is anything to read at path. Postgres
// DSNs are always assumed to exist.
func StoreExists(path string) bool {
	if repository.IsPostgresDSN(path) {
		return true
	}
	_, err := os.Stat(path)
	return err == nil
}
