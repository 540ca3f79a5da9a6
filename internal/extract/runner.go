package extract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"
)

// Runner runs an external command. Tests swap in a fake.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// CommandRunner runs commands with os/exec and logs every invocation.
type CommandRunner struct {
	Logger *slog.Logger
	// MaxStderr bounds the stderr kept in the failure log; 0 means 8 KiB.
	MaxStderr int
}

func (r CommandRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := r.MaxStderr
	if limit <= 0 {
		limit = 8 << 10
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	attrs := []any{
		"cmd", filepath.Base(name),
		"args", args,
		"duration_ms", time.Since(start).Milliseconds(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			attrs = append(attrs, "exit_code", exitErr.ExitCode())
		}
		logger.Error("command failed", append(attrs, "error", err, "stderr", truncate(stderr.String(), limit))...)
		return stdout.Bytes(), stderr.Bytes(), err
	}

	logger.Debug("command finished", append(attrs, "stdout_bytes", stdout.Len())...)
	return stdout.Bytes(), stderr.Bytes(), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
