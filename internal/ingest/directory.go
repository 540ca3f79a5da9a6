package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/cufe-extractor/constants"
	"github.com/joseph-ayodele/cufe-extractor/internal/common"
)

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned uint32
	Matched uint32
}

// ListCandidates returns the PDF files directly inside dir, in directory order.
// Subdirectories are not descended into and the extension match ignores case.
func ListCandidates(dir string) ([]string, DirStats, error) {
	var stats DirStats
	if strings.TrimSpace(dir) == "" {
		return nil, stats, common.ConfigError("pdf directory is required", common.ErrInvalidInput)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, stats, common.ConfigError(fmt.Sprintf("directory %q does not exist", dir), common.ErrDirNotFound)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, stats, fmt.Errorf("read dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		stats.Scanned++
		if e.IsDir() || !constants.IsAllowedExt(filepath.Ext(e.Name())) {
			continue
		}
		stats.Matched++
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, stats, common.ConfigError(fmt.Sprintf("no pdf files found in %q", dir), common.ErrNoCandidates)
	}
	return files, stats, nil
}
