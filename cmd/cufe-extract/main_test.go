package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cufe-extractor/internal/testutil"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestExtract_ProcessesDirectory(t *testing.T) {
	dir := t.TempDir()
	id := testutil.HexID(99)
	testutil.WritePDF(t, filepath.Join(dir, "valid.pdf"), []string{"FACTURA"}, []string{"CUFE: " + id})
	testutil.WriteCorrupt(t, filepath.Join(dir, "broken.PDF"))

	out := t.TempDir()
	dbPath := filepath.Join(out, "cufe.db")
	xlsxPath := filepath.Join(out, "cufe.xlsx")
	jsonPath := filepath.Join(out, "cufe.json")

	stdout, stderr, err := execute(t, dir, dbPath, "--no-color", "--xlsx", xlsxPath, "--json", jsonPath)
	require.NoError(t, err, stderr)

	assert.Contains(t, stdout, "Found 2 PDF files\n")
	assert.Contains(t, stdout, "Processing: valid.pdf\n  - Pages: 2\n")
	assert.Contains(t, stdout, "  - CUFE: "+id[:50]+"...\n")
	assert.Contains(t, stdout, "Processing: broken.PDF\n  - Pages: 0\n  - Size: 18 B\n  - CUFE: not found\n")
	assert.Contains(t, stdout, "Data saved to '"+dbPath+"'")
	assert.Contains(t, stdout, "DATABASE CONTENTS")
	assert.Contains(t, stdout, "CUFE: "+id+"\n")
	assert.Contains(t, stderr, "pdf processing failed")

	for _, p := range []string{dbPath, xlsxPath, jsonPath} {
		info, err := os.Stat(p)
		require.NoError(t, err, p)
		assert.NotZero(t, info.Size())
	}

	// rerunning appends a second set of rows
	stdout, _, err = execute(t, dir, dbPath, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "\nID: 4\n")
}

func TestExtract_MissingDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cufe.db")

	stdout, _, err := execute(t, filepath.Join(t.TempDir(), "nope"), dbPath, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "does not exist.")
	assert.Contains(t, stdout, "Database '"+dbPath+"' does not exist.")
	assert.NotContains(t, stdout, "Processing:")

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestExtract_EmptyDirectoryStillDumpsExistingDatabase(t *testing.T) {
	src := t.TempDir()
	testutil.WritePDF(t, filepath.Join(src, "one.pdf"), []string{"no identifier"})
	dbPath := filepath.Join(t.TempDir(), "cufe.db")

	_, _, err := execute(t, src, dbPath, "--no-color")
	require.NoError(t, err)

	stdout, _, err := execute(t, t.TempDir(), dbPath, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, stdout, "No PDF files found in")
	assert.Contains(t, stdout, "File name: one.pdf\n")
	assert.Contains(t, stdout, "CUFE: not found\n")
}

func TestExtract_Usage(t *testing.T) {
	stdout, _, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, stdout, "cufe-extract <pdf_directory> [db_path]")
}

func TestExtract_BadBackend(t *testing.T) {
	_, _, err := execute(t, t.TempDir(), filepath.Join(t.TempDir(), "x.db"), "--backend", "ocr")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extract backend")
}
