package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cufe-extractor/internal/entity"
	"github.com/joseph-ayodele/cufe-extractor/internal/repository"
)

func seed(t *testing.T, path string, names ...string) {
	t.Helper()
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: path}, nil)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.EnsureSchema(ctx))
	repo := repository.NewRecordRepository(db, nil)
	for _, n := range names {
		_, err := repo.Create(ctx, entity.ExtractionRecord{FileName: n, PageCount: 1, FileSize: "1 B"})
		require.NoError(t, err)
	}
}

func TestDump(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cufe.db")
	jsonPath := filepath.Join(t.TempDir(), "out.json")
	seed(t, dbPath, "a.pdf", "b.pdf")

	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{dbPath, "--no-color", "--json", jsonPath})
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	require.NoError(t, cmd.ExecuteContext(context.Background()), stderr.String())

	assert.Contains(t, stdout.String(), "DATABASE CONTENTS")
	assert.Contains(t, stdout.String(), "File name: a.pdf\n")
	assert.Contains(t, stdout.String(), "File name: b.pdf\n")

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var doc struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, 2, doc.Count)
}

func TestDump_MissingDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "none.db")

	var stdout bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{dbPath, "--no-color"})
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Equal(t, "Database '"+dbPath+"' does not exist.\n", stdout.String())
	_, err := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}
