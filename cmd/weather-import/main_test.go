package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weather-archive/internal/models"
	"weather-archive/internal/spreadsheet/spreadsheettest"
)

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: error
database:
  driver: sqlite3
  sqlite_path: `+filepath.Join(dir, "weather.db")+`
  max_conns: 1
ingest:
  time_zone: Europe/Moscow
`), 0o600))
	return path
}

func TestRun_ImportsFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	file := filepath.Join(dir, "jan.xlsx")
	require.NoError(t, os.WriteFile(file, spreadsheettest.Month(t, "01.2023", 3), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg, file}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	var res models.UploadResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.Equal(t, 3, res.Persisted)
	assert.Equal(t, "jan.xlsx", res.Files[0].Name)
}

func TestRun_MalformedFileFails(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	file := filepath.Join(dir, "bad.xlsx")
	require.NoError(t, os.WriteFile(file, []byte("not a workbook"), 0o600))

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg, file}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	var res models.UploadResult
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &res))
	assert.Equal(t, 0, res.Persisted)
	assert.NotEmpty(t, res.Error)
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	assert.Equal(t, 2, run(nil, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage: weather-import")
	assert.Equal(t, 2, run([]string{"-unknown"}, &stdout, &stderr))
}

func TestRun_MissingFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	var stdout, stderr bytes.Buffer
	code := run([]string{"-config", cfg, filepath.Join(dir, "missing.xlsx")}, &stdout, &stderr)

	assert.Equal(t, 1, code)
}
