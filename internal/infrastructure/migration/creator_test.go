package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add review index", "add_review_index"},
		{"Add-Review-Index", "add_review_index"},
		{"ADD__REVIEW__INDEX", "add_review_index"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_SequentialVersions(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "init schema", "tables", createdAt)
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_init_schema.up.sql"), first.UpPath)

	second, err := CreateMigration(dir, "add sku index", "", createdAt)
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	up, err := os.ReadFile(second.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add sku index")
	assert.Contains(t, string(up), "2026-03-10T09:00:00Z")

	down, err := os.ReadFile(second.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "", createdAt)
	assert.Error(t, err)
}

func TestListMigrations_OrdersByVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"000010_late.up.sql":   {},
		"000010_late.down.sql": {},
		"000002_mid.up.sql":    {},
		"000001_init.up.sql":   {},
		"README.md":            {},
		"notes.up.sql":         {},
	}

	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init", "000002_mid", "000010_late"}, names)
}

func TestListMigrations_MissingDir(t *testing.T) {
	names, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "missing")))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestEmbedded_ContainsInitSchema(t *testing.T) {
	names, err := Embedded()
	require.NoError(t, err)
	require.NotEmpty(t, names)
	assert.Equal(t, "000001_init_schema", names[0])
}
