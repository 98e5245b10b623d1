package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Level II Security Officer":    "level-ii-security-officer",
		"  Firearms -- Renewal (2025)": "firearms-renewal-2025",
		"Exam2":                        "exam2",
		"!!!":                          "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", Truncate("héllo world", 5))
	assert.Equal(t, "short", Truncate("short", 10))
}

func TestGetFileURL(t *testing.T) {
	assert.Equal(t, "", GetFileURL(""))
	assert.Equal(t, "/uploads/school/logo.png", GetFileURL("school/logo.png"))
	assert.Equal(t, "/uploads/school/logo.png", GetFileURL("/school/logo.png"))
}

func TestResolveUploadPath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "school"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "school", "sig.png"), []byte("x"), 0o644))

	assert.Equal(t, filepath.Join(dir, "school", "sig.png"), ResolveUploadPath(dir, "/uploads/school/sig.png"))
	assert.Equal(t, filepath.Join(dir, "school", "sig.png"), ResolveUploadPath(dir, "school/sig.png"))
	assert.Equal(t, "assets/other.png", ResolveUploadPath(dir, "assets/other.png"))
	assert.Equal(t, "/abs/file.png", ResolveUploadPath(dir, "/abs/file.png"))
	assert.Equal(t, "", ResolveUploadPath(dir, ""))
}
