package utils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteFileOverwrites(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	path, err := WriteFile(dir, "ABC.pdf", []byte("first"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ABC.pdf"), path)

	_, err = WriteFile(dir, "ABC.pdf", []byte("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestGetFileURL(t *testing.T) {
	assert.Equal(t, "/certificates/ABC.png", GetFileURL("/certificates/", "ABC.png"))
	assert.Equal(t, "https://cdn.example.com/c/ABC.png", GetFileURL("https://cdn.example.com/c", "ABC.png"))
	assert.Equal(t, "", GetFileURL("/certificates", ""))
}

func TestBuildNotificationEmail(t *testing.T) {
	html := BuildNotificationEmail("Ada", "Course completed", "Well done", "View certificate", "https://x/verify/1", "https://x/1.png")
	assert.Contains(t, html, "Dear Ada")
	assert.Contains(t, html, `href="https://x/verify/1"`)
	assert.Contains(t, html, `src="https://x/1.png"`)

	html = BuildNotificationEmail("Ada", "Enrolled", "Welcome", "", "", "")
	assert.NotContains(t, html, "<img")
	assert.NotContains(t, html, `class="btn"`)
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	_, err := InitializeCertificateScheduler("not a spec", time.Minute, func(ctx context.Context) error { return nil })
	assert.Error(t, err)
}
