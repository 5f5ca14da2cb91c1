// Package testutil provides shared helpers for confshare tests:
// filesystem fixtures built on the in-memory FS and builders for
// source trees and bundles.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/confshare/confshare/pkg/types"
	"github.com/stretchr/testify/require"
)

// WriteFile writes content to path on fs, creating parent directories.
// It fails the test on error.
func WriteFile(t *testing.T, fs types.FS, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, fs.WriteFile(path, []byte(content), 0644))
}

// MkdirAll creates a directory tree on fs, failing the test on error.
func MkdirAll(t *testing.T, fs types.FS, path string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(path, 0755))
}

// ReadFile reads path from fs, failing the test on error.
func ReadFile(t *testing.T, fs types.FS, path string) string {
	t.Helper()
	data, err := fs.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Exists reports whether path exists on fs.
func Exists(fs types.FS, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

// Markdown builds a markdown artifact with YAML front matter.
func Markdown(name, description, body string) string {
	return "---\nname: " + name + "\ndescription: " + description + "\n---\n\n" + body + "\n"
}
