// Test Type: Unit Test
// Description: Tests for the filesystem package - FS implementations over afero and the OS

package filesystem_test

import (
	"path/filepath"
	"testing"

	"github.com/confshare/confshare/pkg/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	fsys := filesystem.NewMemory()

	require.NoError(t, fsys.MkdirAll("/bundle/commands", 0755))
	require.NoError(t, fsys.WriteFile("/bundle/commands/review.md", []byte("# review"), 0644))

	data, err := fsys.ReadFile("/bundle/commands/review.md")
	require.NoError(t, err)
	assert.Equal(t, "# review", string(data))

	entries, err := fsys.ReadDir("/bundle/commands")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "review.md", entries[0].Name())
}

func TestMemoryCreateExclusive(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/target", 0755))

	require.NoError(t, fsys.CreateExclusive("/target/.lock", []byte("pid"), 0644))
	assert.Error(t, fsys.CreateExclusive("/target/.lock", []byte("pid"), 0644))
}

func TestMemoryRenameReplacesExisting(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/target", 0755))
	require.NoError(t, fsys.WriteFile("/target/hooks.json", []byte("old"), 0644))
	require.NoError(t, fsys.WriteFile("/target/hooks.json.tmp", []byte("new"), 0644))

	require.NoError(t, fsys.Rename("/target/hooks.json.tmp", "/target/hooks.json"))

	data, err := fsys.ReadFile("/target/hooks.json")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestOSRoundTrip(t *testing.T) {
	fsys := filesystem.NewOS()
	dir := t.TempDir()

	path := filepath.Join(dir, "manifest.json")
	require.NoError(t, fsys.WriteFile(path, []byte("{}"), 0644))

	require.NoError(t, fsys.CreateExclusive(filepath.Join(dir, ".lock"), nil, 0644))
	assert.Error(t, fsys.CreateExclusive(filepath.Join(dir, ".lock"), nil, 0644))

	require.NoError(t, fsys.WriteFile(path+".tmp", []byte(`{"a":1}`), 0644))
	require.NoError(t, fsys.Rename(path+".tmp", path))

	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(data))
}
