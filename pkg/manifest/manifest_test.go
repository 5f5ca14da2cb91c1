// Test Type: Unit Test
// Description: Tests for the manifest package - validation, content resolution, atomic save and the append-only application log

package manifest_test

import (
	"encoding/json"
	"testing"

	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/filesystem"
	"github.com/confshare/confshare/pkg/manifest"
	"github.com/confshare/confshare/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManifest() *manifest.Manifest {
	m := manifest.New("my-tools", "1.0.0")
	m.Content[types.CategoryCommands] = []string{"all"}
	m.Content[types.CategoryAgents] = []string{"code-reviewer"}
	m.Exclude[types.CategoryCommands] = []string{"scratch"}
	return m
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *manifest.Manifest)
		code    errors.ErrorCode
		wantErr bool
	}{
		{name: "valid", mutate: func(m *manifest.Manifest) {}},
		{
			name:    "empty_name",
			mutate:  func(m *manifest.Manifest) { m.Name = "" },
			code:    errors.ErrValidation,
			wantErr: true,
		},
		{
			name:    "name_not_kebab",
			mutate:  func(m *manifest.Manifest) { m.Name = "My Tools" },
			code:    errors.ErrValidation,
			wantErr: true,
		},
		{
			name:    "bad_version",
			mutate:  func(m *manifest.Manifest) { m.Version = "1.0" },
			code:    errors.ErrInvalidVersion,
			wantErr: true,
		},
		{
			name:    "unknown_category",
			mutate:  func(m *manifest.Manifest) { m.Content["plugins"] = []string{"x"} },
			code:    errors.ErrValidation,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManifest()
			tt.mutate(m)
			err := m.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code))
		})
	}
}

func TestResolveContent(t *testing.T) {
	m := newTestManifest()
	available := []string{"review", "deploy", "scratch"}

	t.Run("all_sentinel_minus_exclude", func(t *testing.T) {
		resolved := m.ResolveContent(types.CategoryCommands, available)
		assert.Equal(t, []string{"review", "deploy"}, resolved)
	})

	t.Run("explicit_names_filtered_by_available", func(t *testing.T) {
		resolved := m.ResolveContent(types.CategoryAgents, []string{"code-reviewer", "other"})
		assert.Equal(t, []string{"code-reviewer"}, resolved)
	})

	t.Run("unlisted_category_is_empty", func(t *testing.T) {
		assert.Empty(t, m.ResolveContent(types.CategorySkills, []string{"pdf-tools"}))
	})

	t.Run("missing_explicit_name_dropped", func(t *testing.T) {
		resolved := m.ResolveContent(types.CategoryAgents, []string{"unrelated"})
		assert.Empty(t, resolved)
	})
}

func TestHasResolvedContent(t *testing.T) {
	m := newTestManifest()

	assert.True(t, m.HasResolvedContent(map[types.Category][]string{
		types.CategoryCommands: {"review"},
	}))

	// Nothing available in any included category violates the invariant.
	assert.False(t, m.HasResolvedContent(map[types.Category][]string{
		types.CategorySkills: {"pdf-tools"},
	}))
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/share/my-tools", 0755))

	m := newTestManifest()
	require.NoError(t, m.Save(fsys, "/share/my-tools/manifest.json"))

	loaded, err := manifest.Load(fsys, "/share/my-tools/manifest.json")
	require.NoError(t, err)

	assert.Equal(t, m.Name, loaded.Name)
	assert.Equal(t, m.Version, loaded.Version)
	assert.Equal(t, m.Content, loaded.Content)
	assert.Equal(t, m.Exclude, loaded.Exclude)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/share/my-tools", 0755))

	m := newTestManifest()
	require.NoError(t, m.Save(fsys, "/share/my-tools/manifest.json"))

	entries, err := fsys.ReadDir("/share/my-tools")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "manifest.json", entries[0].Name())
}

func TestSaveInvalidManifestRefused(t *testing.T) {
	fsys := filesystem.NewMemory()
	m := newTestManifest()
	m.Version = "not-semver"

	err := m.Save(fsys, "/manifest.json")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidVersion))
}

func TestLoadMissing(t *testing.T) {
	fsys := filesystem.NewMemory()
	_, err := manifest.Load(fsys, "/nowhere/manifest.json")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	fsys := filesystem.NewMemory()
	require.NoError(t, fsys.MkdirAll("/b", 0755))

	tests := []struct {
		name string
		doc  string
		code errors.ErrorCode
	}{
		{
			name: "not_json",
			doc:  "{oops",
			code: errors.ErrValidation,
		},
		{
			name: "missing_version",
			doc:  `{"name":"my-tools","content":{}}`,
			code: errors.ErrManifestInvalid,
		},
		{
			name: "content_not_object",
			doc:  `{"name":"my-tools","version":"1.0.0","content":[]}`,
			code: errors.ErrManifestInvalid,
		},
		{
			name: "bad_category_key",
			doc:  `{"name":"my-tools","version":"1.0.0","content":{"plugins":["x"]}}`,
			code: errors.ErrManifestInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, fsys.WriteFile("/b/manifest.json", []byte(tt.doc), 0644))
			_, err := manifest.Load(fsys, "/b/manifest.json")
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, tt.code), "got %v", err)
		})
	}
}

func TestAppendApplicationIsAppendOnly(t *testing.T) {
	m := newTestManifest()

	m.AppendApplication(manifest.Application{
		TargetPath: "/proj/.claude",
		HooksMode:  "smart",
		Version:    "1.0.0",
	})
	first := m.Applications[0]
	assert.NotEmpty(t, first.ID)

	// A second apply to the same target appends, never replaces.
	m.AppendApplication(manifest.Application{
		TargetPath: "/proj/.claude",
		HooksMode:  "replace",
		Version:    "1.0.1",
	})

	require.Len(t, m.Applications, 2)
	assert.Equal(t, first, m.Applications[0])
	assert.Equal(t, "replace", m.Applications[1].HooksMode)
}

func TestApplicationTimestampsSerializeISO8601(t *testing.T) {
	m := newTestManifest()
	m.AppendApplication(manifest.Application{
		TargetPath: "/proj/.claude",
		HooksMode:  "smart",
		Version:    "1.0.0",
	})

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"applied_at":"`)
	assert.Contains(t, string(data), `"created_at":"`)
}
