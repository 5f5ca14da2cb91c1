package bundle_test

import (
	"testing"

	"github.com/confshare/confshare/pkg/bundle"
	"github.com/confshare/confshare/pkg/conflict"
	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/filesystem"
	"github.com/confshare/confshare/pkg/manifest"
	"github.com/confshare/confshare/pkg/testutil"
	"github.com/confshare/confshare/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Type: Business Logic
// Covers applying a bundle to a target: conflict outcomes, hook
// merging, secret restoration, locking and the application log.

// packFixture packages the standard source tree and returns the bundle
// directory.
func packFixture(t *testing.T, fs types.FS) string {
	t.Helper()
	testutil.BuildSource(t, fs, "src", sourceTree())
	_, err := bundle.Pack(fs, bundle.PackOptions{
		Name:      "my-setup",
		Version:   "1.0.0",
		SourceDir: "src",
		BundleDir: "share/my-setup",
	})
	require.NoError(t, err)
	return "share/my-setup"
}

func TestApply_CleanTarget(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir: bundleDir,
		TargetDir: "target",
	})
	require.NoError(t, err)

	assert.Equal(t, "my-setup", result.Bundle)
	assert.Equal(t, "1.0.0", result.Version)
	assert.Empty(t, result.Pending)
	assert.Zero(t, result.Failed())

	assert.True(t, testutil.Exists(fs, "target/commands/deploy.md"))
	assert.True(t, testutil.Exists(fs, "target/agents/reviewer.md"))
	assert.True(t, testutil.Exists(fs, "target/skills/changelog/SKILL.md"))
	assert.True(t, testutil.Exists(fs, "target/hooks.json"))
	assert.True(t, testutil.Exists(fs, "target/mcp.json"))

	// Lock is released once the run finishes
	assert.False(t, testutil.Exists(fs, "target/.confshare.lock"))

	// An application record is appended to the manifest
	m, err := manifest.Load(fs, bundleDir+"/manifest.json")
	require.NoError(t, err)
	require.Len(t, m.Applications, 1)
	assert.Equal(t, "target", m.Applications[0].TargetPath)
	assert.Equal(t, "smart", m.Applications[0].HooksMode)
	assert.Equal(t, "1.0.0", m.Applications[0].Version)
	assert.NotEmpty(t, m.Applications[0].ID)
}

func TestApply_ApplicationLogIsAppendOnly(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)

	for _, target := range []string{"target-a", "target-b"} {
		_, err := bundle.Apply(fs, bundle.ApplyOptions{
			BundleDir:      bundleDir,
			TargetDir:      target,
			ConflictPolicy: "overwrite",
		})
		require.NoError(t, err)
	}

	m, err := manifest.Load(fs, bundleDir+"/manifest.json")
	require.NoError(t, err)
	require.Len(t, m.Applications, 2)
	assert.Equal(t, "target-a", m.Applications[0].TargetPath)
	assert.Equal(t, "target-b", m.Applications[1].TargetPath)
	assert.NotEqual(t, m.Applications[0].ID, m.Applications[1].ID)
}

func TestApply_ConflictSkip(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)
	testutil.WriteFile(t, fs, "target/commands/deploy.md", "local version\n")

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir:      bundleDir,
		TargetDir:      "target",
		ConflictPolicy: "skip",
	})
	require.NoError(t, err)

	assert.Equal(t, "local version\n", testutil.ReadFile(t, fs, "target/commands/deploy.md"))
	assert.Equal(t, bundle.StatusSkipped, statusOf(t, result, types.CategoryCommands, "deploy"))
	// Non-colliding artifacts still land
	assert.True(t, testutil.Exists(fs, "target/commands/lint.md"))
}

func TestApply_ConflictOverwrite(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)
	testutil.WriteFile(t, fs, "target/commands/deploy.md", "local version\n")

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir:      bundleDir,
		TargetDir:      "target",
		ConflictPolicy: "overwrite",
	})
	require.NoError(t, err)

	assert.NotEqual(t, "local version\n", testutil.ReadFile(t, fs, "target/commands/deploy.md"))
	assert.Equal(t, bundle.StatusReplaced, statusOf(t, result, types.CategoryCommands, "deploy"))
}

func TestApply_ConflictRename(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)
	testutil.WriteFile(t, fs, "target/commands/deploy.md", "local version\n")

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir:      bundleDir,
		TargetDir:      "target",
		ConflictPolicy: "rename",
	})
	require.NoError(t, err)

	// The local artifact is untouched, the incoming one gets an alias
	assert.Equal(t, "local version\n", testutil.ReadFile(t, fs, "target/commands/deploy.md"))
	assert.True(t, testutil.Exists(fs, "target/commands/deploy_1.md"))
	assert.Equal(t, bundle.StatusRenamed, statusOf(t, result, types.CategoryCommands, "deploy"))
}

func TestApply_AskLeavesPending(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)
	testutil.WriteFile(t, fs, "target/commands/deploy.md", "local version\n")

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir: bundleDir,
		TargetDir: "target",
	})
	require.NoError(t, err)

	require.Len(t, result.Pending, 1)
	assert.Equal(t, types.CategoryCommands, result.Pending[0].Category)
	assert.Equal(t, "deploy", result.Pending[0].Name)
	assert.Equal(t, bundle.StatusPending, statusOf(t, result, types.CategoryCommands, "deploy"))

	// The pending artifact is untouched, everything else is applied
	assert.Equal(t, "local version\n", testutil.ReadFile(t, fs, "target/commands/deploy.md"))
	assert.True(t, testutil.Exists(fs, "target/commands/lint.md"))
	assert.Positive(t, result.Applied())
}

func TestApply_AskWithResolution(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)
	testutil.WriteFile(t, fs, "target/commands/deploy.md", "local version\n")

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir: bundleDir,
		TargetDir: "target",
		Resolutions: map[string]conflict.Policy{
			conflict.Key(types.CategoryCommands, "deploy"): conflict.PolicyOverwrite,
		},
	})
	require.NoError(t, err)

	assert.Empty(t, result.Pending)
	assert.Equal(t, bundle.StatusReplaced, statusOf(t, result, types.CategoryCommands, "deploy"))
	assert.NotEqual(t, "local version\n", testutil.ReadFile(t, fs, "target/commands/deploy.md"))
}

func TestApply_HooksSmartMerge(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)
	existing := `{
  "post_tool_use": [
    {"type": "command", "tool_name": "edit", "description": "format on save"}
  ]
}
`
	testutil.WriteFile(t, fs, "target/hooks.json", existing)

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir:      bundleDir,
		TargetDir:      "target",
		ConflictPolicy: "overwrite",
	})
	require.NoError(t, err)

	require.NotNil(t, result.HookReport)
	assert.Equal(t, 1, result.HookReport.AddedCount())
	assert.Zero(t, result.HookReport.RemovedCount())

	merged := testutil.ReadFile(t, fs, "target/hooks.json")
	assert.Contains(t, merged, "format on save")
	assert.Contains(t, merged, "audit shell usage")
}

func TestApply_HooksSkipMode(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)
	existing := `{"post_tool_use": [{"type": "command", "tool_name": "edit"}]}` + "\n"
	testutil.WriteFile(t, fs, "target/hooks.json", existing)

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir:      bundleDir,
		TargetDir:      "target",
		HooksMode:      "skip",
		ConflictPolicy: "overwrite",
	})
	require.NoError(t, err)

	assert.Equal(t, existing, testutil.ReadFile(t, fs, "target/hooks.json"))
	assert.Equal(t, bundle.StatusSkipped, statusOf(t, result, types.CategoryHooks, "hooks"))
}

func TestApply_RestoresSecretsFromEnv(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)
	testutil.WriteFile(t, fs, "target/.env", "GITHUB_API_TOKEN=real-token-value\n")

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir:      bundleDir,
		TargetDir:      "target",
		ConflictPolicy: "overwrite",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Restored)
	assert.Empty(t, result.Missing)
	mcp := testutil.ReadFile(t, fs, "target/mcp.json")
	assert.Contains(t, mcp, "real-token-value")
	assert.NotContains(t, mcp, "${GITHUB_API_TOKEN}")
}

func TestApply_ReportsMissingVariables(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir: bundleDir,
		TargetDir: "target",
	})
	require.NoError(t, err)

	assert.Zero(t, result.Restored)
	assert.Contains(t, result.Missing, "GITHUB_API_TOKEN")
	// The placeholder is kept, never guessed at
	assert.Contains(t, testutil.ReadFile(t, fs, "target/mcp.json"), "${GITHUB_API_TOKEN}")
}

func TestApply_TargetLocked(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)
	testutil.WriteFile(t, fs, "target/.confshare.lock", "{}")

	_, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir: bundleDir,
		TargetDir: "target",
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrLocked))
}

func TestApply_DryRun(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)

	result, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir: bundleDir,
		TargetDir: "target",
		DryRun:    true,
	})
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Positive(t, result.Applied())
	assert.False(t, testutil.Exists(fs, "target"))

	m, err := manifest.Load(fs, bundleDir+"/manifest.json")
	require.NoError(t, err)
	assert.Empty(t, m.Applications)
}

func TestApply_MissingBundle(t *testing.T) {
	fs := filesystem.NewMemory()

	_, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir: "share/ghost",
		TargetDir: "target",
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrNotFound))
}

func TestApply_InvalidModeAndPolicy(t *testing.T) {
	fs := filesystem.NewMemory()
	bundleDir := packFixture(t, fs)

	_, err := bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir: bundleDir,
		TargetDir: "target",
		HooksMode: "merge-ish",
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))

	_, err = bundle.Apply(fs, bundle.ApplyOptions{
		BundleDir:      bundleDir,
		TargetDir:      "target",
		ConflictPolicy: "clobber",
	})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func statusOf(t *testing.T, result *bundle.ApplyResult, category types.Category, name string) bundle.ArtifactStatus {
	t.Helper()
	for _, a := range result.Artifacts {
		if a.Category == category && a.Name == name {
			return a.Status
		}
	}
	t.Fatalf("no result for %s/%s", category, name)
	return ""
}
