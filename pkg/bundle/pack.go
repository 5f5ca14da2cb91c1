package bundle

import (
	"encoding/json"
	"path/filepath"

	"github.com/confshare/confshare/pkg/artifacts"
	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/logging"
	"github.com/confshare/confshare/pkg/manifest"
	"github.com/confshare/confshare/pkg/paths"
	"github.com/confshare/confshare/pkg/sanitize"
	"github.com/confshare/confshare/pkg/types"
)

// PackOptions configures one packaging run.
type PackOptions struct {
	// Name is the bundle name (kebab-case).
	Name string

	// Version is the initial bundle version. Defaults to 0.1.0.
	Version string

	Description string
	Author      string

	// SourceDir is the assistant configuration directory to package.
	SourceDir string

	// BundleDir is the destination directory for the bundle.
	BundleDir string

	// Content selects what to include per category. Empty means
	// everything discovered in the source.
	Content map[types.Category][]string

	// Exclude removes names from the selection per category.
	Exclude map[types.Category][]string

	// SkipSanitize disables secret sanitization. The result records a
	// warning so the omission is visible.
	SkipSanitize bool

	// Force overwrites an existing bundle directory.
	Force bool

	// DryRun plans the pack without writing anything.
	DryRun bool
}

// PackResult reports what a packaging run produced.
type PackResult struct {
	BundleDir     string             `json:"bundle_dir"`
	Manifest      *manifest.Manifest `json:"manifest"`
	Artifacts     []ArtifactResult   `json:"artifacts"`
	SanitizedVars map[string]string  `json:"sanitized_vars,omitempty"`
	Warnings      []string           `json:"warnings,omitempty"`
	DryRun        bool               `json:"dry_run,omitempty"`
}

// Pack packages the selected artifacts from a source directory into a
// versioned bundle: named artifacts are copied, hook mappings and
// external-service bindings are sanitized, and the manifest is written
// last so an interrupted pack never leaves a bundle that loads.
func Pack(fsys types.FS, opts PackOptions) (*PackResult, error) {
	logger := logging.GetLogger("bundle.pack")

	if opts.Version == "" {
		opts.Version = "0.1.0"
	}
	m := manifest.New(opts.Name, opts.Version)
	m.Description = opts.Description
	m.Author = opts.Author
	if err := m.Validate(); err != nil {
		return nil, err
	}

	if _, err := fsys.Stat(opts.SourceDir); err != nil {
		return nil, errors.Wrapf(err, errors.ErrNotFound, "source directory %s not found", opts.SourceDir)
	}

	named, err := discoverNamed(fsys, opts.SourceDir)
	if err != nil {
		return nil, err
	}
	available := availableNames(fsys, opts.SourceDir, named)

	m.Content = opts.Content
	if len(m.Content) == 0 {
		m.Content = make(map[types.Category][]string)
		for category, names := range available {
			if len(names) > 0 {
				m.Content[category] = []string{types.AllSentinel}
			}
		}
	}
	m.Exclude = opts.Exclude
	if m.Exclude == nil {
		m.Exclude = make(map[types.Category][]string)
	}

	if !m.HasResolvedContent(available) {
		return nil, errors.Newf(errors.ErrValidation, "bundle %q selects no artifacts from %s", opts.Name, opts.SourceDir)
	}

	if _, err := fsys.Stat(manifestPath(opts.BundleDir)); err == nil && !opts.Force {
		return nil, errors.Newf(errors.ErrAlreadyExists, "bundle already exists at %s, use force to overwrite", opts.BundleDir)
	}

	result := &PackResult{
		BundleDir:     opts.BundleDir,
		Manifest:      m,
		SanitizedVars: make(map[string]string),
		DryRun:        opts.DryRun,
	}

	// Named artifacts
	byName := make(map[string]artifacts.Artifact)
	for _, list := range named {
		for _, a := range list {
			byName[artifactKey(a.Category, a.Name)] = a
		}
	}
	count := 0
	for _, category := range fileCategories {
		for _, name := range m.ResolveContent(category, available[category]) {
			a := byName[artifactKey(category, name)]
			if category == types.CategoryAgents {
				data, err := fsys.ReadFile(a.Path)
				if err != nil {
					return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", a.Path)
				}
				if _, _, err := artifacts.ExtractName(data, category, name); err != nil {
					return nil, err
				}
			}
			dst := artifactPath(opts.BundleDir, category, name)
			if !opts.DryRun {
				if err := copyArtifact(fsys, a.Path, dst, a.Dir); err != nil {
					return nil, err
				}
			}
			result.Artifacts = append(result.Artifacts, ArtifactResult{
				Category:  category,
				Name:      name,
				FinalName: name,
				Status:    StatusWritten,
			})
			count++
		}
	}

	// Hook mappings and external-service bindings
	for _, rooted := range []struct {
		category types.Category
		file     string
	}{
		{types.CategoryHooks, paths.HooksFile},
		{types.CategoryMCP, paths.MCPFile},
	} {
		if len(m.ResolveContent(rooted.category, available[rooted.category])) == 0 {
			continue
		}
		if err := packRootedFile(fsys, opts, rooted.file, result); err != nil {
			return nil, err
		}
		result.Artifacts = append(result.Artifacts, ArtifactResult{
			Category:  rooted.category,
			Name:      string(rooted.category),
			FinalName: string(rooted.category),
			Status:    StatusWritten,
		})
		count++
	}

	if opts.SkipSanitize {
		result.Warnings = append(result.Warnings, "sanitization skipped: packaged files may contain secrets")
	}

	if len(result.SanitizedVars) > 0 && !opts.DryRun {
		content := sanitize.GenerateEnvExample(result.SanitizedVars)
		if err := writeFileAtomic(fsys, filepath.Join(opts.BundleDir, paths.EnvExampleFile), []byte(content), 0644); err != nil {
			return nil, err
		}
	}

	m.Metadata.ArtifactCount = count
	if !opts.DryRun {
		if err := m.Save(fsys, manifestPath(opts.BundleDir)); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("bundle", opts.Name).
		Str("version", opts.Version).
		Int("artifacts", count).
		Int("sanitized", len(result.SanitizedVars)).
		Bool("dry_run", opts.DryRun).
		Msg("packaged bundle")
	return result, nil
}

// packRootedFile sanitizes and writes one root-level JSON file
// (hooks.json or mcp.json) into the bundle.
func packRootedFile(fsys types.FS, opts PackOptions, file string, result *PackResult) error {
	data, err := fsys.ReadFile(filepath.Join(opts.SourceDir, file))
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", file)
	}

	var tree interface{}
	if err := json.Unmarshal(data, &tree); err != nil {
		return errors.Wrapf(err, errors.ErrValidation, "malformed %s", file)
	}

	if !opts.SkipSanitize {
		sanitized, vars := sanitize.Sanitize(tree)
		tree = sanitized
		for name, hint := range vars {
			if _, seen := result.SanitizedVars[name]; !seen {
				result.SanitizedVars[name] = hint
			}
		}
	}

	if opts.DryRun {
		return nil
	}
	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "cannot encode %s", file)
	}
	return writeFileAtomic(fsys, filepath.Join(opts.BundleDir, file), append(out, '\n'), 0644)
}

func manifestPath(bundleDir string) string {
	return filepath.Join(bundleDir, paths.ManifestFile)
}

func artifactKey(category types.Category, name string) string {
	return string(category) + "/" + name
}
