package bundle

import (
	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/logging"
	"github.com/confshare/confshare/pkg/manifest"
	"github.com/confshare/confshare/pkg/semver"
	"github.com/confshare/confshare/pkg/types"
)

// CheckUpdate compares the local bundle's version against the version
// published at another bundle location.
func CheckUpdate(fsys types.FS, localDir, remoteDir string) (semver.UpdateCheck, error) {
	local, err := manifest.Load(fsys, manifestPath(localDir))
	if err != nil {
		return semver.UpdateCheck{}, err
	}
	remote, err := manifest.Load(fsys, manifestPath(remoteDir))
	if err != nil {
		return semver.UpdateCheck{}, err
	}
	if local.Name != remote.Name {
		return semver.UpdateCheck{}, errors.Newf(errors.ErrInvalidInput,
			"bundle mismatch: local is %q, remote is %q", local.Name, remote.Name)
	}
	return semver.CheckUpdate(local.Version, remote.Version)
}

// UpdateResult reports what an update run did.
type UpdateResult struct {
	Check     semver.UpdateCheck `json:"check"`
	Artifacts []ArtifactResult   `json:"artifacts,omitempty"`
	DryRun    bool               `json:"dry_run,omitempty"`
}

// Update replaces the local bundle's contents with the remote one when
// the remote version is newer. The local application history is carried
// over: update never erases the record of where the bundle was applied.
func Update(fsys types.FS, localDir, remoteDir string, dryRun bool) (*UpdateResult, error) {
	logger := logging.GetLogger("bundle.update")

	check, err := CheckUpdate(fsys, localDir, remoteDir)
	if err != nil {
		return nil, err
	}
	result := &UpdateResult{Check: check, DryRun: dryRun}
	if !check.UpdateAvailable {
		return result, nil
	}

	local, err := manifest.Load(fsys, manifestPath(localDir))
	if err != nil {
		return nil, err
	}
	remote, err := manifest.Load(fsys, manifestPath(remoteDir))
	if err != nil {
		return nil, err
	}

	named, err := discoverNamed(fsys, remoteDir)
	if err != nil {
		return nil, err
	}
	available := availableNames(fsys, remoteDir, named)

	categories := append([]types.Category{}, fileCategories...)
	categories = append(categories, types.CategoryHooks, types.CategoryMCP)
	count := 0
	for _, category := range categories {
		for _, name := range remote.ResolveContent(category, available[category]) {
			out := ArtifactResult{Category: category, Name: name, FinalName: name, Status: StatusReplaced}
			if !dryRun {
				src := artifactPath(remoteDir, category, name)
				dst := artifactPath(localDir, category, name)
				if err := copyArtifact(fsys, src, dst, category == types.CategorySkills); err != nil {
					out.Status = StatusFailed
					out.Error = err.Error()
				}
			}
			result.Artifacts = append(result.Artifacts, out)
			count++
		}
	}

	if !dryRun {
		// Remote manifest wins, local history survives
		merged := *remote
		merged.Applications = local.Applications
		merged.Touch()
		if err := merged.Save(fsys, manifestPath(localDir)); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("bundle", remote.Name).
		Str("from", check.Local).
		Str("to", check.Remote).
		Int("artifacts", count).
		Bool("dry_run", dryRun).
		Msg("updated bundle")
	return result, nil
}

// Bump increments one field of the bundle's version and saves the
// manifest.
func Bump(fsys types.FS, bundleDir, field string) (string, error) {
	m, err := manifest.Load(fsys, manifestPath(bundleDir))
	if err != nil {
		return "", err
	}
	next, err := semver.Increment(m.Version, field)
	if err != nil {
		return "", err
	}
	m.Version = next
	m.Touch()
	if err := m.Save(fsys, manifestPath(bundleDir)); err != nil {
		return "", err
	}
	logger := logging.GetLogger("bundle.bump")
	logger.Info().
		Str("bundle", m.Name).
		Str("version", next).
		Msg("bumped bundle version")
	return next, nil
}
