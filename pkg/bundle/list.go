package bundle

import (
	"path/filepath"
	"sort"

	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/manifest"
	"github.com/confshare/confshare/pkg/types"
)

// Info is one row of a bundle listing.
type Info struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	Description   string `json:"description,omitempty"`
	ArtifactCount int    `json:"artifact_count"`
	Applications  int    `json:"applications"`
	Path          string `json:"path"`
}

// List enumerates the bundles under a share directory, sorted by name.
// Directories without a loadable manifest are reported as warnings, not
// errors: one broken bundle must not hide the rest.
func List(fsys types.FS, shareDir string) ([]Info, []string, error) {
	if _, err := fsys.Stat(shareDir); err != nil {
		return nil, nil, nil
	}
	entries, err := fsys.ReadDir(shareDir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", shareDir)
	}

	var infos []Info
	var warnings []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(shareDir, entry.Name())
		m, err := manifest.Load(fsys, manifestPath(dir))
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrNotFound) {
				continue
			}
			warnings = append(warnings, entry.Name()+": "+err.Error())
			continue
		}
		infos = append(infos, Info{
			Name:          m.Name,
			Version:       m.Version,
			Description:   m.Description,
			ArtifactCount: m.Metadata.ArtifactCount,
			Applications:  len(m.Applications),
			Path:          dir,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, warnings, nil
}

// Remove deletes a bundle from the share directory.
func Remove(fsys types.FS, shareDir, name string) error {
	dir := filepath.Join(shareDir, name)
	if _, err := fsys.Stat(manifestPath(dir)); err != nil {
		return errors.Newf(errors.ErrNotFound, "bundle %q not found in %s", name, shareDir)
	}
	if err := fsys.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot remove bundle %q", name)
	}
	return nil
}

// Find resolves a bundle name to its directory under shareDir.
func Find(fsys types.FS, shareDir, name string) (string, error) {
	dir := filepath.Join(shareDir, name)
	if _, err := fsys.Stat(manifestPath(dir)); err != nil {
		return "", errors.Newf(errors.ErrNotFound, "bundle %q not found in %s", name, shareDir)
	}
	return dir, nil
}
