package config

import (
	"os"
	"path/filepath"

	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/paths"
	"github.com/confshare/confshare/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
)

// BundleConfig is the optional per-bundle settings file (.confshare.toml
// inside a bundle directory): the bundle author's recommended apply
// defaults. Explicit flags and the user's own configuration still win.
type BundleConfig struct {
	Hooks struct {
		Mode string `toml:"mode"`
	} `toml:"hooks"`
	Conflicts struct {
		Policy string `toml:"policy"`
	} `toml:"conflicts"`
}

// LoadBundle reads a bundle's recommended settings. A missing file
// yields an empty config, not an error.
func LoadBundle(fsys types.FS, bundleDir string) (*BundleConfig, error) {
	var cfg BundleConfig
	data, err := fsys.ReadFile(filepath.Join(bundleDir, paths.ConfigFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read bundle config in %s", bundleDir)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrValidation, "malformed bundle config in %s", bundleDir)
	}
	return &cfg, nil
}
