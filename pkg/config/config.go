// Package config loads confshare configuration with koanf: embedded
// defaults, then the app config, then the user config file, then a
// project-level .confshare.toml, then CONFSHARE_* environment
// variables, each layer overriding the previous one.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/paths"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// envPrefix is the prefix for environment overrides,
// e.g. CONFSHARE_HOOKS_MODE=replace.
const envPrefix = "CONFSHARE_"

// Source holds the assistant configuration directory settings.
type Source struct {
	Dir string `koanf:"dir"`
}

// Share holds the bundle share directory settings.
type Share struct {
	Dir string `koanf:"dir"`
}

// Hooks holds hook merge defaults.
type Hooks struct {
	Mode string `koanf:"mode"`
}

// Conflicts holds conflict resolution defaults.
type Conflicts struct {
	Policy string `koanf:"policy"`
}

// Sanitize holds secret sanitization defaults.
type Sanitize struct {
	Enabled bool `koanf:"enabled"`
}

// Config is the main configuration structure
type Config struct {
	Source    Source    `koanf:"source"`
	Share     Share     `koanf:"share"`
	Hooks     Hooks     `koanf:"hooks"`
	Conflicts Conflicts `koanf:"conflicts"`
	Sanitize  Sanitize  `koanf:"sanitize"`
}

// Load builds the effective configuration. projectDir is where the
// project-level .confshare.toml is looked up; pass "" to use the
// working directory.
func Load(projectDir string) (*Config, error) {
	k := koanf.New(".")

	// 1. System defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load defaults")
	}

	// 2. App config
	if err := k.Load(&rawBytesProvider{bytes: appConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load app config")
	}

	// 3. User config if it exists
	if userConfig := userConfigPath(); userConfig != "" {
		if _, err := os.Stat(userConfig); err == nil {
			if err := k.Load(file.Provider(userConfig), toml.Parser()); err != nil {
				return nil, errors.Wrapf(err, errors.ErrValidation, "failed to load user config from %s", userConfig)
			}
		}
	}

	// 4. Project config if it exists
	if projectDir == "" {
		projectDir = "."
	}
	projectConfig := filepath.Join(projectDir, paths.ConfigFile)
	if _, err := os.Stat(projectConfig); err == nil {
		if err := k.Load(file.Provider(projectConfig), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrValidation, "failed to load project config from %s", projectConfig)
		}
	}

	// 5. Environment overrides
	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "invalid configuration")
	}
	return &cfg, nil
}

// envKeyMapper maps CONFSHARE_HOOKS_MODE to hooks.mode.
func envKeyMapper(key string) string {
	key = strings.TrimPrefix(key, envPrefix)
	return strings.ReplaceAll(strings.ToLower(key), "_", ".")
}

// userConfigPath returns the user-level config file location, honoring
// the CONFSHARE_CONFIG_DIR override.
func userConfigPath() string {
	if dir := os.Getenv(paths.EnvConfigDir); dir != "" {
		return filepath.Join(paths.ExpandHome(dir), "confshare.toml")
	}
	home, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, paths.AppDirName, "confshare.toml")
}
