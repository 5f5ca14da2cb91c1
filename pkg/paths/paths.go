// Package paths provides centralized path handling for confshare.
// It implements XDG Base Directory specification compliance and
// provides a consistent API for all path operations in the codebase.
package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/confshare/confshare/pkg/errors"
)

// Environment variable names
const (
	// EnvSourceDir overrides the assistant configuration directory
	EnvSourceDir = "CONFSHARE_SOURCE_DIR"

	// EnvShareDir overrides the bundle share directory
	EnvShareDir = "CONFSHARE_SHARE_DIR"

	// EnvDataDir overrides the XDG data directory for confshare
	EnvDataDir = "CONFSHARE_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for confshare
	EnvConfigDir = "CONFSHARE_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for confshare
	EnvCacheDir = "CONFSHARE_CACHE_DIR"
)

// Bundle directory layout
// IMPORTANT: These constants define the on-disk bundle format and are NOT
// user-configurable. They must remain consistent across installations so
// that bundles packaged on one machine apply cleanly on another.
const (
	// AppDirName is the directory name for confshare-specific files
	AppDirName = "confshare"

	// DefaultSourceDir is the default assistant configuration directory,
	// relative to the user's home
	DefaultSourceDir = ".claude"

	// DefaultShareDir is the default bundle output directory, relative to
	// the working directory
	DefaultShareDir = "confshare"

	// ManifestFile is the name of the bundle manifest file
	ManifestFile = "manifest.json"

	// HooksFile is the name of the hook mapping file
	HooksFile = "hooks.json"

	// MCPFile is the name of the external-service-binding file
	MCPFile = "mcp.json"

	// EnvExampleFile is the name of the generated variable-template file
	EnvExampleFile = ".env.example"

	// EnvFile is the name of the runtime variable file (never packaged)
	EnvFile = ".env"

	// CommandsDir holds command artifacts inside a bundle or target
	CommandsDir = "commands"

	// AgentsDir holds agent artifacts inside a bundle or target
	AgentsDir = "agents"

	// SkillsDir holds skill directories inside a bundle or target
	SkillsDir = "skills"

	// LockFile is the exclusive-access marker created in a target
	// directory for the duration of an apply
	LockFile = ".confshare.lock"

	// ConfigFile is the name of the project-level configuration file
	ConfigFile = ".confshare.toml"
)

// Paths provides centralized path management for confshare
type Paths interface {
	SourceDir() string
	ShareDir() string
	BundleDir(name string) string
	ManifestPath(bundleDir string) string
	DataDir() string
	ConfigDir() string
	CacheDir() string
	StateDir() string
	LogFilePath() string
}

type paths struct {
	sourceDir string
	shareDir  string
	xdgData   string
	xdgConfig string
	xdgCache  string
	xdgState  string
}

// New creates a new Paths instance. If sourceDir or shareDir are empty
// they are resolved from the environment, falling back to the defaults
// (~/.claude and ./confshare respectively).
func New(sourceDir, shareDir string) (Paths, error) {
	p := &paths{}

	if sourceDir == "" {
		sourceDir = os.Getenv(EnvSourceDir)
	}
	if sourceDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot determine home directory")
		}
		sourceDir = filepath.Join(home, DefaultSourceDir)
	}
	p.sourceDir = ExpandHome(sourceDir)

	if shareDir == "" {
		shareDir = os.Getenv(EnvShareDir)
	}
	if shareDir == "" {
		shareDir = DefaultShareDir
	}
	p.shareDir = ExpandHome(shareDir)

	absSource, err := filepath.Abs(p.sourceDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for source dir")
	}
	p.sourceDir = absSource

	absShare, err := filepath.Abs(p.shareDir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for share dir")
	}
	p.shareDir = absShare

	p.setupXDGDirs()
	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = ExpandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, AppDirName)
	}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = ExpandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if cacheDir := os.Getenv(EnvCacheDir); cacheDir != "" {
		p.xdgCache = ExpandHome(cacheDir)
	} else {
		p.xdgCache = filepath.Join(xdg.CacheHome, AppDirName)
	}

	// XDG library does not expose StateHome on all versions, resolve manually
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, AppDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.xdgState = filepath.Join(homeDir, ".local", "state", AppDirName)
	}
}

func (p *paths) SourceDir() string { return p.sourceDir }
func (p *paths) ShareDir() string  { return p.shareDir }

func (p *paths) BundleDir(name string) string {
	return filepath.Join(p.shareDir, name)
}

func (p *paths) ManifestPath(bundleDir string) string {
	return filepath.Join(bundleDir, ManifestFile)
}

func (p *paths) DataDir() string   { return p.xdgData }
func (p *paths) ConfigDir() string { return p.xdgConfig }
func (p *paths) CacheDir() string  { return p.xdgCache }
func (p *paths) StateDir() string  { return p.xdgState }

func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, AppDirName+".log")
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}
