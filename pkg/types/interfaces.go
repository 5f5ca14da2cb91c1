package types

import (
	"io/fs"
)

// FS is the filesystem interface required for confshare operations.
// The core never touches the OS filesystem directly so that every
// operation can run against an in-memory filesystem in tests.
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// CreateExclusive creates name with the given content, failing if it
	// already exists. Used for the apply-time directory lock.
	CreateExclusive(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Other operations
	Remove(name string) error
	RemoveAll(path string) error

	// Rename must replace newpath atomically when it exists; the
	// write-temp-then-rename pattern in the core depends on it.
	Rename(oldpath, newpath string) error
}
