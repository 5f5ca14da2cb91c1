package bundle

import (
	"io/fs"
	"path/filepath"

	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/types"
	"github.com/google/uuid"
)

// writeFileAtomic writes data next to path under a temporary name and
// renames it into place, so readers never observe a half-written file.
func writeFileAtomic(fsys types.FS, path string, data []byte, perm fs.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory for %s", path)
	}
	tmp := path + ".tmp." + uuid.NewString()[:8]
	if err := fsys.WriteFile(tmp, data, perm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path)
	}
	if err := fsys.Rename(tmp, path); err != nil {
		_ = fsys.Remove(tmp)
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", path)
	}
	return nil
}

// copyFile copies one file atomically.
func copyFile(fsys types.FS, src, dst string) error {
	data, err := fsys.ReadFile(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", src)
	}
	return writeFileAtomic(fsys, dst, data, 0644)
}

// copyDir copies a directory tree. Individual files are written
// atomically; the tree as a whole is not.
func copyDir(fsys types.FS, src, dst string) error {
	if err := fsys.MkdirAll(dst, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dst)
	}
	entries, err := fsys.ReadDir(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot list %s", src)
	}
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())
		if entry.IsDir() {
			if err := copyDir(fsys, srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if err := copyFile(fsys, srcPath, dstPath); err != nil {
			return err
		}
	}
	return nil
}

// copyArtifact copies one artifact, file or directory. A directory
// replacing an existing one is removed first so deleted files do not
// linger.
func copyArtifact(fsys types.FS, src, dst string, dir bool) error {
	if !dir {
		return copyFile(fsys, src, dst)
	}
	if _, err := fsys.Stat(dst); err == nil {
		if err := fsys.RemoveAll(dst); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot clear %s", dst)
		}
	}
	return copyDir(fsys, src, dst)
}
