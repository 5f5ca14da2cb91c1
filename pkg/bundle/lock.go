package bundle

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/confshare/confshare/pkg/errors"
	"github.com/confshare/confshare/pkg/paths"
	"github.com/confshare/confshare/pkg/types"
)

// Lock is an exclusive-access marker on a target directory, held for
// the duration of an apply. Creation is atomic (O_EXCL), so two
// concurrent applies to the same target cannot both proceed.
type Lock struct {
	fsys types.FS
	path string
}

type lockInfo struct {
	PID        int       `json:"pid"`
	AcquiredAt time.Time `json:"acquired_at"`
}

// AcquireLock takes the lock for dir. A held lock yields ErrLocked with
// the lock file path in the error details.
func AcquireLock(fsys types.FS, dir string) (*Lock, error) {
	path := filepath.Join(dir, paths.LockFile)
	info, err := json.Marshal(lockInfo{PID: os.Getpid(), AcquiredAt: time.Now().UTC()})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode lock info")
	}
	if err := fsys.CreateExclusive(path, info, 0644); err != nil {
		if os.IsExist(err) {
			return nil, errors.Newf(errors.ErrLocked, "target %s is locked by another apply", dir).
				WithDetail("lock_file", path)
		}
		return nil, errors.Wrapf(err, errors.ErrFileWrite, "cannot create lock file %s", path)
	}
	return &Lock{fsys: fsys, path: path}, nil
}

// Release removes the lock file. Releasing twice is harmless.
func (l *Lock) Release() error {
	if l == nil || l.path == "" {
		return nil
	}
	err := l.fsys.Remove(l.path)
	l.path = ""
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot remove lock file")
	}
	return nil
}
