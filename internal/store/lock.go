//go:build unix

package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// errLockTimeout reports that another process holds the database lock.
var errLockTimeout = errors.New("database is in use by another process")

// fileLock is an exclusive advisory lock on a sidecar ".lock" file. It keeps
// a second process from opening the same database while this one runs.
type fileLock struct {
	path string
	file *os.File
}

// acquireLock takes an exclusive lock on path+".lock", retrying until timeout.
func acquireLock(path string, timeout time.Duration) (*fileLock, error) {
	lockPath := path + ".lock"

	file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600) //nolint:gosec // path is from config
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)

	const retryInterval = 10 * time.Millisecond

	for {
		flockErr := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if flockErr == nil {
			return &fileLock{path: lockPath, file: file}, nil
		}

		if !errors.Is(flockErr, unix.EWOULDBLOCK) {
			_ = file.Close()

			return nil, fmt.Errorf("flock %s: %w", lockPath, flockErr)
		}

		if time.Now().After(deadline) {
			_ = file.Close()

			return nil, fmt.Errorf("%w: %s", errLockTimeout, lockPath)
		}

		time.Sleep(retryInterval)
	}
}

// release drops the lock. The lock file itself is left in place.
func (l *fileLock) release() error {
	if l == nil || l.file == nil {
		return nil
	}

	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	return errors.Join(unlockErr, closeErr)
}
