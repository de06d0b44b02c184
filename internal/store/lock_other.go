//go:build !unix

package store

import "time"

type fileLock struct{}

// acquireLock is a no-op where flock is unavailable.
func acquireLock(string, time.Duration) (*fileLock, error) {
	return &fileLock{}, nil
}

func (l *fileLock) release() error {
	return nil
}
