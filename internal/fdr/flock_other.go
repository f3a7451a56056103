//go:build !linux

package fdr

import "os"

// lockDir only creates the lock file; advisory locking is linux only.
func lockDir(dir string) (*os.File, error) {
	return os.OpenFile(lockPath(dir), os.O_CREATE|os.O_RDWR, 0o644)
}
