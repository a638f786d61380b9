package mover

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// LockPath returns the lock file guarding targetRoot inside lockDir. Lock
// files live outside the target so scans of the target never see them.
func LockPath(lockDir, targetRoot string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(targetRoot)))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

// acquireTargetLock takes an exclusive, non-blocking lock for targetRoot.
func acquireTargetLock(lockDir, targetRoot string) (*flock.Flock, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(LockPath(lockDir, targetRoot))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire target lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTargetLocked, targetRoot)
	}
	return lock, nil
}
