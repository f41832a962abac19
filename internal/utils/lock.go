package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 500 * time.Millisecond

// DBLock serializes generation runs writing to the same SQLite database.
// The lock file sits next to the database as "<db>.lock". Readers don't
// take it.
type DBLock struct {
	lock *flock.Flock
	path string
}

func NewDBLock(dbPath string) (*DBLock, error) {
	absPath, err := GetAbsDBPath(dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute db path: %w", err)
	}
	lockPath := absPath + ".lock"
	return &DBLock{lock: flock.New(lockPath), path: lockPath}, nil
}

// Lock takes the lock, waiting for any other generation run to finish. The
// wait ends early with ctx.
func (l *DBLock) Lock(ctx context.Context) error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("locking %s: %w", l.path, err)
	}
	if locked {
		return nil
	}

	Log.Warnf("Another generation run holds %s, waiting for it to finish", l.path)
	locked, err = l.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("waiting for %s: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("could not lock %s", l.path)
	}
	return nil
}

func (l *DBLock) Unlock() error {
	if err := l.lock.Unlock(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("unlocking %s: %w", l.path, err)
	}
	return nil
}

// GetAbsDBPath resolves the database path. An empty path means
// ~/.config/groupgen/groupgen.sqlite.
func GetAbsDBPath(dbPath string) (string, error) {
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "groupgen", "groupgen.sqlite"), nil
	}
	return filepath.Abs(dbPath)
}
