package utils

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLogLevel(t *testing.T) {
	defer Log.SetLevel(logrus.InfoLevel)

	require.NoError(t, SetLogLevel("DEBUG"))
	assert.Equal(t, logrus.DebugLevel, Log.GetLevel())
	require.NoError(t, SetLogLevel("warn"))
	assert.Equal(t, logrus.WarnLevel, Log.GetLevel())

	assert.Error(t, SetLogLevel("verbose"))
	assert.Equal(t, logrus.WarnLevel, Log.GetLevel())
}

func TestDBLock(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "groupgen.sqlite")
	ctx := context.Background()

	first, err := NewDBLock(dbPath)
	require.NoError(t, err)
	require.NoError(t, first.Lock(ctx))

	second, err := NewDBLock(dbPath)
	require.NoError(t, err)
	locked, err := second.lock.TryLock()
	require.NoError(t, err)
	assert.False(t, locked)

	require.NoError(t, first.Unlock())
	require.NoError(t, second.Lock(ctx))
	require.NoError(t, second.Unlock())
}

func TestDBLockWaitEndsWithContext(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "groupgen.sqlite")

	holder, err := NewDBLock(dbPath)
	require.NoError(t, err)
	require.NoError(t, holder.Lock(context.Background()))
	defer holder.Unlock()

	waiter, err := NewDBLock(dbPath)
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, waiter.Lock(ctx), context.DeadlineExceeded)
}

func TestGetAbsDBPathDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	p, err := GetAbsDBPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("groupgen", "groupgen.sqlite"), filepath.Join(filepath.Base(filepath.Dir(p)), filepath.Base(p)))
}
