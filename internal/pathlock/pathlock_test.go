package pathlock

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockExcludes(t *testing.T) {
	l := New(t.TempDir())
	path := filepath.Join(t.TempDir(), "a.png")

	unlock, err := l.Lock(context.Background(), path)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, path)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()

	unlock, err = l.Lock(context.Background(), path)
	require.NoError(t, err)
	unlock()
}

func TestLockIndependentPaths(t *testing.T) {
	l := New(t.TempDir())
	dir := t.TempDir()

	unlockA, err := l.Lock(context.Background(), filepath.Join(dir, "a.png"))
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := l.Lock(ctx, filepath.Join(dir, "b.png"))
	require.NoError(t, err)
	unlockB()
}

func TestLockRelativeAndAbsolute(t *testing.T) {
	t.Chdir(t.TempDir())
	dir, err := os.Getwd()
	require.NoError(t, err)
	l := New(t.TempDir())

	unlock, err := l.Lock(context.Background(), "img.jpg")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, filepath.Join(dir, "img.jpg"))
	require.Error(t, err)
}

func TestLockSerializesGoroutines(t *testing.T) {
	l := New(t.TempDir())
	path := filepath.Join(t.TempDir(), "shared.webp")

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), path)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			maxSeen = max(maxSeen, inside)
			mu.Unlock()

			time.Sleep(20 * time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}
