package watcher

import (
	"context"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aliskhannn/image-compressor/internal/model"
)

type fakeService struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeService) Compress(_ context.Context, _ model.Profile, paths []string) []model.Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, paths...)
	out := make([]model.Outcome, len(paths))
	for i, p := range paths {
		out[i] = model.Outcome{Path: p, Result: &model.Result{Path: p, OutPath: p, Status: model.StatusSuccess}}
	}
	return out
}

func (f *fakeService) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func start(t *testing.T, dir string) (*fakeService, chan model.Outcome) {
	t.Helper()
	svc := &fakeService{}
	w, err := New(svc, model.DefaultProfile(), 20*time.Millisecond)
	require.NoError(t, err)
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	reports := make(chan model.Outcome, 16)
	errc := make(chan error, 1)
	go func() { errc <- w.Run(ctx, func(o model.Outcome) { reports <- o }) }()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-errc)
		require.NoError(t, w.Close())
	})
	return svc, reports
}

func TestWatcherCompressesNewImages(t *testing.T) {
	dir := t.TempDir()
	svc, reports := start(t, dir)

	for _, name := range []string{"a.png", "notes.txt", "a.min.png", ".a.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	select {
	case o := <-reports:
		assert.Equal(t, filepath.Join(dir, "a.png"), o.Path)
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome reported")
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, []string{filepath.Join(dir, "a.png")}, svc.seen())
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	svc, _ := start(t, dir)

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))

	target := filepath.Join(sub, "b.jpg")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(target, []byte("x"), 0o644)
		for _, p := range svc.seen() {
			if p == target {
				return true
			}
		}
		return false
	}, 5*time.Second, 50*time.Millisecond)
}

func TestCandidate(t *testing.T) {
	w := &Watcher{profile: model.DefaultProfile(), debounce: time.Second, written: map[string]time.Time{}}

	assert.True(t, w.candidate("/img/a.png"))
	assert.False(t, w.candidate("/img/a.min.png"))
	assert.False(t, w.candidate("/img/.a.png"))
	assert.False(t, w.candidate("/img/a.txt"))

	w.written["/img/b.png"] = time.Now()
	assert.False(t, w.candidate("/img/b.png"))
	w.written["/img/b.png"] = time.Now().Add(-time.Hour)
	assert.True(t, w.candidate("/img/b.png"))

	w.profile.PostfixEnabled = false
	assert.True(t, w.candidate("/img/a.min.png"))
}

func TestDrain(t *testing.T) {
	w := &Watcher{
		debounce: time.Second,
		ready:    make(chan string, 4),
		pending:  map[string]*time.Timer{"/img/a.png": nil, "/img/b.png": nil},
		written: map[string]time.Time{
			"/img/old.png": time.Now().Add(-time.Hour),
			"/img/new.png": time.Now(),
		},
	}
	w.ready <- "/img/b.png"
	w.ready <- "/img/a.png"

	assert.Equal(t, []string{"/img/a.png", "/img/b.png"}, w.drain("/img/a.png"))
	assert.Empty(t, w.pending)
	assert.Equal(t, []string{"/img/new.png"}, slices.Collect(maps.Keys(w.written)))
}
