// Package watcher compresses images as they appear in watched directories.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/image-compressor/internal/model"
	"github.com/aliskhannn/image-compressor/internal/scan"
)

// service compresses a batch of files.
type service interface {
	Compress(ctx context.Context, profile model.Profile, paths []string) []model.Outcome
}

// Watcher feeds created or modified images below its roots to the service
// once they have been quiet for the debounce period.
type Watcher struct {
	fs       *fsnotify.Watcher
	service  service
	profile  model.Profile
	debounce time.Duration

	ready   chan string
	done    chan struct{}
	pending map[string]*time.Timer
	written map[string]time.Time
}

// New creates a Watcher compressing with profile.
func New(s service, profile model.Profile, debounce time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		fs:       fsw,
		service:  s,
		profile:  profile,
		debounce: debounce,
		ready:    make(chan string, 64),
		done:     make(chan struct{}),
		pending:  make(map[string]*time.Timer),
		written:  make(map[string]time.Time),
	}, nil
}

// Add watches root and every directory below it.
func (w *Watcher) Add(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.fs.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		zlog.Logger.Debug().Str("path", path).Msg("watching directory")
		return nil
	})
}

// Run processes events until ctx is done. report, when not nil, receives
// every outcome.
func (w *Watcher) Run(ctx context.Context, report func(model.Outcome)) error {
	defer close(w.done)
	defer func() {
		for _, t := range w.pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			zlog.Logger.Err(err).Msg("watcher error")

		case path := <-w.ready:
			batch := w.drain(path)
			for _, o := range w.service.Compress(ctx, w.profile, batch) {
				if o.Result != nil {
					w.written[o.Result.OutPath] = time.Now()
				}
				if report != nil {
					report(o)
				}
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	if event.Has(fsnotify.Create) {
		if st, err := os.Stat(event.Name); err == nil && st.IsDir() {
			if err := w.Add(event.Name); err != nil {
				zlog.Logger.Warn().Err(err).Str("path", event.Name).Msg("failed to watch new directory")
			}
			return
		}
	}

	if !w.candidate(event.Name) {
		return
	}

	if t, ok := w.pending[event.Name]; ok {
		t.Stop()
	}
	path := event.Name
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		select {
		case w.ready <- path:
		case <-w.done:
		}
	})
}

// candidate filters out non-images, hidden files and files this watcher
// produced itself.
func (w *Watcher) candidate(path string) bool {
	if !scan.IsCandidate(path) || strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	if w.profile.PostfixEnabled && w.profile.Postfix != "" {
		stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if strings.HasSuffix(stem, w.profile.Postfix) {
			return false
		}
	}
	if at, ok := w.written[path]; ok {
		if time.Since(at) < 2*w.debounce {
			return false
		}
		delete(w.written, path)
	}
	return true
}

// drain collects first and every other file that became ready meanwhile, and
// forgets outputs written longer than two debounce periods ago.
func (w *Watcher) drain(first string) []string {
	for path, at := range w.written {
		if time.Since(at) >= 2*w.debounce {
			delete(w.written, path)
		}
	}

	batch := []string{first}
	delete(w.pending, first)
	for {
		select {
		case path := <-w.ready:
			delete(w.pending, path)
			if !slices.Contains(batch, path) {
				batch = append(batch, path)
			}
		default:
			return batch
		}
	}
}
