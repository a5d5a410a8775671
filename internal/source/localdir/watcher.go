package localdir

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig controls filesystem watching for a local source.
type WatchConfig struct {
	// Debounce coalesces rapid write/rename bursts into one event per id.
	Debounce time.Duration
	// InitialScan emits every existing matching file before live events.
	InitialScan bool
}

// Watch emits document ids (paths relative to the source root) whenever a
// matching file is created, written, or renamed. The channels close when ctx
// is done.
func (s *Source) Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger) (<-chan string, <-chan error, error) {
	if logger == nil {
		logger = slog.Default()
	}
	evCh := make(chan string, 256)
	errCh := make(chan error, 1)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Error("watcher create failed", "error", err)
		return nil, nil, err
	}

	// Watch the root recursively; new subdirectories are added on Create.
	addDir := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.IsDir() {
				return w.Add(path)
			}
			if cfg.InitialScan && s.allowed(path) {
				if id, ok := s.relID(path); ok {
					select {
					case evCh <- id:
					default:
					}
				}
			}
			return nil
		})
	}
	if err := addDir(s.root); err != nil {
		logger.Error("watcher add root failed", "root", s.root, "error", err)
		_ = w.Close()
		return nil, nil, err
	}

	go func() {
		defer close(evCh)
		defer close(errCh)
		defer func() { _ = w.Close() }()

		var timer *time.Timer
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		// pending is only ever touched on this goroutine. The debounce
		// timer signals flushCh instead of flushing itself, so the map
		// needs no locking.
		pending := map[string]struct{}{}
		flushCh := make(chan struct{}, 1)

		sendPending := func() {
			for id := range pending {
				select {
				case evCh <- id:
				default:
				}
				delete(pending, id)
			}
		}

		for {
			select {
			case <-ctx.Done():
				return
			case <-flushCh:
				sendPending()
			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&fsnotify.Create == fsnotify.Create {
					// A created directory needs its own watch; Add on a
					// plain file fails harmlessly.
					_ = w.Add(e.Name)
				}
				if s.allowed(e.Name) && e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) != 0 {
					id, ok := s.relID(e.Name)
					if !ok {
						continue
					}
					pending[id] = struct{}{}
					if cfg.Debounce > 0 {
						if timer != nil {
							timer.Stop()
						}
						timer = time.AfterFunc(cfg.Debounce, func() {
							select {
							case flushCh <- struct{}{}:
							default:
							}
						})
					} else {
						sendPending()
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Error("watcher error", "error", err)
				select {
				case errCh <- err:
				default:
				}
			}
		}
	}()

	return evCh, errCh, nil
}

func (s *Source) relID(path string) (string, bool) {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || errors.Is(err, fs.ErrInvalid) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
