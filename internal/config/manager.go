package config

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce coalesces the burst of fsnotify events an editor or
// config-management tool emits when rewriting the file.
const reloadDebounce = 500 * time.Millisecond

// Manager serves the current configuration snapshot and refreshes it when
// the file changes on disk. Get is safe from any goroutine; listeners
// registered with OnChange are invoked after every successful reload so
// components can rebuild themselves from the new snapshot.
type Manager struct {
	path    string
	logger  *slog.Logger
	current atomic.Pointer[Config]
	watcher *fsnotify.Watcher

	mu        sync.Mutex
	listeners []func(*Config)
}

// NewManager loads the configuration file and returns a manager serving it.
func NewManager(path string, logger *slog.Logger) (*Manager, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}

	m := &Manager{path: path, logger: logger}
	m.current.Store(cfg)
	return m, nil
}

// Get returns the current configuration snapshot.
func (m *Manager) Get() *Config {
	return m.current.Load()
}

// OnChange registers a listener invoked with each successfully reloaded
// configuration. Listeners run on the watcher goroutine and should return
// quickly.
func (m *Manager) OnChange(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Watch starts watching the configuration file until ctx is cancelled.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(m.path); err != nil {
		_ = watcher.Close()
		return err
	}

	m.watcher = watcher
	go m.run(ctx)
	return nil
}

func (m *Manager) run(ctx context.Context) {
	debounce := time.NewTimer(reloadDebounce)
	if !debounce.Stop() {
		<-debounce.C
	}

	for {
		select {
		case <-ctx.Done():
			debounce.Stop()
			_ = m.watcher.Close()
			return

		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				// Editors and config tools replace the file rather than
				// writing in place; the watch follows the old inode and
				// must be re-established on the path.
				if err := m.watcher.Add(m.path); err != nil {
					m.logger.Error("config watch lost", "path", m.path, "error", err)
					continue
				}
			}
			debounce.Reset(reloadDebounce)

		case <-debounce.C:
			m.reload()

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Error("config watcher error", "error", err)
		}
	}
}

func (m *Manager) reload() {
	cfg, err := LoadFromFile(m.path)
	if err != nil {
		m.logger.Error("config reload failed, keeping current snapshot", "error", err)
		return
	}

	m.current.Store(cfg)
	m.logger.Info("configuration reloaded", "path", m.path)

	m.mu.Lock()
	listeners := make([]func(*Config), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

// Close stops the file watcher.
func (m *Manager) Close() error {
	if m.watcher != nil {
		return m.watcher.Close()
	}
	return nil
}
