package capability

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Registry holds the capability models available to evaluations.
//
// Models are stored and handed out as copies, so a reload never changes
// a model that a caller is already scoring against.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
	logger *slog.Logger
}

// NewRegistry creates a Registry seeded with the built-in TOPP model.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		models: map[string]*Model{TOPPModelID: TOPP()},
		logger: logger,
	}
}

// Register validates m and stores a copy, replacing any model with the same id.
func (r *Registry) Register(m *Model) error {
	if m == nil {
		return fmt.Errorf("nil model")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	c := m.Clone()

	r.mu.Lock()
	r.models[c.ID] = c
	r.mu.Unlock()
	return nil
}

// Get returns a copy of the model with the given id.
func (r *Registry) Get(id string) (*Model, bool) {
	r.mu.RLock()
	m, ok := r.models[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return m.Clone(), true
}

// IDs returns the registered model ids in lexical order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.models))
	for id := range r.models {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadDir registers every model file found in dir and returns how many
// were registered. Nothing is registered unless every file is valid.
func (r *Registry) LoadDir(dir string) (int, error) {
	models, err := LoadDir(dir)
	if err != nil {
		return 0, err
	}
	for _, m := range models {
		if err := m.Validate(); err != nil {
			return 0, err
		}
	}
	for i, m := range models {
		if err := r.Register(m); err != nil {
			return i, err
		}
	}
	return len(models), nil
}

// Watch reloads model files in dir whenever they are written or created.
// Invalid files are logged and skipped; the previous copy stays active.
// Watch blocks until ctx is cancelled.
func (r *Registry) Watch(ctx context.Context, dir string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if !IsModelFile(ev.Name) {
				continue
			}
			m, err := LoadFile(ev.Name)
			if err != nil {
				r.logger.Warn("model reload failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
				continue
			}
			if err := r.Register(m); err != nil {
				r.logger.Warn("model register failed", slog.String("path", ev.Name), slog.String("error", err.Error()))
				continue
			}
			r.logger.Info("model reloaded", slog.String("id", m.ID), slog.String("path", ev.Name))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			r.logger.Warn("model watcher error", slog.String("error", err.Error()))
		}
	}
}
