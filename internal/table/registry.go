package table

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertable/internal/tableid"
)

// Registry holds the live tables. Lookups take a read lock only, so
// routing an action to its table never contends with table creation.
type Registry struct {
	logger *log.Logger
	mu     sync.RWMutex
	tables map[string]*Table
}

// NewRegistry creates an empty registry
func NewRegistry(logger *log.Logger) *Registry {
	return &Registry{
		logger: logger.WithPrefix("tables"),
		tables: make(map[string]*Table),
	}
}

// Create builds a table from cfg and registers it. IDs must be unique;
// an empty ID gets a generated one.
func (r *Registry) Create(cfg Config) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cfg.ID == "" {
		cfg.ID = tableid.Generate()
	}
	if _, exists := r.tables[cfg.ID]; exists {
		return nil, fmt.Errorf("table %s already exists", cfg.ID)
	}
	if cfg.Logger == nil {
		cfg.Logger = r.logger
	}

	t, err := New(cfg)
	if err != nil {
		return nil, err
	}

	r.tables[t.ID] = t
	r.logger.Info("Created table", "id", t.ID, "name", t.Name, "players", len(t.players))

	return t, nil
}

// Get returns the table with the given ID
func (r *Registry) Get(id string) (*Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tables[id]
	return t, ok
}

// List returns a summary of every table, sorted by ID
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.tables))
	for _, t := range r.tables {
		infos = append(infos, t.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// CloseAll closes every table, flushing hand histories. Errors are
// joined so one failing table does not hide the others.
func (r *Registry) CloseAll() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for id, t := range r.tables {
		if err := t.Close(); err != nil {
			r.logger.Error("Failed to close table", "id", id, "err", err)
			errs = append(errs, fmt.Errorf("close table %s: %w", id, err))
		}
	}
	r.tables = make(map[string]*Table)
	return errors.Join(errs...)
}
