package memory

import (
	"context"
	"sync"

	"stocksense/internal/domain/layout"
	"stocksense/pkg/errors"
)

// LayoutRepository implements layout.Repository in memory
type LayoutRepository struct {
	mu  sync.RWMutex
	cfg *layout.Config
}

func NewLayoutRepository() *LayoutRepository {
	return &LayoutRepository{}
}

func (r *LayoutRepository) Get(ctx context.Context) (*layout.Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.cfg == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "layout config not found")
	}
	cfg := *r.cfg
	cfg.Sections = append([]layout.Section(nil), r.cfg.Sections...)
	return &cfg, nil
}

func (r *LayoutRepository) Save(ctx context.Context, cfg *layout.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *cfg
	stored.Sections = append([]layout.Section(nil), cfg.Sections...)
	r.cfg = &stored
	return nil
}
