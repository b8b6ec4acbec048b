package memory

import (
	"context"
	"sync"

	"stocksense/internal/domain/focus"
	"stocksense/pkg/errors"
)

// FocusRepository implements focus.Repository in memory
type FocusRepository struct {
	mu       sync.RWMutex
	settings *focus.Settings
	history  []focus.Session
}

func NewFocusRepository() *FocusRepository {
	return &FocusRepository{}
}

func (r *FocusRepository) GetSettings(ctx context.Context) (focus.Settings, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.settings == nil {
		return focus.Settings{}, errors.Wrap(errors.ErrNotFound, "focus settings not found")
	}
	return *r.settings, nil
}

func (r *FocusRepository) SaveSettings(ctx context.Context, settings focus.Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings = &settings
	return nil
}

func (r *FocusRepository) History(ctx context.Context) ([]focus.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]focus.Session, len(r.history))
	copy(out, r.history)
	return out, nil
}

func (r *FocusRepository) AppendHistory(ctx context.Context, session focus.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, session)
	if len(r.history) > focus.MaxHistory {
		r.history = r.history[len(r.history)-focus.MaxHistory:]
	}
	return nil
}
