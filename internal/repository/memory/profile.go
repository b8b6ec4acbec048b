// Package memory provides in-memory repository implementations used in
// demo mode (no Redis configured) and in tests.
package memory

import (
	"context"
	"sync"

	"stocksense/internal/domain/user"
	"stocksense/pkg/errors"
)

// ProfileRepository implements user.Repository in memory
type ProfileRepository struct {
	mu      sync.RWMutex
	profile *user.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{}
}

func (r *ProfileRepository) Get(ctx context.Context) (*user.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.profile == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "profile not found")
	}
	return r.profile.Clone(), nil
}

func (r *ProfileRepository) Save(ctx context.Context, profile *user.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profile = profile.Clone()
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profile = nil
	return nil
}
