package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"stocksense/internal/domain/layout"
	"stocksense/pkg/errors"
)

const layoutKey = "layout:config"

// LayoutRepository implements layout.Repository using Redis
type LayoutRepository struct {
	client *redis.Client
}

// NewLayoutRepository creates a new layout repository
func NewLayoutRepository(client *redis.Client) *LayoutRepository {
	return &LayoutRepository{
		client: client,
	}
}

// Get retrieves the persisted layout configuration
func (r *LayoutRepository) Get(ctx context.Context) (*layout.Config, error) {
	data, err := r.client.Get(ctx, layoutKey).Result()
	if err == redis.Nil {
		return nil, errors.Wrap(errors.ErrNotFound, "layout config not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get layout config from redis")
	}

	var cfg layout.Config
	if err := unmarshalVersioned([]byte(data), &cfg); err != nil {
		return nil, err
	}

	// stored config no longer passing validation is treated as absent
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrNotFound, "stored layout config invalid")
	}

	return &cfg, nil
}

// Save stores the layout configuration
func (r *LayoutRepository) Save(ctx context.Context, cfg *layout.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := marshalVersioned(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to marshal layout config")
	}

	if err := r.client.Set(ctx, layoutKey, data, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to save layout config to redis")
	}

	return nil
}
