package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"stocksense/internal/domain/user"
	"stocksense/pkg/errors"
)

const profileKey = "user:profile"

// ProfileRepository implements user.Repository using Redis
type ProfileRepository struct {
	client *redis.Client
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(client *redis.Client) *ProfileRepository {
	return &ProfileRepository{
		client: client,
	}
}

// Get retrieves the tracked profile
func (r *ProfileRepository) Get(ctx context.Context) (*user.Profile, error) {
	data, err := r.client.Get(ctx, profileKey).Result()
	if err == redis.Nil {
		return nil, errors.Wrap(errors.ErrNotFound, "profile not found")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get profile from redis")
	}

	var profile user.Profile
	if err := unmarshalVersioned([]byte(data), &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}

// Save stores the tracked profile
func (r *ProfileRepository) Save(ctx context.Context, profile *user.Profile) error {
	data, err := marshalVersioned(profile)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal profile: user=%s", profile.ID)
	}

	if err := r.client.Set(ctx, profileKey, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to save profile to redis: user=%s", profile.ID)
	}

	return nil
}

// Delete removes the tracked profile
func (r *ProfileRepository) Delete(ctx context.Context) error {
	if err := r.client.Del(ctx, profileKey).Err(); err != nil {
		return errors.Wrap(err, "failed to delete profile from redis")
	}

	return nil
}
