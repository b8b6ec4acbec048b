package redis

import (
	"context"

	"github.com/redis/go-redis/v9"

	"stocksense/internal/domain/focus"
	"stocksense/pkg/errors"
)

const (
	focusSettingsKey = "focus:settings"
	focusHistoryKey  = "focus:history"
)

// FocusRepository implements focus.Repository using Redis
type FocusRepository struct {
	client *redis.Client
}

// NewFocusRepository creates a new focus repository
func NewFocusRepository(client *redis.Client) *FocusRepository {
	return &FocusRepository{
		client: client,
	}
}

// GetSettings retrieves persisted timer settings
func (r *FocusRepository) GetSettings(ctx context.Context) (focus.Settings, error) {
	data, err := r.client.Get(ctx, focusSettingsKey).Result()
	if err == redis.Nil {
		return focus.Settings{}, errors.Wrap(errors.ErrNotFound, "focus settings not found")
	}
	if err != nil {
		return focus.Settings{}, errors.Wrap(err, "failed to get focus settings from redis")
	}

	var settings focus.Settings
	if err := unmarshalVersioned([]byte(data), &settings); err != nil {
		return focus.Settings{}, err
	}

	return settings, nil
}

// SaveSettings stores timer settings
func (r *FocusRepository) SaveSettings(ctx context.Context, settings focus.Settings) error {
	data, err := marshalVersioned(settings)
	if err != nil {
		return errors.Wrap(err, "failed to marshal focus settings")
	}

	if err := r.client.Set(ctx, focusSettingsKey, data, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to save focus settings to redis")
	}

	return nil
}

// History returns past sessions oldest first
func (r *FocusRepository) History(ctx context.Context) ([]focus.Session, error) {
	data, err := r.client.Get(ctx, focusHistoryKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get focus history from redis")
	}

	var history []focus.Session
	if err := unmarshalVersioned([]byte(data), &history); err != nil {
		// corrupt history starts over empty
		return nil, nil
	}

	return history, nil
}

// AppendHistory appends a closed session, evicting the oldest past
// focus.MaxHistory
func (r *FocusRepository) AppendHistory(ctx context.Context, session focus.Session) error {
	history, err := r.History(ctx)
	if err != nil {
		return err
	}

	history = append(history, session)
	if len(history) > focus.MaxHistory {
		history = history[len(history)-focus.MaxHistory:]
	}

	data, err := marshalVersioned(history)
	if err != nil {
		return errors.Wrap(err, "failed to marshal focus history")
	}

	if err := r.client.Set(ctx, focusHistoryKey, data, 0).Err(); err != nil {
		return errors.Wrap(err, "failed to save focus history to redis")
	}

	return nil
}
