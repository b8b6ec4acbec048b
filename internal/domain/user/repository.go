package user

import "context"

// Repository persists the single tracked profile blob.
// Save is called after every profile mutation; there is no transactional
// grouping across fields.
type Repository interface {
	Get(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, profile *Profile) error
	Delete(ctx context.Context) error
}
