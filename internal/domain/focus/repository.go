package focus

import "context"

// MaxHistory bounds the persisted session history
const MaxHistory = 200

// Repository persists focus settings and session history blobs
type Repository interface {
	GetSettings(ctx context.Context) (Settings, error)
	SaveSettings(ctx context.Context, settings Settings) error

	// History returns past sessions oldest first
	History(ctx context.Context) ([]Session, error)

	// AppendHistory appends a closed session, evicting the oldest past
	// MaxHistory
	AppendHistory(ctx context.Context, session Session) error
}
