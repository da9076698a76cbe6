package booking

import (
	"context"
	"time"
)

// SessionStore keeps wizard snapshots between requests. The submit lock
// is held for the duration of a single store write; token identifies the
// holder and a release with any other token is a no-op.
type SessionStore interface {
	Save(ctx context.Context, st State) error
	Load(ctx context.Context, id string) (State, error)
	Delete(ctx context.Context, id string) error

	AcquireSubmitLock(ctx context.Context, id, token string, ttl time.Duration) (bool, error)
	ReleaseSubmitLock(ctx context.Context, id, token string) error
	SubmitLocked(ctx context.Context, id string) (bool, error)
}
