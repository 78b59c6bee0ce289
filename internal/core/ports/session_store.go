package ports

import (
	"context"
	"time"

	"github.com/rbac-labs/user-service/internal/core/domain"
)

// SessionStore persists server-side session records.
type SessionStore interface {
	// Save stores the session with the given time-to-live.
	Save(ctx context.Context, session *domain.Session, ttl time.Duration) error
	// Find returns the session or domain.ErrSessionInvalid when absent.
	Find(ctx context.Context, id string) (*domain.Session, error)
	// Touch updates last-activity and slides the expiry window forward.
	Touch(ctx context.Context, id string, ttl time.Duration) error
	// Revoke removes one session, recording why.
	Revoke(ctx context.Context, id string, reason string) error
	// RevokeAllForUser removes every session of a user, returning the count.
	RevokeAllForUser(ctx context.Context, userID int64, reason string) (int, error)
	// ListForUser returns the live sessions of a user.
	ListForUser(ctx context.Context, userID int64) ([]domain.Session, error)
}
