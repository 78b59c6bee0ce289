package ports

import (
	"context"

	"github.com/rbac-labs/user-service/internal/core/domain"
)

// SessionService manages the full session lifecycle on top of SessionStore.
type SessionService interface {
	SessionValidator

	// Create opens a session for the user and returns the signed bearer token.
	Create(ctx context.Context, user *domain.User, meta RequestMeta) (string, *domain.Session, error)
	// TokenSessionID extracts the session id from a bearer token without
	// consulting the store. Used by logout.
	TokenSessionID(token string) (string, error)
	Revoke(ctx context.Context, sessionID, reason string) error
	RevokeAllForUser(ctx context.Context, userID int64, reason string) (int, error)
	ListForUser(ctx context.Context, userID int64) ([]domain.Session, error)
}
