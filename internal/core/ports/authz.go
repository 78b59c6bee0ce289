package ports

import (
	"context"

	"github.com/rbac-labs/user-service/internal/core/domain"
)

// RequestMeta carries the client attributes forwarded to the audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// SessionValidator resolves a bearer token into the acting identity.
// It returns domain.ErrSessionInvalid for anything that should read as "no
// valid session": bad signature, missing record, expiry, fingerprint
// mismatch, or a deactivated account.
type SessionValidator interface {
	Resolve(ctx context.Context, token string, meta RequestMeta) (domain.Actor, error)
}

// Authorizer is the single entry point for authorization checks. Every call
// emits exactly one audit record before the decision is returned, including
// the invalid-session short-circuit.
type Authorizer interface {
	// Authorize decides whether actor may perform action on targetID.
	Authorize(ctx context.Context, actor domain.Actor, targetID int64, action domain.Action, meta RequestMeta) (domain.Decision, error)
	// DenyInvalidSession records and returns the denial used when no actor
	// could be resolved for the request.
	DenyInvalidSession(ctx context.Context, targetID int64, action domain.Action, meta RequestMeta) domain.Decision
}
