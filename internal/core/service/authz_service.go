package service

import (
	"context"
	"fmt"

	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

// AuthzService resolves target existence against the user store and applies
// the access rules. The rules themselves live in domain.EvaluateAccess; this
// layer only adds the store lookup, so the service stays as deterministic as
// the store's contents.
type AuthzService struct {
	users ports.UserReader
}

func NewAuthzService(users ports.UserReader) *AuthzService {
	return &AuthzService{users: users}
}

// Decide returns the access decision for actor acting on targetID. The only
// error path is a store failure; the decision itself is always a value.
func (s *AuthzService) Decide(ctx context.Context, actor domain.Actor, targetID int64, action domain.Action) (domain.Decision, error) {
	exists, err := s.users.ExistsByID(ctx, targetID)
	if err != nil {
		return domain.Decision{}, fmt.Errorf("authz: target lookup: %w", err)
	}
	return domain.EvaluateAccess(actor, targetID, exists, action), nil
}
