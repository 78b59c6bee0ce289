package ports

import (
	"context"

	"github.com/rbac-labs/user-service/internal/core/domain"
)

// CreateUserInput carries the fields for an admin-created account.
type CreateUserInput struct {
	FirstName  string
	LastName   string
	Email      string
	Role       domain.Role
	Department string
}

// UpdateUserInput carries a partial update; nil fields are left unchanged.
type UpdateUserInput struct {
	FirstName  *string
	LastName   *string
	Email      *string
	Role       *domain.Role
	Department *string
	Status     *domain.UserStatus
}

// UserService defines the guarded user-management operations. Every method
// that touches a specific record runs the authorization decision internally,
// so no caller can reach the store around the decider.
type UserService interface {
	List(ctx context.Context, actor domain.Actor, input ListUsersInput) ([]domain.User, int64, error)
	Get(ctx context.Context, actor domain.Actor, targetID int64, meta RequestMeta) (*domain.User, error)
	Create(ctx context.Context, actor domain.Actor, input CreateUserInput) (*domain.User, error)
	Update(ctx context.Context, actor domain.Actor, targetID int64, input UpdateUserInput, meta RequestMeta) (*domain.User, error)
	Delete(ctx context.Context, actor domain.Actor, targetID int64, meta RequestMeta) error
}
