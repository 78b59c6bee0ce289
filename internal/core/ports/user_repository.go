package ports

import (
	"context"

	"github.com/rbac-labs/user-service/internal/core/domain"
)

// UserReader is the read-only slice of the user store the authorization
// decider depends on. Kept minimal so the decider cannot grow side effects.
type UserReader interface {
	ExistsByID(ctx context.Context, id int64) (bool, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// ListUsersInput carries pagination and filters for the list endpoint.
type ListUsersInput struct {
	Role   domain.Role
	Status domain.UserStatus
	Search string
	Page   int
	Limit  int
}

// UserRepository defines the persistence interface for user records.
type UserRepository interface {
	UserReader
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, input ListUsersInput) ([]domain.User, int64, error)
}
