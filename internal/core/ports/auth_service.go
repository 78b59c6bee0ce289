package ports

import (
	"context"

	"github.com/rbac-labs/user-service/internal/core/domain"
)

// RegisterInput carries self-service registration data. Registration always
// produces an active Employee; only an Admin can hand out other roles.
type RegisterInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Department string
}

// LoginResult is returned on successful authentication.
type LoginResult struct {
	Token   string
	Session *domain.Session
	User    *domain.User
}

// AuthService implements registration, login, and logout.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string, meta RequestMeta) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	LogoutAll(ctx context.Context, userID int64) (int, error)
}
