package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

// UserService implements guarded user management. Every per-record operation
// goes through the Guard, so the decision logic lives in exactly one place.
type UserService struct {
	repo  ports.UserRepository
	guard *Guard
	log   zerolog.Logger
}

func NewUserService(repo ports.UserRepository, guard *Guard, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, guard: guard, log: log}
}

// initialPassword is assigned to admin-created accounts. The original demo
// expected the user to change it on first login.
const initialPassword = "ChangeMe!123"

// List returns a page of the user directory. Enumeration is a cross-user
// read, so Employees are rejected outright.
func (s *UserService) List(ctx context.Context, actor domain.Actor, input ports.ListUsersInput) ([]domain.User, int64, error) {
	if !domain.CanListUsers(actor.Role) {
		return nil, 0, domain.ErrForbidden
	}
	return s.repo.List(ctx, input)
}

// Get returns a single user record, subject to the access decision.
func (s *UserService) Get(ctx context.Context, actor domain.Actor, targetID int64, meta ports.RequestMeta) (*domain.User, error) {
	decision, err := s.guard.Authorize(ctx, actor, targetID, domain.ActionRead, meta)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed() {
		return nil, denialError(actor, decision)
	}
	return s.repo.FindByID(ctx, targetID)
}

// Create adds a new account. Only Admins create users; everyone else goes
// through self-service registration.
func (s *UserService) Create(ctx context.Context, actor domain.Actor, input ports.CreateUserInput) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if !input.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(initialPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		Department:   input.Department,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("actor_id", actor.ID).Int64("user_id", created.ID).Str("role", string(created.Role)).Msg("user created")
	return created, nil
}

// Update applies a partial update, subject to the access decision. Role and
// status changes are Admin-only even on the actor's own record; self-access
// covers profile fields, not privilege.
func (s *UserService) Update(ctx context.Context, actor domain.Actor, targetID int64, input ports.UpdateUserInput, meta ports.RequestMeta) (*domain.User, error) {
	decision, err := s.guard.Authorize(ctx, actor, targetID, domain.ActionUpdate, meta)
	if err != nil {
		return nil, err
	}
	if !decision.Allowed() {
		return nil, denialError(actor, decision)
	}

	if (input.Role != nil || input.Status != nil) && actor.Role != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if input.Role != nil && !input.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		user.LastName = *input.LastName
	}
	if input.Email != nil {
		user.Email = *input.Email
	}
	if input.Role != nil {
		user.Role = *input.Role
	}
	if input.Department != nil {
		user.Department = *input.Department
	}
	if input.Status != nil {
		user.Status = *input.Status
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Int64("actor_id", actor.ID).Int64("user_id", user.ID).Msg("user updated")
	return user, nil
}

// Delete removes a user record, subject to the access decision. The guard
// already blocks self-deletion regardless of role.
func (s *UserService) Delete(ctx context.Context, actor domain.Actor, targetID int64, meta ports.RequestMeta) error {
	decision, err := s.guard.Authorize(ctx, actor, targetID, domain.ActionDelete, meta)
	if err != nil {
		return err
	}
	if !decision.Allowed() {
		return denialError(actor, decision)
	}

	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}

	s.log.Info().Int64("actor_id", actor.ID).Int64("user_id", targetID).Msg("user deleted")
	return nil
}

// denialError maps a denying decision to the domain error the HTTP layer
// renders. A missing target reads as not-found only for Admins; everyone
// else gets the same generic denial as an existing-but-forbidden record, so
// probing ids leaks nothing.
func denialError(actor domain.Actor, decision domain.Decision) error {
	if decision.Allowed() {
		return nil
	}
	if decision.Reason == domain.ReasonTargetNotFound && actor.Role == domain.RoleAdmin {
		return domain.ErrUserNotFound
	}
	return fmt.Errorf("%w: %s", domain.ErrForbidden, decision.Reason)
}
