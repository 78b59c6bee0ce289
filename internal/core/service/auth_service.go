package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

// AuthService implements registration, login, and logout.
type AuthService struct {
	repo     ports.UserRepository
	sessions ports.SessionService
	audit    ports.AuditSink
	log      zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, sessions ports.SessionService, audit ports.AuditSink, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, sessions: sessions, audit: audit, log: log}
}

// Register creates a new Employee account. Role escalation at sign-up is not
// a thing: anything above Employee has to come from an Admin.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	if input.FirstName == "" || input.LastName == "" || input.Email == "" || input.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	department := input.Department
	if department == "" {
		department = "General"
	}

	now := time.Now().UTC()
	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleEmployee,
		Department:   department,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().Int64("user_id", created.ID).Str("email", created.Email).Msg("user registered")
	return created, nil
}

// Login verifies credentials, opens a session, and returns the bearer token.
// Every attempt, either way, lands in the audit trail.
func (s *AuthService) Login(ctx context.Context, email, password string, meta ports.RequestMeta) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.recordLogin(email, nil, false, meta)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordLogin(email, &user.ID, false, meta)
		return nil, domain.ErrInvalidCredentials
	}

	if !user.Active() {
		s.recordLogin(email, &user.ID, false, meta)
		return nil, domain.ErrInvalidCredentials
	}

	token, session, err := s.sessions.Create(ctx, user, meta)
	if err != nil {
		return nil, err
	}

	s.recordLogin(email, &user.ID, true, meta)
	return &ports.LoginResult{Token: token, Session: session, User: user}, nil
}

// Logout revokes the session behind the presented token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	sessionID, err := s.sessions.TokenSessionID(token)
	if err != nil {
		return domain.ErrSessionInvalid
	}
	return s.sessions.Revoke(ctx, sessionID, domain.RevokeLogout)
}

// LogoutAll revokes every session the user holds and returns the count.
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) (int, error) {
	return s.sessions.RevokeAllForUser(ctx, userID, domain.RevokeLogoutAll)
}

func (s *AuthService) recordLogin(email string, userID *int64, success bool, meta ports.RequestMeta) {
	s.audit.RecordLogin(domain.LoginRecord{
		Email:     email,
		UserID:    userID,
		Success:   success,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
		At:        time.Now().UTC(),
	})
}
