package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

func newTestAuth(repo *memUserRepo) (*AuthService, *memSessionStore, *captureSink) {
	store := newMemSessionStore()
	sessions := newTestSessions(store, repo, time.Hour)
	sink := &captureSink{}
	return NewAuthService(repo, sessions, sink, zerolog.Nop()), store, sink
}

func registerInput() ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: "Alice",
		LastName:  "Smith",
		Email:     "alice@example.com",
		Password:  "s3cret-pass",
	}
}

func TestAuthService_Register(t *testing.T) {
	repo := newMemUserRepo()
	svc, _, _ := newTestAuth(repo)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if user.PasswordHash == "s3cret-pass" {
		t.Fatalf("password stored in clear")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if user.Department != "General" {
		t.Fatalf("department = %q, want default General", user.Department)
	}
}

// Self-service registration always yields an Employee, whatever the caller
// might try to smuggle in.
func TestAuthService_RegisterForcesEmployeeRole(t *testing.T) {
	repo := newMemUserRepo()
	svc, _, _ := newTestAuth(repo)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != domain.RoleEmployee {
		t.Fatalf("role = %s, want %s", user.Role, domain.RoleEmployee)
	}
	if user.Status != domain.StatusActive {
		t.Fatalf("status = %s, want %s", user.Status, domain.StatusActive)
	}
}

func TestAuthService_RegisterMissingFields(t *testing.T) {
	repo := newMemUserRepo()
	svc, _, _ := newTestAuth(repo)

	input := registerInput()
	input.Email = ""
	if _, err := svc.Register(context.Background(), input); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	repo := newMemUserRepo()
	svc, _, _ := newTestAuth(repo)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(context.Background(), registerInput()); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_LoginSuccess(t *testing.T) {
	repo := newMemUserRepo()
	svc, _, sink := newTestAuth(repo)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass", testMeta())
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" || result.Session == nil {
		t.Fatalf("incomplete login result: %+v", result)
	}
	if result.User.Email != "alice@example.com" {
		t.Fatalf("user = %+v", result.User)
	}

	if len(sink.logins) != 1 || !sink.logins[0].Success {
		t.Fatalf("expected one successful login record, got %+v", sink.logins)
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	repo := newMemUserRepo()
	svc, _, sink := newTestAuth(repo)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register: %v", err)
	}

	if _, err := svc.Login(context.Background(), "alice@example.com", "wrong", testMeta()); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(sink.logins) != 1 || sink.logins[0].Success {
		t.Fatalf("expected one failed login record, got %+v", sink.logins)
	}
}

// Unknown email and wrong password produce the same error, so login probing
// cannot confirm which addresses have accounts.
func TestAuthService_LoginUnknownEmail(t *testing.T) {
	repo := newMemUserRepo()
	svc, _, sink := newTestAuth(repo)

	_, err := svc.Login(context.Background(), "ghost@example.com", "anything", testMeta())
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if len(sink.logins) != 1 {
		t.Fatalf("failed attempt must still be recorded, got %d records", len(sink.logins))
	}
	if sink.logins[0].UserID != nil {
		t.Fatalf("unknown email record should carry nil user id")
	}
}

func TestAuthService_LoginInactiveUser(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("pass"), bcrypt.MinCost)
	repo := newMemUserRepo(&domain.User{
		ID:           21,
		Email:        "off@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleEmployee,
		Status:       domain.StatusInactive,
	})
	svc, _, _ := newTestAuth(repo)

	if _, err := svc.Login(context.Background(), "off@example.com", "pass", testMeta()); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for inactive user, got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	repo := newMemUserRepo()
	svc, store, _ := newTestAuth(repo)

	if _, err := svc.Register(context.Background(), registerInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	result, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass", testMeta())
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got := store.revokeReason(result.Session.ID); got != domain.RevokeLogout {
		t.Fatalf("revoke reason = %q, want %q", got, domain.RevokeLogout)
	}
}

func TestAuthService_LogoutAll(t *testing.T) {
	repo := newMemUserRepo()
	svc, _, _ := newTestAuth(repo)

	user, err := svc.Register(context.Background(), registerInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass", testMeta()); err != nil {
			t.Fatalf("login %d: %v", i, err)
		}
	}

	count, err := svc.LogoutAll(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("logout all: %v", err)
	}
	if count != 2 {
		t.Fatalf("revoked %d sessions, want 2", count)
	}
}
