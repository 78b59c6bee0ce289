package sqlite

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/rbac-labs/user-service/internal/core/domain"
	"github.com/rbac-labs/user-service/internal/core/ports"
)

func newMockRepo(t *testing.T) (*UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewUserRepository(db), mock
}

func userRows(users ...*domain.User) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "first_name", "last_name", "email", "password",
		"role", "department", "status", "created_at", "updated_at",
	})
	for _, u := range users {
		rows.AddRow(u.ID, u.FirstName, u.LastName, u.Email, u.PasswordHash,
			string(u.Role), u.Department, string(u.Status), u.CreatedAt, u.UpdatedAt)
	}
	return rows
}

func sampleUser() *domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.User{
		ID:           3,
		FirstName:    "Eve",
		LastName:     "Stone",
		Email:        "eve@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         domain.RoleEmployee,
		Department:   "Support",
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserRepository_ExistsByID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM users WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.ExistsByID(context.Background(), 3)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected user to exist")
	}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM users WHERE id = ?")).
		WithArgs(int64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err = repo.ExistsByID(context.Background(), 999)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if exists {
		t.Fatalf("expected user to be missing")
	}
}

func TestUserRepository_FindByID(t *testing.T) {
	repo, mock := newMockRepo(t)
	want := sampleUser()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id = ?").
		WithArgs(want.ID).
		WillReturnRows(userRows(want))

	got, err := repo.FindByID(context.Background(), want.ID)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if got.Email != want.Email || got.Role != want.Role || got.Department != want.Department {
		t.Fatalf("got = %+v", got)
	}
}

func TestUserRepository_FindByIDMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE id = ?").
		WithArgs(int64(999)).
		WillReturnRows(userRows())

	if _, err := repo.FindByID(context.Background(), 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := sampleUser()
	user.ID = 0

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.FirstName, user.LastName, user.Email, user.PasswordHash,
			string(user.Role), user.Department, string(user.Status),
			user.CreatedAt, user.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(42, 1))

	created, err := repo.Create(context.Background(), user)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != 42 {
		t.Fatalf("id = %d, want 42", created.ID)
	}
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := sampleUser()
	user.ID = 999

	mock.ExpectExec("UPDATE users").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), user); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_Delete(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = ?")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), 3); err != nil {
		t.Fatalf("delete: %v", err)
	}

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM users WHERE id = ?")).
		WithArgs(int64(999)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), 999); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_ListWithFilters(t *testing.T) {
	repo, mock := newMockRepo(t)
	user := sampleUser()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM users WHERE role = ? AND status = ?")).
		WithArgs("employee", "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	mock.ExpectQuery("SELECT .+ FROM users WHERE role = \\? AND status = \\? ORDER BY created_at DESC LIMIT \\? OFFSET \\?").
		WithArgs("employee", "active", 20, 0).
		WillReturnRows(userRows(user))

	users, total, err := repo.List(context.Background(), ports.ListUsersInput{
		Role:   domain.RoleEmployee,
		Status: domain.StatusActive,
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(users) != 1 {
		t.Fatalf("got %d/%d", len(users), total)
	}
	if users[0].Email != user.Email {
		t.Fatalf("user = %+v", users[0])
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUserRepository_ListSearch(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM users WHERE (first_name LIKE ? OR last_name LIKE ? OR email LIKE ?)")).
		WithArgs("%eve%", "%eve%", "%eve%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	mock.ExpectQuery("SELECT .+ FROM users WHERE").
		WithArgs("%eve%", "%eve%", "%eve%", 20, 0).
		WillReturnRows(userRows())

	users, total, err := repo.List(context.Background(), ports.ListUsersInput{Search: "eve"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(users) != 0 {
		t.Fatalf("got %d/%d", len(users), total)
	}
}
