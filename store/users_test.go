package store

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func setupUserRepo(t *testing.T) *UserRepo {
	t.Helper()
	repo := NewUserRepo(setupTestStore(t))
	repo.cost = bcrypt.MinCost
	return repo
}

func TestAuthenticate(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	created, err := repo.Create(ctx, UserInput{Email: "Admin@Example.com", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	u, err := repo.Authenticate(ctx, "admin@example.com", "correct horse")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if u.ID != created.ID {
		t.Errorf("ID = %q, want %q", u.ID, created.ID)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@example.com", "wrong password"},
		{"unknown email", "nobody@example.com", "correct horse"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := repo.Authenticate(ctx, tt.email, tt.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestCreateUserValidation(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()

	_, err := repo.Create(ctx, UserInput{Email: "admin@example.com", Password: "short"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field("password") == "" {
		t.Errorf("expected password validation error, got %v", err)
	}

	if _, err := repo.Create(ctx, UserInput{Email: "admin@example.com", Password: "long enough"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := repo.Create(ctx, UserInput{Email: "ADMIN@example.com", Password: "long enough"}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate admin should conflict, got %v", err)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestDeleteUser(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	u, _ := repo.Create(ctx, UserInput{Email: "admin@example.com", Password: "long enough"})
	if err := repo.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, u.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := repo.Authenticate(ctx, "admin@example.com", "long enough"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("deleted user should not authenticate, got %v", err)
	}
}

func TestGetByEmail(t *testing.T) {
	repo := setupUserRepo(t)
	ctx := context.Background()
	u, _ := repo.Create(ctx, UserInput{Email: "admin@example.com", Password: "long enough"})

	got, err := repo.GetByEmail(ctx, " ADMIN@example.com ")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != u.ID {
		t.Errorf("ID = %q, want %q", got.ID, u.ID)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
