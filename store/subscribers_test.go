package store

import (
	"context"
	"errors"
	"testing"
)

func TestSubscribe(t *testing.T) {
	repo := NewSubscriberRepo(setupTestStore(t))
	ctx := context.Background()

	s, err := repo.Subscribe(ctx, "  Reader@Example.com ")
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}
	if s.Email != "reader@example.com" {
		t.Errorf("Email = %q, want normalized address", s.Email)
	}
}

func TestSubscribeDuplicateIsConflict(t *testing.T) {
	repo := NewSubscriberRepo(setupTestStore(t))
	ctx := context.Background()
	if _, err := repo.Subscribe(ctx, "reader@example.com"); err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	for _, email := range []string{"reader@example.com", "READER@example.com"} {
		_, err := repo.Subscribe(ctx, email)
		var cerr *ConflictError
		if !errors.As(err, &cerr) {
			t.Fatalf("Subscribe(%q): expected *ConflictError, got %v", email, err)
		}
		if cerr.Field != "email" {
			t.Errorf("Field = %q, want email", cerr.Field)
		}
		if errors.Is(err, ErrStore) {
			t.Errorf("duplicate should not be reported as a store error")
		}
	}

	if n, _ := repo.Count(ctx); n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
}

func TestSubscribeInvalidEmail(t *testing.T) {
	repo := NewSubscriberRepo(setupTestStore(t))
	for _, email := range []string{"", "not-an-email", "a@"} {
		_, err := repo.Subscribe(context.Background(), email)
		var verr *ValidationError
		if !errors.As(err, &verr) || verr.Field("email") == "" {
			t.Errorf("Subscribe(%q): expected email validation error, got %v", email, err)
		}
	}
}

func TestSubscribersListAndDelete(t *testing.T) {
	repo := NewSubscriberRepo(setupTestStore(t))
	ctx := context.Background()
	first, _ := repo.Subscribe(ctx, "a@example.com")
	repo.Subscribe(ctx, "b@example.com")

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].Email != "b@example.com" {
		t.Errorf("List should be newest first, got %+v", list)
	}

	if err := repo.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Subscribe(ctx, "a@example.com"); err != nil {
		t.Errorf("resubscribe after delete failed: %v", err)
	}
}
