package store

import (
	"context"
	"errors"
	"testing"
)

func TestCategoriesOrderedByName(t *testing.T) {
	repo := NewCategoryRepo(setupTestStore(t))
	ctx := context.Background()
	for _, name := range []string{"Tech", "Musik", "Lifestyle"} {
		if _, err := repo.Create(ctx, CategoryInput{Name: name}); err != nil {
			t.Fatalf("Create(%q) failed: %v", name, err)
		}
	}

	names, err := repo.Names(ctx)
	if err != nil {
		t.Fatalf("Names failed: %v", err)
	}
	want := []string{"Lifestyle", "Musik", "Tech"}
	if len(names) != len(want) {
		t.Fatalf("Names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %q, want %q", i, names[i], want[i])
		}
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 3 {
		t.Errorf("Count = %d, %v; want 3", n, err)
	}
}

func TestCategoryDuplicateName(t *testing.T) {
	repo := NewCategoryRepo(setupTestStore(t))
	ctx := context.Background()
	if _, err := repo.Create(ctx, CategoryInput{Name: "Musik"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := repo.Create(ctx, CategoryInput{Name: " Musik "})
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if cerr.Field != "name" || cerr.Entity != "category" {
		t.Errorf("ConflictError = %+v", cerr)
	}
}

func TestCategoryEmptyName(t *testing.T) {
	repo := NewCategoryRepo(setupTestStore(t))
	_, err := repo.Create(context.Background(), CategoryInput{Name: "  "})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field("name") == "" {
		t.Fatalf("expected validation error on name, got %v", err)
	}
}

func TestUpdateCategory(t *testing.T) {
	repo := NewCategoryRepo(setupTestStore(t))
	ctx := context.Background()
	c, _ := repo.Create(ctx, CategoryInput{Name: "Musk"})

	got, err := repo.Update(ctx, c.ID, CategoryInput{Name: "Musik"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Name != "Musik" {
		t.Errorf("Name = %q, want Musik", got.Name)
	}
	if _, err := repo.Update(ctx, "missing", CategoryInput{Name: "X"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDeleteCategoryKeepsPosts(t *testing.T) {
	s := setupTestStore(t)
	cats := NewCategoryRepo(s)
	posts := NewPostRepo(s)
	ctx := context.Background()

	c, _ := cats.Create(ctx, CategoryInput{Name: "Musik"})
	p := mustCreatePost(t, posts, PostInput{Title: "Lagu Baru", Category: "Musik", Published: true})

	if err := cats.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err := posts.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("post should survive category delete: %v", err)
	}
	if got.Category != "Musik" {
		t.Errorf("Category = %q, want Musik", got.Category)
	}
	if _, err := cats.Get(ctx, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("category should be gone, got %v", err)
	}
}
