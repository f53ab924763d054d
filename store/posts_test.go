package store

import (
	"context"
	"errors"
	"testing"
)

func mustCreatePost(t *testing.T, r *PostRepo, in PostInput) Post {
	t.Helper()
	if in.Slug == "" {
		in.Slug = DeriveSlug(in.Title)
	}
	p, err := r.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create(%q) failed: %v", in.Title, err)
	}
	return p
}

func TestCreateAndGetPost(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	ctx := context.Background()

	created := mustCreatePost(t, repo, PostInput{
		Title:        "Hello, World! 2024",
		Content:      "<p>First post</p>",
		ThumbnailURL: "https://example.com/thumb.jpg",
		Category:     "Musik",
		IsFeatured:   true,
		Published:    true,
	})
	if created.ID == "" {
		t.Fatal("ID should be assigned")
	}
	if created.Slug != "hello-world-2024" {
		t.Errorf("Slug = %q, want %q", created.Slug, "hello-world-2024")
	}
	if created.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Title != "Hello, World! 2024" || got.Content != "<p>First post</p>" || got.Category != "Musik" {
		t.Errorf("Get returned %+v", got)
	}
	if !got.IsFeatured || !got.Published {
		t.Errorf("flags not persisted: %+v", got)
	}
	if got.Views != 0 {
		t.Errorf("Views = %d, want 0", got.Views)
	}
	if got.Link() != "/post/hello-world-2024/" {
		t.Errorf("Link = %q", got.Link())
	}

	bySlug, err := repo.GetBySlug(ctx, "hello-world-2024")
	if err != nil {
		t.Fatalf("GetBySlug failed: %v", err)
	}
	if bySlug.ID != created.ID {
		t.Errorf("GetBySlug ID = %q, want %q", bySlug.ID, created.ID)
	}
}

func TestCreatePostValidation(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))

	tests := []struct {
		name  string
		in    PostInput
		field string
	}{
		{"missing title", PostInput{Slug: "x"}, "title"},
		{"blank title", PostInput{Title: "   ", Slug: "x"}, "title"},
		{"missing slug", PostInput{Title: "T"}, "slug"},
		{"javascript thumbnail", PostInput{Title: "T", Slug: "t", ThumbnailURL: "javascript:alert(1)"}, "thumbnail_url"},
		{"relative thumbnail", PostInput{Title: "T", Slug: "t", ThumbnailURL: "not a url"}, "thumbnail_url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(context.Background(), tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if verr.Field(tt.field) == "" {
				t.Errorf("expected message for %q, got %v", tt.field, verr.Fields)
			}
			if !errors.Is(err, ErrInvalid) {
				t.Error("ValidationError should match ErrInvalid")
			}
		})
	}
}

func TestCreatePostDuplicateSlug(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	mustCreatePost(t, repo, PostInput{Title: "Same Title"})

	_, err := repo.Create(context.Background(), PostInput{Title: "Same Title", Slug: "same-title"})
	var cerr *ConflictError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if cerr.Field != "slug" {
		t.Errorf("Field = %q, want slug", cerr.Field)
	}
	if errors.Is(err, ErrStore) {
		t.Error("conflict should not match ErrStore")
	}
}

func TestListPostsOrderAndStatus(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	ctx := context.Background()

	mustCreatePost(t, repo, PostInput{Title: "Post 1", Published: true})
	mustCreatePost(t, repo, PostInput{Title: "Post 2", Published: false})
	mustCreatePost(t, repo, PostInput{Title: "Post 3", Published: true})
	mustCreatePost(t, repo, PostInput{Title: "Post 4", Published: false})
	mustCreatePost(t, repo, PostInput{Title: "Post 5", Published: true})

	all, err := repo.List(ctx, PostFilter{Status: StatusAll})
	if err != nil {
		t.Fatalf("List(all) failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("List(all) count = %d, want 5", len(all))
	}
	if all[0].Slug != "post-5" || all[4].Slug != "post-1" {
		t.Errorf("List should be newest first, got %s ... %s", all[0].Slug, all[4].Slug)
	}

	published, err := repo.List(ctx, PostFilter{Status: StatusPublished})
	if err != nil {
		t.Fatalf("List(published) failed: %v", err)
	}
	drafts, err := repo.List(ctx, PostFilter{Status: StatusDraft})
	if err != nil {
		t.Fatalf("List(draft) failed: %v", err)
	}
	if len(published) != 3 || len(drafts) != 2 {
		t.Fatalf("published=%d drafts=%d, want 3 and 2", len(published), len(drafts))
	}

	seen := make(map[string]bool)
	for _, p := range published {
		if !p.Published {
			t.Errorf("draft %s in published list", p.Slug)
		}
		seen[p.ID] = true
	}
	for _, p := range drafts {
		if p.Published {
			t.Errorf("published %s in draft list", p.Slug)
		}
		if seen[p.ID] {
			t.Errorf("%s appears in both partitions", p.Slug)
		}
		seen[p.ID] = true
	}
	for _, p := range all {
		if !seen[p.ID] {
			t.Errorf("%s missing from partitions", p.Slug)
		}
	}
}

func TestListPostsTitleContains(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	ctx := context.Background()

	mustCreatePost(t, repo, PostInput{Title: "Rilis MUSIK Baru", Published: true})
	mustCreatePost(t, repo, PostInput{Title: "Tentang musik indie", Published: false})
	mustCreatePost(t, repo, PostInput{Title: "Musikalisasi Puisi", Published: true})
	mustCreatePost(t, repo, PostInput{Title: "Review Gadget", Published: true})
	mustCreatePost(t, repo, PostInput{Title: "100% Done", Published: true})
	mustCreatePost(t, repo, PostInput{Title: "ÜBER DAS LEBEN", Published: true})

	got, err := repo.List(ctx, PostFilter{TitleContains: "musik"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("TitleContains(musik) count = %d, want 3", len(got))
	}

	got, err = repo.List(ctx, PostFilter{Status: StatusPublished, TitleContains: "MuSiK"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("published AND musik count = %d, want 2", len(got))
	}

	got, err = repo.List(ctx, PostFilter{TitleContains: "%"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].Title != "100% Done" {
		t.Errorf("wildcard should be matched literally, got %d posts", len(got))
	}

	got, err = repo.List(ctx, PostFilter{TitleContains: "über"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].Title != "ÜBER DAS LEBEN" {
		t.Errorf("TitleContains(über) should fold non-ASCII case, got %d posts", len(got))
	}
}

func TestListPostsByCategory(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	mustCreatePost(t, repo, PostInput{Title: "A", Category: "Musik", Published: true})
	mustCreatePost(t, repo, PostInput{Title: "B", Category: "Tech", Published: true})

	got, err := repo.List(context.Background(), PostFilter{Category: "Musik"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "a" {
		t.Errorf("Category filter returned %v", got)
	}
}

func TestGetPublishedBySlug(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	ctx := context.Background()
	mustCreatePost(t, repo, PostInput{Title: "Draft Post", Published: false})

	if _, err := repo.GetPublishedBySlug(ctx, "draft-post"); !errors.Is(err, ErrNotFound) {
		t.Errorf("draft should be not found, got %v", err)
	}
	if _, err := repo.GetPublishedBySlug(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing should be not found, got %v", err)
	}
	if _, err := repo.GetBySlug(ctx, "draft-post"); err != nil {
		t.Errorf("GetBySlug should find drafts: %v", err)
	}
}

func TestUpdatePost(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	ctx := context.Background()
	p := mustCreatePost(t, repo, PostInput{Title: "Original Title", Published: false})
	if err := repo.IncrementViews(ctx, p.ID); err != nil {
		t.Fatalf("IncrementViews failed: %v", err)
	}

	updated, err := repo.Update(ctx, p.ID, PostInput{Title: "Updated Title", Slug: p.Slug, Published: true})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Title != "Updated Title" || !updated.Published {
		t.Errorf("Update returned %+v", updated)
	}
	if updated.Slug != "original-title" {
		t.Errorf("slug should be kept on edit, got %q", updated.Slug)
	}
	if updated.Views != 1 {
		t.Errorf("Views = %d, want 1", updated.Views)
	}
	if !updated.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("CreatedAt changed from %v to %v", p.CreatedAt, updated.CreatedAt)
	}
}

func TestUpdatePostErrors(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	ctx := context.Background()
	mustCreatePost(t, repo, PostInput{Title: "Taken"})
	p := mustCreatePost(t, repo, PostInput{Title: "Other"})

	if _, err := repo.Update(ctx, "missing-id", PostInput{Title: "X", Slug: "x"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update of missing post should be not found, got %v", err)
	}
	if _, err := repo.Update(ctx, p.ID, PostInput{Title: "Other", Slug: "taken"}); !errors.Is(err, ErrConflict) {
		t.Errorf("update to taken slug should conflict, got %v", err)
	}
	if _, err := repo.Update(ctx, p.ID, PostInput{Slug: "other"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("update without title should be invalid, got %v", err)
	}
}

func TestDeletePost(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	ctx := context.Background()
	p := mustCreatePost(t, repo, PostInput{Title: "To Delete"})

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("post should not exist after delete, got %v", err)
	}
	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Errorf("Delete on missing post should not error, got %v", err)
	}
}

func TestIncrementViews(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	ctx := context.Background()
	p := mustCreatePost(t, repo, PostInput{Title: "Viewed", Published: true})

	for i := 0; i < 3; i++ {
		if err := repo.IncrementViews(ctx, p.ID); err != nil {
			t.Fatalf("IncrementViews failed: %v", err)
		}
	}
	got, _ := repo.Get(ctx, p.ID)
	if got.Views != 3 {
		t.Errorf("Views = %d, want 3", got.Views)
	}
	if err := repo.IncrementViews(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("IncrementViews on missing post should be not found, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input string
		want  PostStatus
	}{
		{"", StatusAll},
		{"all", StatusAll},
		{"published", StatusPublished},
		{" Draft ", StatusDraft},
		{"bogus", StatusAll},
	}
	for _, tt := range tests {
		if got := ParseStatus(tt.input); got != tt.want {
			t.Errorf("ParseStatus(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestPostCategories(t *testing.T) {
	repo := NewPostRepo(setupTestStore(t))
	ctx := context.Background()
	mustCreatePost(t, repo, PostInput{Title: "A", Category: "Tech", Published: true})
	mustCreatePost(t, repo, PostInput{Title: "B", Category: "Musik", Published: true})
	mustCreatePost(t, repo, PostInput{Title: "C", Category: "Musik", Published: true})
	mustCreatePost(t, repo, PostInput{Title: "D", Category: "Draft Only", Published: false})
	mustCreatePost(t, repo, PostInput{Title: "E", Published: true})

	all, err := repo.Categories(ctx, false)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if want := []string{"Draft Only", "Musik", "Tech"}; !equalStrings(all, want) {
		t.Errorf("Categories(false) = %v, want %v", all, want)
	}

	published, err := repo.Categories(ctx, true)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if want := []string{"Musik", "Tech"}; !equalStrings(published, want) {
		t.Errorf("Categories(true) = %v, want %v", published, want)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
