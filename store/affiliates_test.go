package store

import (
	"context"
	"errors"
	"testing"
)

func TestAffiliatesNewestFirst(t *testing.T) {
	repo := NewAffiliateRepo(setupTestStore(t))
	ctx := context.Background()
	for _, name := range []string{"Mic", "Headphones", "Keyboard"} {
		if _, err := repo.Create(ctx, AffiliateInput{ProductName: name, ProductURL: "https://shop.example.com/" + name}); err != nil {
			t.Fatalf("Create(%q) failed: %v", name, err)
		}
	}
	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 3 || got[0].ProductName != "Keyboard" || got[2].ProductName != "Mic" {
		t.Errorf("List order wrong: %+v", got)
	}
}

func TestAffiliateValidation(t *testing.T) {
	repo := NewAffiliateRepo(setupTestStore(t))
	tests := []struct {
		name  string
		in    AffiliateInput
		field string
	}{
		{"missing name", AffiliateInput{ProductURL: "https://x.example"}, "product_name"},
		{"missing url", AffiliateInput{ProductName: "X"}, "product_url"},
		{"javascript url", AffiliateInput{ProductName: "X", ProductURL: "javascript:alert(1)"}, "product_url"},
		{"bad image url", AffiliateInput{ProductName: "X", ProductURL: "https://x.example", ProductImageURL: "ftp://x"}, "product_image_url"},
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
		})
	}
}

func TestUpdateAndDeleteAffiliate(t *testing.T) {
	repo := NewAffiliateRepo(setupTestStore(t))
	ctx := context.Background()
	a, err := repo.Create(ctx, AffiliateInput{ProductName: "Mic", ProductURL: "https://shop.example.com/mic", Category: "Audio"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := repo.Update(ctx, a.ID, AffiliateInput{ProductName: "USB Mic", ProductURL: "https://shop.example.com/usb-mic", Category: "Audio"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.ProductName != "USB Mic" || !got.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("Update returned %+v", got)
	}
	if err := repo.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, a.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := repo.Update(ctx, a.ID, AffiliateInput{ProductName: "X", ProductURL: "https://x.example"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("update after delete should be not found, got %v", err)
	}
}
