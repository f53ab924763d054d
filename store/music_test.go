package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMusicOrderedByReleaseDate(t *testing.T) {
	repo := NewMusicRepo(setupTestStore(t))
	ctx := context.Background()
	dates := []string{"2023-05-01", "2024-02-14", "2022-11-30"}
	for i, d := range dates {
		if _, err := repo.Create(ctx, MusicInput{SongTitle: "Song " + string(rune('A'+i)), ReleaseDate: d}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	got, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	want := []string{"2024-02-14", "2023-05-01", "2022-11-30"}
	if len(got) != len(want) {
		t.Fatalf("List count = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if d := got[i].ReleaseDate.Format(DateLayout); d != want[i] {
			t.Errorf("List[%d].ReleaseDate = %s, want %s", i, d, want[i])
		}
	}
}

func TestMusicRoundTrip(t *testing.T) {
	repo := NewMusicRepo(setupTestStore(t))
	ctx := context.Background()
	m, err := repo.Create(ctx, MusicInput{
		SongTitle:     "Senja",
		ReleaseDate:   "2024-02-14",
		CoverArtURL:   "https://example.com/cover.jpg",
		SpotifyURL:    "https://open.spotify.com/track/1",
		AppleMusicURL: "https://music.apple.com/album/1",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := repo.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.ReleaseDate.Equal(time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("ReleaseDate = %v", got.ReleaseDate)
	}
	if got.SpotifyURL != "https://open.spotify.com/track/1" {
		t.Errorf("SpotifyURL = %q", got.SpotifyURL)
	}

	updated, err := repo.Update(ctx, m.ID, MusicInput{SongTitle: "Senja (Remix)", ReleaseDate: "2024-03-01"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.SongTitle != "Senja (Remix)" || updated.CoverArtURL != "" {
		t.Errorf("Update returned %+v", updated)
	}
}

func TestMusicValidation(t *testing.T) {
	repo := NewMusicRepo(setupTestStore(t))
	tests := []struct {
		name  string
		in    MusicInput
		field string
	}{
		{"missing title", MusicInput{ReleaseDate: "2024-01-01"}, "song_title"},
		{"missing date", MusicInput{SongTitle: "X"}, "release_date"},
		{"bad date", MusicInput{SongTitle: "X", ReleaseDate: "14/02/2024"}, "release_date"},
		{"bad spotify url", MusicInput{SongTitle: "X", ReleaseDate: "2024-01-01", SpotifyURL: "spotify:track:1"}, "spotify_url"},
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

func TestDeleteMusic(t *testing.T) {
	repo := NewMusicRepo(setupTestStore(t))
	ctx := context.Background()
	m, _ := repo.Create(ctx, MusicInput{SongTitle: "X", ReleaseDate: "2024-01-01"})
	if err := repo.Delete(ctx, m.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 0 {
		t.Errorf("Count = %d after delete, want 0", n)
	}
}
