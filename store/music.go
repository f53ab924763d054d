package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MusicRelease is a released song with optional streaming links.
type MusicRelease struct {
	ID            string
	SongTitle     string
	ReleaseDate   time.Time
	CoverArtURL   string
	SpotifyURL    string
	AppleMusicURL string
	CreatedAt     time.Time
}

// MusicInput holds the editable fields of a release. ReleaseDate uses
// DateLayout.
type MusicInput struct {
	SongTitle     string `json:"song_title" validate:"required,max=300"`
	ReleaseDate   string `json:"release_date" validate:"required,datetime=2006-01-02"`
	CoverArtURL   string `json:"cover_art_url" validate:"omitempty,http_url"`
	SpotifyURL    string `json:"spotify_url" validate:"omitempty,http_url"`
	AppleMusicURL string `json:"apple_music_url" validate:"omitempty,http_url"`
}

// MusicRepo provides CRUD for the music_releases table.
type MusicRepo struct {
	s *Store
}

// NewMusicRepo returns a MusicRepo backed by s.
func NewMusicRepo(s *Store) *MusicRepo {
	return &MusicRepo{s: s}
}

const musicColumns = `id, song_title, release_date, cover_art_url, spotify_url, apple_music_url, created_at`

func scanMusic(row scanner) (MusicRelease, error) {
	var m MusicRelease
	var releaseDate, createdAt string
	if err := row.Scan(&m.ID, &m.SongTitle, &releaseDate, &m.CoverArtURL, &m.SpotifyURL, &m.AppleMusicURL, &createdAt); err != nil {
		return MusicRelease{}, err
	}
	m.ReleaseDate, _ = time.Parse(DateLayout, releaseDate)
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}

// List returns every release, most recent release date first.
func (r *MusicRepo) List(ctx context.Context) ([]MusicRelease, error) {
	rows, err := r.s.query(ctx, `SELECT `+musicColumns+` FROM music_releases ORDER BY release_date DESC, created_at DESC`)
	if err != nil {
		return nil, r.s.classify("list", "music release", "", err)
	}
	defer rows.Close()

	var out []MusicRelease
	for rows.Next() {
		m, err := scanMusic(rows)
		if err != nil {
			return nil, r.s.classify("list", "music release", "", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, r.s.classify("list", "music release", "", err)
	}
	return out, nil
}

// Get returns a release by id.
func (r *MusicRepo) Get(ctx context.Context, id string) (MusicRelease, error) {
	m, err := scanMusic(r.s.queryRow(ctx, `SELECT `+musicColumns+` FROM music_releases WHERE id = ?`, id))
	if err != nil {
		return MusicRelease{}, r.s.classify("get", "music release", "", err)
	}
	return m, nil
}

// Create inserts a new release.
func (r *MusicRepo) Create(ctx context.Context, in MusicInput) (MusicRelease, error) {
	in = normalizeMusic(in)
	if err := validateInput(in); err != nil {
		return MusicRelease{}, err
	}
	id := uuid.NewString()
	if _, err := r.s.exec(ctx, `INSERT INTO music_releases (`+musicColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, in.SongTitle, in.ReleaseDate, in.CoverArtURL, in.SpotifyURL, in.AppleMusicURL, r.s.timestamp()); err != nil {
		return MusicRelease{}, r.s.classify("create", "music release", "", err)
	}
	return r.Get(ctx, id)
}

// Update replaces the editable fields of release id.
func (r *MusicRepo) Update(ctx context.Context, id string, in MusicInput) (MusicRelease, error) {
	in = normalizeMusic(in)
	if err := validateInput(in); err != nil {
		return MusicRelease{}, err
	}
	res, err := r.s.exec(ctx, `UPDATE music_releases SET song_title = ?, release_date = ?, cover_art_url = ?, spotify_url = ?, apple_music_url = ? WHERE id = ?`,
		in.SongTitle, in.ReleaseDate, in.CoverArtURL, in.SpotifyURL, in.AppleMusicURL, id)
	if err != nil {
		return MusicRelease{}, r.s.classify("update", "music release", "", err)
	}
	if err := r.s.requireRow(res, "update", "music release"); err != nil {
		return MusicRelease{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes release id.
func (r *MusicRepo) Delete(ctx context.Context, id string) error {
	_, err := r.s.exec(ctx, `DELETE FROM music_releases WHERE id = ?`, id)
	return r.s.classify("delete", "music release", "", err)
}

// Count returns the number of releases.
func (r *MusicRepo) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, "music_releases", "music release")
}

func normalizeMusic(in MusicInput) MusicInput {
	in.SongTitle = strings.TrimSpace(in.SongTitle)
	in.ReleaseDate = strings.TrimSpace(in.ReleaseDate)
	in.CoverArtURL = strings.TrimSpace(in.CoverArtURL)
	in.SpotifyURL = strings.TrimSpace(in.SpotifyURL)
	in.AppleMusicURL = strings.TrimSpace(in.AppleMusicURL)
	return in
}
