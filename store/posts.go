package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Post is a blog post. Content holds stored HTML and must be sanitized
// before it is rendered.
type Post struct {
	ID           string
	Slug         string
	Title        string
	Content      string
	ThumbnailURL string
	Category     string
	Views        int
	IsFeatured   bool
	Published    bool
	CreatedAt    time.Time
}

// Link returns the public path of the post.
func (p Post) Link() string {
	return "/post/" + p.Slug + "/"
}

// PostInput holds the editable fields of a post.
type PostInput struct {
	Title        string `json:"title" validate:"required,max=300"`
	Slug         string `json:"slug" validate:"required,max=200"`
	Content      string `json:"content"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,http_url"`
	Category     string `json:"category" validate:"max=100"`
	IsFeatured   bool   `json:"is_featured"`
	Published    bool   `json:"published"`
}

// PostStatus selects posts by publication state.
type PostStatus string

const (
	StatusAll       PostStatus = "all"
	StatusPublished PostStatus = "published"
	StatusDraft     PostStatus = "draft"
)

// ParseStatus maps a query value onto a PostStatus; unknown values mean all.
func ParseStatus(v string) PostStatus {
	switch PostStatus(strings.ToLower(strings.TrimSpace(v))) {
	case StatusPublished:
		return StatusPublished
	case StatusDraft:
		return StatusDraft
	default:
		return StatusAll
	}
}

// PostFilter constrains PostRepo.List. Constraints combine with AND; a zero
// field adds no constraint.
type PostFilter struct {
	Status        PostStatus
	TitleContains string
	Category      string
}

// PostRepo provides CRUD for the posts table.
type PostRepo struct {
	s *Store
}

// NewPostRepo returns a PostRepo backed by s.
func NewPostRepo(s *Store) *PostRepo {
	return &PostRepo{s: s}
}

const postColumns = `id, slug, title, content, thumbnail_url, category, views, is_featured, published, created_at`

func scanPost(row scanner) (Post, error) {
	var p Post
	var createdAt string
	if err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Content, &p.ThumbnailURL, &p.Category,
		&p.Views, &p.IsFeatured, &p.Published, &createdAt); err != nil {
		return Post{}, err
	}
	p.CreatedAt = parseTime(createdAt)
	return p, nil
}

// List returns posts matching f, newest first.
func (r *PostRepo) List(ctx context.Context, f PostFilter) ([]Post, error) {
	var where []string
	var args []any
	switch f.Status {
	case StatusPublished:
		where = append(where, "published = ?")
		args = append(args, true)
	case StatusDraft:
		where = append(where, "published = ?")
		args = append(args, false)
	}
	if term := strings.TrimSpace(f.TitleContains); term != "" {
		where = append(where, r.s.dialect.lower+`(title) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(strings.ToLower(term))+"%")
	}
	if f.Category != "" {
		where = append(where, "category = ?")
		args = append(args, f.Category)
	}
	q := `SELECT ` + postColumns + ` FROM posts`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.s.query(ctx, q, args...)
	if err != nil {
		return nil, r.s.classify("list", "post", "", err)
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, r.s.classify("list", "post", "", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, r.s.classify("list", "post", "", err)
	}
	return posts, nil
}

// Get returns a post by id regardless of publication state.
func (r *PostRepo) Get(ctx context.Context, id string) (Post, error) {
	p, err := scanPost(r.s.queryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = ?`, id))
	if err != nil {
		return Post{}, r.s.classify("get", "post", "", err)
	}
	return p, nil
}

// GetBySlug returns a post by slug regardless of publication state.
func (r *PostRepo) GetBySlug(ctx context.Context, slug string) (Post, error) {
	p, err := scanPost(r.s.queryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
	if err != nil {
		return Post{}, r.s.classify("get", "post", "", err)
	}
	return p, nil
}

// GetPublishedBySlug returns a published post by slug. Drafts are reported
// as not found.
func (r *PostRepo) GetPublishedBySlug(ctx context.Context, slug string) (Post, error) {
	p, err := scanPost(r.s.queryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = ? AND published = ?`, slug, true))
	if err != nil {
		return Post{}, r.s.classify("get", "post", "", err)
	}
	return p, nil
}

// Create inserts a new post.
func (r *PostRepo) Create(ctx context.Context, in PostInput) (Post, error) {
	in = normalizePost(in)
	if err := validateInput(in); err != nil {
		return Post{}, err
	}
	id := uuid.NewString()
	_, err := r.s.exec(ctx, `INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?, ?)`,
		id, in.Slug, in.Title, in.Content, in.ThumbnailURL, in.Category, in.IsFeatured, in.Published, r.s.timestamp())
	if err != nil {
		return Post{}, r.s.classify("create", "post", "slug", err)
	}
	return r.Get(ctx, id)
}

// Update replaces the editable fields of post id. Views and created_at are
// kept.
func (r *PostRepo) Update(ctx context.Context, id string, in PostInput) (Post, error) {
	in = normalizePost(in)
	if err := validateInput(in); err != nil {
		return Post{}, err
	}
	res, err := r.s.exec(ctx, `UPDATE posts SET slug = ?, title = ?, content = ?, thumbnail_url = ?, category = ?, is_featured = ?, published = ? WHERE id = ?`,
		in.Slug, in.Title, in.Content, in.ThumbnailURL, in.Category, in.IsFeatured, in.Published, id)
	if err != nil {
		return Post{}, r.s.classify("update", "post", "slug", err)
	}
	if err := r.s.requireRow(res, "update", "post"); err != nil {
		return Post{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes post id. Deleting a missing post succeeds.
func (r *PostRepo) Delete(ctx context.Context, id string) error {
	_, err := r.s.exec(ctx, `DELETE FROM posts WHERE id = ?`, id)
	return r.s.classify("delete", "post", "", err)
}

// IncrementViews adds one to the view counter of post id.
func (r *PostRepo) IncrementViews(ctx context.Context, id string) error {
	res, err := r.s.exec(ctx, `UPDATE posts SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return r.s.classify("increment views", "post", "", err)
	}
	return r.s.requireRow(res, "increment views", "post")
}

// Count returns the number of posts.
func (r *PostRepo) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, "posts", "post")
}

func normalizePost(in PostInput) PostInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	in.Category = strings.TrimSpace(in.Category)
	return in
}

// Categories returns the distinct non-empty category names used by posts,
// ordered by name. Only published posts are considered when publishedOnly
// is set.
func (r *PostRepo) Categories(ctx context.Context, publishedOnly bool) ([]string, error) {
	q := `SELECT DISTINCT category FROM posts WHERE category <> ''`
	var args []any
	if publishedOnly {
		q += ` AND published = ?`
		args = append(args, true)
	}
	q += ` ORDER BY category ASC`

	rows, err := r.s.query(ctx, q, args...)
	if err != nil {
		return nil, r.s.classify("list categories", "post", "", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, r.s.classify("list categories", "post", "", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, r.s.classify("list categories", "post", "", err)
	}
	return names, nil
}
