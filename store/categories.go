package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is a named post grouping. Posts reference it by name only; no
// foreign key ties the two together.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// CategoryInput holds the editable fields of a category.
type CategoryInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

// CategoryRepo provides CRUD for the categories table.
type CategoryRepo struct {
	s *Store
}

// NewCategoryRepo returns a CategoryRepo backed by s.
func NewCategoryRepo(s *Store) *CategoryRepo {
	return &CategoryRepo{s: s}
}

func scanCategory(row scanner) (Category, error) {
	var c Category
	var createdAt string
	if err := row.Scan(&c.ID, &c.Name, &createdAt); err != nil {
		return Category{}, err
	}
	c.CreatedAt = parseTime(createdAt)
	return c, nil
}

// List returns every category ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]Category, error) {
	rows, err := r.s.query(ctx, `SELECT id, name, created_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, r.s.classify("list", "category", "", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, r.s.classify("list", "category", "", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, r.s.classify("list", "category", "", err)
	}
	return out, nil
}

// Names returns the category names ordered by name.
func (r *CategoryRepo) Names(ctx context.Context) ([]string, error) {
	cats, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names, nil
}

// Get returns a category by id.
func (r *CategoryRepo) Get(ctx context.Context, id string) (Category, error) {
	c, err := scanCategory(r.s.queryRow(ctx, `SELECT id, name, created_at FROM categories WHERE id = ?`, id))
	if err != nil {
		return Category{}, r.s.classify("get", "category", "", err)
	}
	return c, nil
}

// Create inserts a new category.
func (r *CategoryRepo) Create(ctx context.Context, in CategoryInput) (Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return Category{}, err
	}
	id := uuid.NewString()
	if _, err := r.s.exec(ctx, `INSERT INTO categories (id, name, created_at) VALUES (?, ?, ?)`,
		id, in.Name, r.s.timestamp()); err != nil {
		return Category{}, r.s.classify("create", "category", "name", err)
	}
	return r.Get(ctx, id)
}

// Update renames category id. Posts that used the old name keep it.
func (r *CategoryRepo) Update(ctx context.Context, id string, in CategoryInput) (Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return Category{}, err
	}
	res, err := r.s.exec(ctx, `UPDATE categories SET name = ? WHERE id = ?`, in.Name, id)
	if err != nil {
		return Category{}, r.s.classify("update", "category", "name", err)
	}
	if err := r.s.requireRow(res, "update", "category"); err != nil {
		return Category{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes category id. Posts referencing its name are left as they are.
func (r *CategoryRepo) Delete(ctx context.Context, id string) error {
	_, err := r.s.exec(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return r.s.classify("delete", "category", "", err)
}

// Count returns the number of categories.
func (r *CategoryRepo) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, "categories", "category")
}
