package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AffiliateLink is a recommended product with an outbound link.
type AffiliateLink struct {
	ID              string
	ProductName     string
	ProductURL      string
	ProductImageURL string
	Category        string
	CreatedAt       time.Time
}

// AffiliateInput holds the editable fields of an affiliate link.
type AffiliateInput struct {
	ProductName     string `json:"product_name" validate:"required,max=300"`
	ProductURL      string `json:"product_url" validate:"required,http_url"`
	ProductImageURL string `json:"product_image_url" validate:"omitempty,http_url"`
	Category        string `json:"category" validate:"max=100"`
}

// AffiliateRepo provides CRUD for the affiliate_links table.
type AffiliateRepo struct {
	s *Store
}

// NewAffiliateRepo returns an AffiliateRepo backed by s.
func NewAffiliateRepo(s *Store) *AffiliateRepo {
	return &AffiliateRepo{s: s}
}

const affiliateColumns = `id, product_name, product_url, product_image_url, category, created_at`

func scanAffiliate(row scanner) (AffiliateLink, error) {
	var a AffiliateLink
	var createdAt string
	if err := row.Scan(&a.ID, &a.ProductName, &a.ProductURL, &a.ProductImageURL, &a.Category, &createdAt); err != nil {
		return AffiliateLink{}, err
	}
	a.CreatedAt = parseTime(createdAt)
	return a, nil
}

// List returns every link, newest first.
func (r *AffiliateRepo) List(ctx context.Context) ([]AffiliateLink, error) {
	rows, err := r.s.query(ctx, `SELECT `+affiliateColumns+` FROM affiliate_links ORDER BY created_at DESC`)
	if err != nil {
		return nil, r.s.classify("list", "affiliate link", "", err)
	}
	defer rows.Close()

	var out []AffiliateLink
	for rows.Next() {
		a, err := scanAffiliate(rows)
		if err != nil {
			return nil, r.s.classify("list", "affiliate link", "", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, r.s.classify("list", "affiliate link", "", err)
	}
	return out, nil
}

// Get returns a link by id.
func (r *AffiliateRepo) Get(ctx context.Context, id string) (AffiliateLink, error) {
	a, err := scanAffiliate(r.s.queryRow(ctx, `SELECT `+affiliateColumns+` FROM affiliate_links WHERE id = ?`, id))
	if err != nil {
		return AffiliateLink{}, r.s.classify("get", "affiliate link", "", err)
	}
	return a, nil
}

// Create inserts a new link.
func (r *AffiliateRepo) Create(ctx context.Context, in AffiliateInput) (AffiliateLink, error) {
	in = normalizeAffiliate(in)
	if err := validateInput(in); err != nil {
		return AffiliateLink{}, err
	}
	id := uuid.NewString()
	if _, err := r.s.exec(ctx, `INSERT INTO affiliate_links (`+affiliateColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		id, in.ProductName, in.ProductURL, in.ProductImageURL, in.Category, r.s.timestamp()); err != nil {
		return AffiliateLink{}, r.s.classify("create", "affiliate link", "", err)
	}
	return r.Get(ctx, id)
}

// Update replaces the editable fields of link id.
func (r *AffiliateRepo) Update(ctx context.Context, id string, in AffiliateInput) (AffiliateLink, error) {
	in = normalizeAffiliate(in)
	if err := validateInput(in); err != nil {
		return AffiliateLink{}, err
	}
	res, err := r.s.exec(ctx, `UPDATE affiliate_links SET product_name = ?, product_url = ?, product_image_url = ?, category = ? WHERE id = ?`,
		in.ProductName, in.ProductURL, in.ProductImageURL, in.Category, id)
	if err != nil {
		return AffiliateLink{}, r.s.classify("update", "affiliate link", "", err)
	}
	if err := r.s.requireRow(res, "update", "affiliate link"); err != nil {
		return AffiliateLink{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes link id.
func (r *AffiliateRepo) Delete(ctx context.Context, id string) error {
	_, err := r.s.exec(ctx, `DELETE FROM affiliate_links WHERE id = ?`, id)
	return r.s.classify("delete", "affiliate link", "", err)
}

// Count returns the number of links.
func (r *AffiliateRepo) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, "affiliate_links", "affiliate link")
}

func normalizeAffiliate(in AffiliateInput) AffiliateInput {
	in.ProductName = strings.TrimSpace(in.ProductName)
	in.ProductURL = strings.TrimSpace(in.ProductURL)
	in.ProductImageURL = strings.TrimSpace(in.ProductImageURL)
	in.Category = strings.TrimSpace(in.Category)
	return in
}
