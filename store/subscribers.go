package store

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Subscriber is a newsletter address.
type Subscriber struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// SubscriberInput holds the editable fields of a subscriber.
type SubscriberInput struct {
	Email string `json:"email" validate:"required,email,max=320"`
}

// SubscriberRepo provides CRUD for the subscribers table. Emails are stored
// lowercased so uniqueness ignores case.
type SubscriberRepo struct {
	s *Store
}

// NewSubscriberRepo returns a SubscriberRepo backed by s.
func NewSubscriberRepo(s *Store) *SubscriberRepo {
	return &SubscriberRepo{s: s}
}

func scanSubscriber(row scanner) (Subscriber, error) {
	var sub Subscriber
	var createdAt string
	if err := row.Scan(&sub.ID, &sub.Email, &createdAt); err != nil {
		return Subscriber{}, err
	}
	sub.CreatedAt = parseTime(createdAt)
	return sub, nil
}

// List returns every subscriber, newest first.
func (r *SubscriberRepo) List(ctx context.Context) ([]Subscriber, error) {
	rows, err := r.s.query(ctx, `SELECT id, email, created_at FROM subscribers ORDER BY created_at DESC`)
	if err != nil {
		return nil, r.s.classify("list", "subscriber", "", err)
	}
	defer rows.Close()

	var out []Subscriber
	for rows.Next() {
		sub, err := scanSubscriber(rows)
		if err != nil {
			return nil, r.s.classify("list", "subscriber", "", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, r.s.classify("list", "subscriber", "", err)
	}
	return out, nil
}

// Get returns a subscriber by id.
func (r *SubscriberRepo) Get(ctx context.Context, id string) (Subscriber, error) {
	sub, err := scanSubscriber(r.s.queryRow(ctx, `SELECT id, email, created_at FROM subscribers WHERE id = ?`, id))
	if err != nil {
		return Subscriber{}, r.s.classify("get", "subscriber", "", err)
	}
	return sub, nil
}

// Create inserts a subscriber. An address that is already subscribed
// returns a *ConflictError.
func (r *SubscriberRepo) Create(ctx context.Context, in SubscriberInput) (Subscriber, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return Subscriber{}, err
	}
	id := uuid.NewString()
	if _, err := r.s.exec(ctx, `INSERT INTO subscribers (id, email, created_at) VALUES (?, ?, ?)`,
		id, in.Email, r.s.timestamp()); err != nil {
		return Subscriber{}, r.s.classify("create", "subscriber", "email", err)
	}
	return r.Get(ctx, id)
}

// Subscribe is Create for a bare address.
func (r *SubscriberRepo) Subscribe(ctx context.Context, email string) (Subscriber, error) {
	return r.Create(ctx, SubscriberInput{Email: email})
}

// Update changes the address of subscriber id.
func (r *SubscriberRepo) Update(ctx context.Context, id string, in SubscriberInput) (Subscriber, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return Subscriber{}, err
	}
	res, err := r.s.exec(ctx, `UPDATE subscribers SET email = ? WHERE id = ?`, in.Email, id)
	if err != nil {
		return Subscriber{}, r.s.classify("update", "subscriber", "email", err)
	}
	if err := r.s.requireRow(res, "update", "subscriber"); err != nil {
		return Subscriber{}, err
	}
	return r.Get(ctx, id)
}

// Delete removes subscriber id.
func (r *SubscriberRepo) Delete(ctx context.Context, id string) error {
	_, err := r.s.exec(ctx, `DELETE FROM subscribers WHERE id = ?`, id)
	return r.s.classify("delete", "subscriber", "", err)
}

// Count returns the number of subscribers.
func (r *SubscriberRepo) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, "subscribers", "subscriber")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
