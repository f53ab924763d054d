package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User is a Content Studio administrator.
type User struct {
	ID        string
	Email     string
	CreatedAt time.Time
}

// UserInput holds the fields needed to create an administrator.
type UserInput struct {
	Email    string `json:"email" validate:"required,email,max=320"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserRepo stores administrators and checks their credentials.
type UserRepo struct {
	s    *Store
	cost int
}

// NewUserRepo returns a UserRepo backed by s.
func NewUserRepo(s *Store) *UserRepo {
	return &UserRepo{s: s, cost: bcrypt.DefaultCost}
}

// dummyHash is compared against when the email is unknown so that a miss
// costs the same as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
	return h
})

func scanUser(row scanner) (User, string, error) {
	var u User
	var hash, createdAt string
	if err := row.Scan(&u.ID, &u.Email, &hash, &createdAt); err != nil {
		return User{}, "", err
	}
	u.CreatedAt = parseTime(createdAt)
	return u, hash, nil
}

// List returns every administrator ordered by email.
func (r *UserRepo) List(ctx context.Context) ([]User, error) {
	rows, err := r.s.query(ctx, `SELECT id, email, password_hash, created_at FROM admin_users ORDER BY email ASC`)
	if err != nil {
		return nil, r.s.classify("list", "user", "", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, _, err := scanUser(rows)
		if err != nil {
			return nil, r.s.classify("list", "user", "", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, r.s.classify("list", "user", "", err)
	}
	return out, nil
}

// Get returns an administrator by id.
func (r *UserRepo) Get(ctx context.Context, id string) (User, error) {
	u, _, err := scanUser(r.s.queryRow(ctx, `SELECT id, email, password_hash, created_at FROM admin_users WHERE id = ?`, id))
	if err != nil {
		return User{}, r.s.classify("get", "user", "", err)
	}
	return u, nil
}

// GetByEmail returns an administrator by email address.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	u, _, err := scanUser(r.s.queryRow(ctx, `SELECT id, email, password_hash, created_at FROM admin_users WHERE email = ?`, normalizeEmail(email)))
	if err != nil {
		return User{}, r.s.classify("get", "user", "", err)
	}
	return u, nil
}

// Create adds an administrator with a bcrypt-hashed password.
func (r *UserRepo) Create(ctx context.Context, in UserInput) (User, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateInput(in); err != nil {
		return User{}, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), r.cost)
	if err != nil {
		return User{}, &StoreError{Op: "hash password", Entity: "user", Err: err}
	}
	id := uuid.NewString()
	if _, err := r.s.exec(ctx, `INSERT INTO admin_users (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)`,
		id, in.Email, string(hash), r.s.timestamp()); err != nil {
		return User{}, r.s.classify("create", "user", "email", err)
	}
	return r.Get(ctx, id)
}

// Authenticate checks an email/password pair. A wrong password and an
// unknown email both return ErrInvalidCredentials.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, hash, err := scanUser(r.s.queryRow(ctx, `SELECT id, email, password_hash, created_at FROM admin_users WHERE email = ?`, normalizeEmail(email)))
	if err != nil {
		err = r.s.classify("authenticate", "user", "", err)
		if errors.Is(err, ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// Delete removes administrator id.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.s.exec(ctx, `DELETE FROM admin_users WHERE id = ?`, id)
	return r.s.classify("delete", "user", "", err)
}

// Count returns the number of administrators.
func (r *UserRepo) Count(ctx context.Context) (int, error) {
	return r.s.count(ctx, "admin_users", "user")
}
