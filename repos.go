package site

import (
	"context"

	"github.com/bimaakbar/bimasite/store"
)

// PostRepository is the subset of *store.PostRepo the handlers use.
type PostRepository interface {
	List(ctx context.Context, f store.PostFilter) ([]store.Post, error)
	Get(ctx context.Context, id string) (store.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (store.Post, error)
	Create(ctx context.Context, in store.PostInput) (store.Post, error)
	Update(ctx context.Context, id string, in store.PostInput) (store.Post, error)
	Delete(ctx context.Context, id string) error
	IncrementViews(ctx context.Context, id string) error
}

// CategoryRepository is the subset of *store.CategoryRepo the handlers use.
type CategoryRepository interface {
	List(ctx context.Context) ([]store.Category, error)
	Names(ctx context.Context) ([]string, error)
	Get(ctx context.Context, id string) (store.Category, error)
	Create(ctx context.Context, in store.CategoryInput) (store.Category, error)
	Update(ctx context.Context, id string, in store.CategoryInput) (store.Category, error)
	Delete(ctx context.Context, id string) error
}

// MusicRepository is the subset of *store.MusicRepo the handlers use.
type MusicRepository interface {
	List(ctx context.Context) ([]store.MusicRelease, error)
	Get(ctx context.Context, id string) (store.MusicRelease, error)
	Create(ctx context.Context, in store.MusicInput) (store.MusicRelease, error)
	Update(ctx context.Context, id string, in store.MusicInput) (store.MusicRelease, error)
	Delete(ctx context.Context, id string) error
}

// AffiliateRepository is the subset of *store.AffiliateRepo the handlers use.
type AffiliateRepository interface {
	List(ctx context.Context) ([]store.AffiliateLink, error)
	Get(ctx context.Context, id string) (store.AffiliateLink, error)
	Create(ctx context.Context, in store.AffiliateInput) (store.AffiliateLink, error)
	Update(ctx context.Context, id string, in store.AffiliateInput) (store.AffiliateLink, error)
	Delete(ctx context.Context, id string) error
}

// SubscriberRepository is the subset of *store.SubscriberRepo the handlers use.
type SubscriberRepository interface {
	List(ctx context.Context) ([]store.Subscriber, error)
	Get(ctx context.Context, id string) (store.Subscriber, error)
	Create(ctx context.Context, in store.SubscriberInput) (store.Subscriber, error)
	Subscribe(ctx context.Context, email string) (store.Subscriber, error)
	Update(ctx context.Context, id string, in store.SubscriberInput) (store.Subscriber, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository is the subset of *store.UserRepo the Session Guard uses.
type UserRepository interface {
	Get(ctx context.Context, id string) (store.User, error)
	Authenticate(ctx context.Context, email, password string) (store.User, error)
}

// Repos bundles one repository per table.
type Repos struct {
	Posts       PostRepository
	Categories  CategoryRepository
	Music       MusicRepository
	Affiliates  AffiliateRepository
	Subscribers SubscriberRepository
	Users       UserRepository
}

// NewRepos returns the store-backed repositories.
func NewRepos(s *store.Store) Repos {
	return Repos{
		Posts:       store.NewPostRepo(s),
		Categories:  store.NewCategoryRepo(s),
		Music:       store.NewMusicRepo(s),
		Affiliates:  store.NewAffiliateRepo(s),
		Subscribers: store.NewSubscriberRepo(s),
		Users:       store.NewUserRepo(s),
	}
}
