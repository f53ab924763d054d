package site

import (
	"errors"
	"net/url"
	"strings"

	"github.com/bimaakbar/bimasite/panel"
	"github.com/bimaakbar/bimasite/store"
	"github.com/bimaakbar/bimasite/views"
)

// Each parse function reads only its entity's fields from the submitted
// form; anything else is ignored.

func formValue(form url.Values, name string) string {
	return strings.TrimSpace(form.Get(name))
}

// formBool maps an HTML checkbox onto a bool.
func formBool(form url.Values, name string) bool {
	switch strings.ToLower(formValue(form, name)) {
	case "on", "true", "1":
		return true
	}
	return false
}

// ParsePostForm maps a submitted post form. On create a blank slug is
// derived from the title.
func ParsePostForm(form url.Values, creating bool) store.PostInput {
	in := store.PostInput{
		Title:        formValue(form, "title"),
		Slug:         formValue(form, "slug"),
		Content:      form.Get("content"),
		ThumbnailURL: formValue(form, "thumbnail_url"),
		Category:     formValue(form, "category"),
		IsFeatured:   formBool(form, "is_featured"),
		Published:    formBool(form, "published"),
	}
	if creating && in.Slug == "" {
		in.Slug = store.DeriveSlug(in.Title)
	}
	return in
}

// ParseCategoryForm maps a submitted category form.
func ParseCategoryForm(form url.Values) store.CategoryInput {
	return store.CategoryInput{Name: formValue(form, "name")}
}

// ParseMusicForm maps a submitted music release form. release_date is
// checked for YYYY-MM-DD by the repository.
func ParseMusicForm(form url.Values) store.MusicInput {
	return store.MusicInput{
		SongTitle:     formValue(form, "song_title"),
		ReleaseDate:   formValue(form, "release_date"),
		CoverArtURL:   formValue(form, "cover_art_url"),
		SpotifyURL:    formValue(form, "spotify_url"),
		AppleMusicURL: formValue(form, "apple_music_url"),
	}
}

// ParseAffiliateForm maps a submitted affiliate link form.
func ParseAffiliateForm(form url.Values) store.AffiliateInput {
	return store.AffiliateInput{
		ProductName:     formValue(form, "product_name"),
		ProductURL:      formValue(form, "product_url"),
		ProductImageURL: formValue(form, "product_image_url"),
		Category:        formValue(form, "category"),
	}
}

// ParseSubscriberForm maps a submitted subscriber form.
func ParseSubscriberForm(form url.Values) store.SubscriberInput {
	return store.SubscriberInput{Email: formValue(form, "email")}
}

func boolValue(b bool) string {
	if b {
		return "on"
	}
	return ""
}

func postValues(in store.PostInput) map[string]string {
	return map[string]string{
		"title":         in.Title,
		"slug":          in.Slug,
		"content":       in.Content,
		"thumbnail_url": in.ThumbnailURL,
		"category":      in.Category,
		"is_featured":   boolValue(in.IsFeatured),
		"published":     boolValue(in.Published),
	}
}

func postToInput(p store.Post) store.PostInput {
	return store.PostInput{
		Title:        p.Title,
		Slug:         p.Slug,
		Content:      p.Content,
		ThumbnailURL: p.ThumbnailURL,
		Category:     p.Category,
		IsFeatured:   p.IsFeatured,
		Published:    p.Published,
	}
}

func categoryValues(in store.CategoryInput) map[string]string {
	return map[string]string{"name": in.Name}
}

func musicValues(in store.MusicInput) map[string]string {
	return map[string]string{
		"song_title":      in.SongTitle,
		"release_date":    in.ReleaseDate,
		"cover_art_url":   in.CoverArtURL,
		"spotify_url":     in.SpotifyURL,
		"apple_music_url": in.AppleMusicURL,
	}
}

func affiliateValues(in store.AffiliateInput) map[string]string {
	return map[string]string{
		"product_name":      in.ProductName,
		"product_url":       in.ProductURL,
		"product_image_url": in.ProductImageURL,
		"category":          in.Category,
	}
}

func subscriberValues(in store.SubscriberInput) map[string]string {
	return map[string]string{"email": in.Email}
}

// formState returns the form to re-render after err. Validation errors
// become per-field messages; anything else becomes the form-level message.
func formState(values map[string]string, err error) views.FormState {
	f := views.FormState{Values: values}
	var verr *store.ValidationError
	if errors.As(err, &verr) {
		f.Errors = verr.Fields
		return f
	}
	f.Message = panel.DescribeError(err)
	return f
}
