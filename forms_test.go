package site

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bimaakbar/bimasite/store"
)

func TestParsePostForm(t *testing.T) {
	tests := []struct {
		name     string
		form     url.Values
		creating bool
		want     store.PostInput
	}{
		{
			name:     "derives slug on create",
			form:     url.Values{"title": {"  Hello, World! "}, "published": {"on"}},
			creating: true,
			want:     store.PostInput{Title: "Hello, World!", Slug: "hello-world", Published: true},
		},
		{
			name: "keeps blank slug on update",
			form: url.Values{"title": {"Hello"}},
			want: store.PostInput{Title: "Hello"},
		},
		{
			name:     "explicit slug wins",
			form:     url.Values{"title": {"Hello"}, "slug": {"custom"}, "is_featured": {"true"}, "category": {" Tech "}},
			creating: true,
			want:     store.PostInput{Title: "Hello", Slug: "custom", IsFeatured: true, Category: "Tech"},
		},
		{
			name: "content is not trimmed",
			form: url.Values{"title": {"T"}, "content": {"  <p>x</p>\n"}},
			want: store.PostInput{Title: "T", Content: "  <p>x</p>\n"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePostForm(tt.form, tt.creating))
		})
	}
}

func TestFormBool(t *testing.T) {
	for v, want := range map[string]bool{"on": true, "TRUE": true, "1": true, "": false, "off": false, "no": false} {
		assert.Equal(t, want, formBool(url.Values{"x": {v}}, "x"), v)
	}
}

func TestParseEntityForms(t *testing.T) {
	form := url.Values{
		"name":              {" Music "},
		"song_title":        {"Song"},
		"release_date":      {"2024-05-01"},
		"spotify_url":       {"https://open.spotify.com/x"},
		"product_name":      {"Mic"},
		"product_url":       {"https://shop.example.com/mic"},
		"email":             {" a@example.com "},
		"unrelated_field":   {"ignored"},
		"product_image_url": {""},
	}
	assert.Equal(t, store.CategoryInput{Name: "Music"}, ParseCategoryForm(form))
	assert.Equal(t, store.MusicInput{SongTitle: "Song", ReleaseDate: "2024-05-01", SpotifyURL: "https://open.spotify.com/x"}, ParseMusicForm(form))
	assert.Equal(t, store.AffiliateInput{ProductName: "Mic", ProductURL: "https://shop.example.com/mic"}, ParseAffiliateForm(form))
	assert.Equal(t, store.SubscriberInput{Email: "a@example.com"}, ParseSubscriberForm(form))
}

func TestFormState(t *testing.T) {
	values := map[string]string{"name": "x"}

	f := formState(values, &store.ValidationError{Fields: map[string]string{"name": "is required"}})
	assert.Equal(t, "is required", f.Error("name"))
	assert.Empty(t, f.Message)
	assert.Equal(t, "x", f.Value("name"))

	f = formState(values, &store.ConflictError{Entity: "category", Field: "name"})
	assert.Equal(t, "category with this name already exists.", f.Message)
	assert.Empty(t, f.Errors)

	f = formState(values, errors.New("boom"))
	assert.Equal(t, "Could not reach the data store. Please try again.", f.Message)
}

func TestPostValuesRoundTrip(t *testing.T) {
	in := store.PostInput{Title: "T", Slug: "t", IsFeatured: true}
	v := postValues(in)
	assert.Equal(t, "on", v["is_featured"])
	assert.Equal(t, "", v["published"])

	form := url.Values{}
	for k, val := range v {
		form.Set(k, val)
	}
	assert.Equal(t, in, ParsePostForm(form, false))
}
