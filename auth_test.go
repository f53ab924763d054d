package site

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimaakbar/bimasite/store"
)

type fakeAdmins struct {
	count   int
	err     error
	created []store.UserInput
}

func (f *fakeAdmins) Count(context.Context) (int, error) {
	return f.count, f.err
}

func (f *fakeAdmins) Create(_ context.Context, in store.UserInput) (store.User, error) {
	f.created = append(f.created, in)
	return store.User{ID: "u1", Email: in.Email}, nil
}

func TestBootstrapAdmin(t *testing.T) {
	ctx := context.Background()

	f := &fakeAdmins{}
	created, err := BootstrapAdmin(ctx, f, "admin@example.com", "long-password")
	require.NoError(t, err)
	assert.True(t, created)
	require.Len(t, f.created, 1)
	assert.Equal(t, "admin@example.com", f.created[0].Email)

	f = &fakeAdmins{count: 1}
	created, err = BootstrapAdmin(ctx, f, "admin@example.com", "long-password")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Empty(t, f.created)

	f = &fakeAdmins{}
	created, err = BootstrapAdmin(ctx, f, "", "")
	require.NoError(t, err)
	assert.False(t, created)

	f = &fakeAdmins{err: errors.New("down")}
	_, err = BootstrapAdmin(ctx, f, "admin@example.com", "long-password")
	assert.Error(t, err)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 200},
		{&store.ValidationError{Fields: map[string]string{"name": "is required"}}, 422},
		{&store.ConflictError{Entity: "post", Field: "slug"}, 409},
		{store.ErrNotFound, 404},
		{&store.StoreError{Op: "list", Entity: "post", Err: errors.New("down")}, 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err))
	}
}
