package panel

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimaakbar/bimasite/store"
)

type item struct {
	Name string
}

// fakeSource is an in-memory list backend keyed by filter.
type fakeSource struct {
	mu    sync.Mutex
	items map[string][]item
	err   error
	calls []string
}

func (f *fakeSource) list(ctx context.Context, filter string) ([]item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, filter)
	if f.err != nil {
		return nil, f.err
	}
	return append([]item(nil), f.items[filter]...), nil
}

func TestNewPanelStartsLoading(t *testing.T) {
	src := &fakeSource{}
	p := New(src.list, "all")

	snap := p.Snapshot()
	assert.Equal(t, Loading, snap.State)
	assert.Equal(t, "all", snap.Filter)
	assert.Empty(t, snap.Items)
	assert.Empty(t, src.calls, "New must not issue a request")
}

func TestLoadReady(t *testing.T) {
	src := &fakeSource{items: map[string][]item{"all": {{"a"}, {"b"}}}}
	p := New(src.list, "all")

	require.NoError(t, p.Load(context.Background()))
	snap := p.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, []item{{"a"}, {"b"}}, snap.Items)
	assert.Empty(t, snap.Err)
}

func TestLoadError(t *testing.T) {
	boom := &store.StoreError{Op: "list", Entity: "post", Err: errors.New("connection refused")}
	src := &fakeSource{err: boom}
	p := New(src.list, "all")

	err := p.Load(context.Background())
	require.ErrorIs(t, err, store.ErrStore)
	snap := p.Snapshot()
	assert.Equal(t, Error, snap.State)
	assert.Equal(t, "Could not reach the data store. Please try again.", snap.Err)
	assert.NotContains(t, snap.Err, "connection refused")
}

func TestSetFilterReloads(t *testing.T) {
	src := &fakeSource{items: map[string][]item{
		"all":       {{"a"}, {"b"}},
		"published": {{"a"}},
	}}
	p := New(src.list, "all")
	ctx := context.Background()
	require.NoError(t, p.Load(ctx))

	require.NoError(t, p.SetFilter(ctx, "published"))
	snap := p.Snapshot()
	assert.Equal(t, "published", snap.Filter)
	assert.Equal(t, []item{{"a"}}, snap.Items)
	assert.Equal(t, []string{"all", "published"}, src.calls)
}

// gatedSource holds each request until the test releases it.
type gatedSource struct {
	started chan string
	release map[string]chan []item
}

func newGatedSource(filters ...string) *gatedSource {
	g := &gatedSource{started: make(chan string, len(filters)), release: make(map[string]chan []item)}
	for _, f := range filters {
		g.release[f] = make(chan []item)
	}
	return g
}

func (g *gatedSource) list(ctx context.Context, filter string) ([]item, error) {
	g.started <- filter
	return <-g.release[filter], nil
}

func TestStaleResponseForOldFilterIsDiscarded(t *testing.T) {
	g := newGatedSource("all", "draft")
	p := New(g.list, "all")
	ctx := context.Background()

	oldDone := make(chan error, 1)
	go func() { oldDone <- p.Load(ctx) }()
	require.Equal(t, "all", <-g.started)

	newDone := make(chan error, 1)
	go func() { newDone <- p.SetFilter(ctx, "draft") }()
	require.Equal(t, "draft", <-g.started)

	g.release["draft"] <- []item{{"draft-1"}}
	require.NoError(t, <-newDone)

	g.release["all"] <- []item{{"old-1"}, {"old-2"}}
	assert.ErrorIs(t, <-oldDone, ErrStale)

	snap := p.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, "draft", snap.Filter)
	assert.Equal(t, []item{{"draft-1"}}, snap.Items)
}

func TestOlderResponseForSameFilterIsDiscarded(t *testing.T) {
	started := make(chan int, 2)
	release := []chan []item{make(chan []item), make(chan []item)}
	var mu sync.Mutex
	n := 0
	list := func(ctx context.Context, filter string) ([]item, error) {
		mu.Lock()
		i := n
		n++
		mu.Unlock()
		started <- i
		return <-release[i], nil
	}
	p := New(list, "all")
	ctx := context.Background()

	first := make(chan error, 1)
	go func() { first <- p.Load(ctx) }()
	require.Equal(t, 0, <-started)
	second := make(chan error, 1)
	go func() { second <- p.Invalidate(ctx) }()
	require.Equal(t, 1, <-started)

	release[1] <- []item{{"fresh"}}
	require.NoError(t, <-second)
	release[0] <- []item{{"stale"}}
	assert.ErrorIs(t, <-first, ErrStale)

	assert.Equal(t, []item{{"fresh"}}, p.Snapshot().Items)
}

func TestMutateSuccessReloadsAfterMutation(t *testing.T) {
	src := &fakeSource{items: map[string][]item{"all": {{"a"}}}}
	p := New(src.list, "all")
	ctx := context.Background()
	require.NoError(t, p.Load(ctx))

	var order []string
	err := p.Mutate(ctx, func(ctx context.Context) error {
		order = append(order, "mutate")
		src.mu.Lock()
		src.items["all"] = append(src.items["all"], item{"b"})
		src.mu.Unlock()
		return nil
	})
	require.NoError(t, err)

	snap := p.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, []item{{"a"}, {"b"}}, snap.Items)
	assert.Empty(t, snap.Flash)
	assert.Equal(t, []string{"mutate"}, order)
	assert.Len(t, src.calls, 2)
}

func TestMutateFailureKeepsDataAndSetsFlash(t *testing.T) {
	src := &fakeSource{items: map[string][]item{"all": {{"a"}}}}
	p := New(src.list, "all")
	ctx := context.Background()
	require.NoError(t, p.Load(ctx))

	conflict := &store.ConflictError{Entity: "category", Field: "name"}
	err := p.Mutate(ctx, func(ctx context.Context) error { return conflict })
	require.ErrorIs(t, err, store.ErrConflict)

	snap := p.Snapshot()
	assert.Equal(t, Ready, snap.State)
	assert.Equal(t, []item{{"a"}}, snap.Items)
	assert.Equal(t, "category with this name already exists.", snap.Flash)
	assert.Len(t, src.calls, 1, "failed mutation must not reload")

	p.DismissFlash()
	assert.Empty(t, p.Snapshot().Flash)
}

func TestCustomDescribe(t *testing.T) {
	src := &fakeSource{err: errors.New("boom")}
	p := New(src.list, "all")
	p.Describe = func(error) string { return "Failed to load posts." }

	assert.Error(t, p.Load(context.Background()))
	assert.Equal(t, "Failed to load posts.", p.Snapshot().Err)
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"validation", &store.ValidationError{Fields: map[string]string{"title": "is required"}}, "Please check the form: title is required"},
		{"conflict", &store.ConflictError{Entity: "subscriber", Field: "email"}, "subscriber with this email already exists."},
		{"not found", store.ErrNotFound, "That item no longer exists."},
		{"cancelled", context.Canceled, "The request was cancelled. Please try again."},
		{"store", errors.New("dial tcp: refused"), "Could not reach the data store. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DescribeError(tt.err))
		})
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "error", Error.String())
}
