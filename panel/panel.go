// Package panel holds the list state behind each Content Studio tab.
//
// A Panel owns one filter and the most recent list result for it. Every
// list request is tagged with a generation number and the filter it was
// issued for; a response is applied only if the filter is still current
// and no newer response has already been applied. Mutations run to
// completion before the panel reloads.
package panel

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bimaakbar/bimasite/store"
)

// State is the lifecycle state of a panel's list.
type State int

const (
	Loading State = iota
	Ready
	Error
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrStale is returned by Load when its response was discarded because the
// filter changed or a newer response was already applied.
var ErrStale = errors.New("panel: stale response discarded")

// ListFunc fetches the items matching filter.
type ListFunc[T any, F comparable] func(ctx context.Context, filter F) ([]T, error)

// Snapshot is a copy of a panel's visible state.
type Snapshot[T any, F comparable] struct {
	State  State
	Items  []T
	Err    string // set when State is Error
	Flash  string // transient message from the last failed mutation
	Filter F
}

// Panel is safe for concurrent use.
type Panel[T any, F comparable] struct {
	list ListFunc[T, F]

	// Describe turns an error into the text shown to the user. It defaults
	// to DescribeError and may be replaced before the first Load.
	Describe func(error) string

	mu      sync.Mutex
	filter  F
	state   State
	items   []T
	errMsg  string
	flash   string
	issued  uint64
	applied uint64
}

// New returns a panel in the Loading state with the given initial filter.
// Call Load to fetch the first page of items.
func New[T any, F comparable](list ListFunc[T, F], filter F) *Panel[T, F] {
	return &Panel[T, F]{
		list:     list,
		Describe: DescribeError,
		filter:   filter,
		state:    Loading,
	}
}

// Snapshot returns the current state.
func (p *Panel[T, F]) Snapshot() Snapshot[T, F] {
	p.mu.Lock()
	defer p.mu.Unlock()
	items := make([]T, len(p.items))
	copy(items, p.items)
	return Snapshot[T, F]{
		State:  p.state,
		Items:  items,
		Err:    p.errMsg,
		Flash:  p.flash,
		Filter: p.filter,
	}
}

// Filter returns the current filter.
func (p *Panel[T, F]) Filter() F {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.filter
}

// Load lists items for the current filter and applies the result. It
// returns ErrStale if the result was discarded, or the list error after
// moving the panel to the Error state.
func (p *Panel[T, F]) Load(ctx context.Context) error {
	p.mu.Lock()
	p.issued++
	gen, filter := p.issued, p.filter
	p.state = Loading
	p.errMsg = ""
	p.mu.Unlock()

	items, err := p.list(ctx, filter)
	return p.apply(gen, filter, items, err)
}

func (p *Panel[T, F]) apply(gen uint64, filter F, items []T, err error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if filter != p.filter || gen < p.applied {
		return ErrStale
	}
	p.applied = gen
	if err != nil {
		p.state = Error
		p.items = nil
		p.errMsg = p.Describe(err)
		return err
	}
	p.state = Ready
	p.items = items
	return nil
}

// SetFilter replaces the filter and reloads. Responses still in flight for
// the previous filter are discarded when they arrive.
func (p *Panel[T, F]) SetFilter(ctx context.Context, filter F) error {
	p.mu.Lock()
	p.filter = filter
	p.mu.Unlock()
	return p.Load(ctx)
}

// Invalidate reloads the current filter.
func (p *Panel[T, F]) Invalidate(ctx context.Context) error {
	return p.Load(ctx)
}

// Mutate runs op. On success the panel is reloaded after op has returned.
// On failure the visible items are kept, the flash message is set from the
// error and the error is returned.
func (p *Panel[T, F]) Mutate(ctx context.Context, op func(context.Context) error) error {
	if err := op(ctx); err != nil {
		p.mu.Lock()
		p.flash = p.Describe(err)
		p.mu.Unlock()
		return err
	}
	p.mu.Lock()
	p.flash = ""
	p.mu.Unlock()
	return p.Invalidate(ctx)
}

// SetFlash sets the transient message directly.
func (p *Panel[T, F]) SetFlash(msg string) {
	p.mu.Lock()
	p.flash = msg
	p.mu.Unlock()
}

// DismissFlash clears the transient message.
func (p *Panel[T, F]) DismissFlash() {
	p.SetFlash("")
}

// DescribeError maps the store error taxonomy onto user-facing text.
func DescribeError(err error) string {
	var verr *store.ValidationError
	var cerr *store.ConflictError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &verr):
		return "Please check the form: " + strings.TrimPrefix(verr.Error(), "invalid input: ")
	case errors.As(err, &cerr):
		return cerr.Error() + "."
	case errors.Is(err, store.ErrNotFound):
		return "That item no longer exists."
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "The request was cancelled. Please try again."
	default:
		return "Could not reach the data store. Please try again."
	}
}
