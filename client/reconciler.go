package client

import (
	"context"
	"fmt"
	"sync"
)

// LikeToggler is the slice of the API the reconciler depends on.
// *Client satisfies it; tests substitute their own.
type LikeToggler interface {
	ToggleLike(ctx context.Context, postID int) (bool, error)
}

var _ LikeToggler = &Client{}

// ToggleState is the lifecycle of the most recent toggle on a post.
type ToggleState int

const (
	StateIdle ToggleState = iota
	StatePending
	StateSettled
	StateRolledBack
)

// PostView is the locally displayed like state of a single post.
type PostView struct {
	IsLiked   bool
	LikeCount int
}

// pendingToggle remembers what to restore if the in-flight request fails,
// and how many further toggle intents arrived while it was in flight.
type pendingToggle struct {
	prevLiked bool
	prevCount int
	queued    int
}

// Reconciler applies like toggles optimistically and reconciles the local
// view against the eventual server response. Each post moves through
// Idle -> Pending -> Settled or RolledBack. While a toggle is Pending,
// further intents on the same post are queued, not fired: the underlying
// request is a single toggle, and racing a second one would let the local
// view diverge from what the server actually applies. Queued intents are
// replayed after settlement; an even number cancels out to nothing.
type Reconciler struct {
	mu      sync.Mutex
	toggler LikeToggler
	views   map[int]*PostView
	pending map[int]*pendingToggle
	states  map[int]ToggleState
}

// NewReconciler returns a Reconciler firing its requests at the given toggler.
func NewReconciler(toggler LikeToggler) *Reconciler {
	return &Reconciler{
		toggler: toggler,
		views:   make(map[int]*PostView),
		pending: make(map[int]*pendingToggle),
		states:  make(map[int]ToggleState),
	}
}

// Track registers the server-reported like state of a post, typically right
// after a feed fetch. It resets any previous local state for that post.
func (r *Reconciler) Track(postID int, isLiked bool, likeCount int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[postID] = &PostView{IsLiked: isLiked, LikeCount: likeCount}
	delete(r.pending, postID)
	r.states[postID] = StateIdle
}

// View returns the currently displayed like state of a post.
func (r *Reconciler) View(postID int) (PostView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	view, ok := r.views[postID]
	if !ok {
		return PostView{}, false
	}
	return *view, true
}

// State returns the toggle lifecycle state of a post.
func (r *Reconciler) State(postID int) ToggleState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[postID]
}

// Toggle flips the displayed like state immediately, then fires the network
// request and reconciles. On success the optimistic value is authoritative.
// On failure the pre-toggle values are restored exactly. If ctx is canceled
// while the request is in flight, the reconciliation is abandoned: no
// rollback, no settlement; the server state stays authoritative and the next
// Track refreshes the view.
func (r *Reconciler) Toggle(ctx context.Context, postID int) error {
	r.mu.Lock()
	view, ok := r.views[postID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("reconciler: post %d is not tracked", postID)
	}

	if p, inFlight := r.pending[postID]; inFlight {
		p.queued++
		r.mu.Unlock()
		return nil
	}

	for {
		p := &pendingToggle{prevLiked: view.IsLiked, prevCount: view.LikeCount}
		r.pending[postID] = p
		r.states[postID] = StatePending
		view.IsLiked = !view.IsLiked
		if view.IsLiked {
			view.LikeCount++
		} else {
			view.LikeCount--
		}
		r.mu.Unlock()

		_, err := r.toggler.ToggleLike(ctx, postID)

		r.mu.Lock()
		if r.pending[postID] != p {
			// A Track reset threw this reconciliation away while the
			// request was in flight. Nothing left to settle or roll back.
			r.mu.Unlock()
			return nil
		}
		if ctx.Err() != nil {
			delete(r.pending, postID)
			r.states[postID] = StateIdle
			r.mu.Unlock()
			return ctx.Err()
		}
		if err != nil {
			view.IsLiked = p.prevLiked
			view.LikeCount = p.prevCount
			delete(r.pending, postID)
			r.states[postID] = StateRolledBack
			r.mu.Unlock()
			return err
		}

		r.states[postID] = StateSettled
		queued := p.queued
		delete(r.pending, postID)
		if queued%2 == 0 {
			r.mu.Unlock()
			return nil
		}
		// An odd number of queued intents nets out to one more toggle.
	}
}
