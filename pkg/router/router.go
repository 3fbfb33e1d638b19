package router

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/url"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/waymark/internal/errors"
	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/resolve"
	"github.com/vango-dev/waymark/pkg/route"
	"github.com/vango-dev/waymark/pkg/transition"
)

// ErrSuperseded marks a transition discarded because a newer navigation
// started before it could commit. It is reported to observers, never to
// the error handler.
var ErrSuperseded = stderrors.New("transition superseded by a newer navigation")

// Router drives route resolution from a location source. Every location
// notification starts a sequence-numbered transition on its own goroutine;
// only the transition holding the latest sequence number may commit, so a
// slow resolution can never overwrite the result of a navigation that
// happened after it.
type Router struct {
	routes   []*route.Node
	source   location.Source
	resolver *resolve.Resolver
	pipeline *transition.Pipeline

	codec        location.QueryCodec
	observers    []Observer
	onError      func(error)
	maxRedirects int
	logger       *slog.Logger

	allowAbsoluteDynamic bool

	ctx      context.Context
	cancel   context.CancelFunc
	unlisten func()

	seq atomic.Uint64

	mu          sync.RWMutex
	committed   *route.State
	echo        *location.Location
	subscribers map[int]func(*route.State)
	nextSub     int
}

// New validates the route tree and creates a Router bound to a location
// source. The router is inert until Start.
func New(routes []*route.Node, source location.Source, opts ...Option) (*Router, error) {
	r := &Router{
		routes:       routes,
		source:       source,
		codec:        location.DefaultQueryCodec(),
		maxRedirects: DefaultMaxRedirects,
		logger:       slog.Default(),
		subscribers:  make(map[int]func(*route.State)),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := route.Normalize(routes); err != nil {
		return nil, err
	}
	r.resolver = resolve.New(
		resolve.WithLogger(r.logger),
		resolve.WithDynamicAbsolutePaths(r.allowAbsoluteDynamic),
	)
	r.pipeline = transition.New(transition.WithLogger(r.logger))
	return r, nil
}

// Start subscribes to the location source and begins the initial
// transition for its current location. It returns immediately; observe the
// first commit through Subscribe.
func (r *Router) Start(ctx context.Context) {
	r.ctx, r.cancel = context.WithCancel(ctx)
	r.unlisten = r.source.Listen(r.handleLocationChange)
	r.handleLocationChange(r.source.Current())
}

// Stop detaches from the location source and cancels in-flight
// transitions. The committed state remains readable.
func (r *Router) Stop() {
	if r.unlisten != nil {
		r.unlisten()
		r.unlisten = nil
	}
	if r.cancel != nil {
		r.cancel()
	}
}

// CurrentState returns the last committed state, nil before the first
// commit.
func (r *Router) CurrentState() *route.State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.committed
}

// Subscribe registers fn to be called exactly once per committed
// transition. The returned function removes the subscription.
func (r *Router) Subscribe(fn func(*route.State)) func() {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = fn
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.subscribers, id)
		r.mu.Unlock()
	}
}

// Query parses a location's search string with the router's codec.
func (r *Router) Query(loc *location.Location) url.Values {
	return loc.Query(r.codec)
}

// Push navigates to a new location, extending history.
func (r *Router) Push(loc *location.Location) { r.source.Push(loc) }

// Replace navigates without creating a history entry.
func (r *Router) Replace(loc *location.Location) { r.source.Replace(loc) }

// Go moves n entries through history, negative for back.
func (r *Router) Go(n int) { r.source.Go(n) }

// GoBack moves one entry back.
func (r *Router) GoBack() { r.source.Go(-1) }

// GoForward moves one entry forward.
func (r *Router) GoForward() { r.source.Go(1) }

// IsActive reports whether the branch pathname resolves to is contained in
// the committed branch. With indexOnly the committed leaf must be exactly
// the target's leaf, so an ancestor of the current route does not count.
func (r *Router) IsActive(pathname string, indexOnly bool) bool {
	cur := r.CurrentState()
	if cur == nil || len(cur.Routes) == 0 {
		return false
	}
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	m, ok, err := r.resolver.ResolveBranch(ctx, r.routes, location.New(pathname))
	if err != nil || !ok {
		return false
	}

	in := make(map[*route.Node]bool, len(cur.Routes))
	for _, n := range cur.Routes {
		in[n] = true
	}
	member := false
	for _, n := range m.Routes {
		if n.Path == "" {
			// Pathless and index nodes anchor no path of their own;
			// their parents decide activity.
			continue
		}
		if !in[n] {
			return false
		}
		member = true
	}
	if !member {
		return false
	}
	if indexOnly {
		return cur.Leaf() == m.Routes[len(m.Routes)-1]
	}
	return true
}

// handleLocationChange starts a transition for every location
// notification. Only the notification echoed by our own Replace after a
// redirect chain is dropped, so the redirect target resolves once, not
// twice; a navigation to the current URL with different state still
// resolves. The sequence number is taken here, before the goroutine is
// spawned, so transitions start in notification order.
func (r *Router) handleLocationChange(loc *location.Location) {
	if r.consumeEcho(loc) {
		return
	}
	ctx := r.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	seq := r.seq.Add(1)
	go r.transition(ctx, seq, loc)
}

// consumeEcho reports whether loc is the location commit just wrote back
// to the source. The comparison includes State, so a state-only push to
// the same URL is never mistaken for the echo.
func (r *Router) consumeEcho(loc *location.Location) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := r.echo
	if e == nil {
		return false
	}
	if e == loc || (e.SameURL(loc) && reflect.DeepEqual(e.State, loc.State)) {
		r.echo = nil
		return true
	}
	return false
}

func (r *Router) transition(ctx context.Context, seq uint64, loc *location.Location) {
	for _, obs := range r.observers {
		obs.TransitionStarted(seq, loc)
	}
	r.logger.Debug("transition started", "seq", seq, "location", loc.String())

	target := loc
	for hop := 0; ; hop++ {
		if r.stale(seq) {
			r.abort(seq, target, ErrSuperseded)
			return
		}

		m, ok, err := r.resolver.ResolveBranch(ctx, r.routes, target)
		if err != nil {
			r.fail(seq, target, err)
			return
		}
		if r.stale(seq) {
			r.abort(seq, target, ErrSuperseded)
			return
		}
		if !ok {
			// Nothing matched. Commit the location with an empty
			// branch; the renderer owns the not-found presentation.
			r.logger.Debug("no route matched", "seq", seq, "location", target.String())
			r.commit(seq, loc, &route.State{Location: target, Params: route.Params{}})
			return
		}

		prev := r.CurrentState()
		redirect, err := r.pipeline.Run(ctx, prev, m.ToState(target))
		if err != nil {
			r.fail(seq, target, err)
			return
		}
		if redirect != nil {
			for _, obs := range r.observers {
				obs.TransitionRedirected(seq, target, redirect)
			}
			if hop+1 >= r.maxRedirects {
				r.fail(seq, redirect, errors.New("W201").
					WithLocation(loc.Pathname).
					WithDetail("last redirect target: "+redirect.String()))
				return
			}
			target = redirect
			continue
		}

		if err := r.resolver.ResolveComponents(ctx, m, target); err != nil {
			r.fail(seq, target, err)
			return
		}
		r.commit(seq, loc, m.ToState(target))
		return
	}
}

func (r *Router) stale(seq uint64) bool {
	return r.seq.Load() != seq
}

// commit atomically replaces the committed state, provided the transition
// is still the latest. Subscribers run outside the lock.
func (r *Router) commit(seq uint64, origin *location.Location, next *route.State) {
	r.mu.Lock()
	if r.seq.Load() != seq {
		r.mu.Unlock()
		r.abort(seq, next.Location, ErrSuperseded)
		return
	}
	r.committed = next
	subs := make([]func(*route.State), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
	for _, obs := range r.observers {
		obs.TransitionCommitted(seq, next)
	}
	r.logger.Debug("transition committed", "seq", seq, "location", next.Location.String())

	// A redirect chain landed somewhere other than the navigation asked
	// for; reflect the final target in history. Remember the exact
	// location written so the echoed notification can be dropped.
	if !next.Location.SameURL(origin) {
		r.mu.Lock()
		r.echo = next.Location
		r.mu.Unlock()
		r.source.Replace(next.Location)
	}
}

func (r *Router) abort(seq uint64, loc *location.Location, err error) {
	for _, obs := range r.observers {
		obs.TransitionAborted(seq, loc, err)
	}
	r.logger.Debug("transition aborted", "seq", seq, "location", loc.String(), "reason", err)
}

// fail aborts on a genuine error, keeping the previous state intact.
func (r *Router) fail(seq uint64, loc *location.Location, err error) {
	r.logger.Error("transition failed", "seq", seq, "location", loc.String(), "error", err)
	if r.onError != nil {
		r.onError(err)
	}
	r.abort(seq, loc, err)
}
