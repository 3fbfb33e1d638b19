package resolve

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/vango-dev/waymark/internal/errors"
	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
)

// Resolver expands deferred route capabilities and memoizes the results.
// Each capability of each node is resolved at most once for the lifetime of
// the resolver; concurrent requests for an unresolved capability attach to
// the in-flight invocation instead of starting a second one.
//
// The cache is shared across all transitions of a router and is append-only
// per node, so a completed value never changes.
type Resolver struct {
	mu    sync.Mutex
	nodes map[*route.Node]*nodeCache

	allowAbsoluteDynamic bool
	logger               *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithDynamicAbsolutePaths permits absolute paths on routes produced by
// deferred loaders. They are rejected by default because an absolute
// pattern appearing after initial mount silently shadows the static tree.
func WithDynamicAbsolutePaths(allow bool) Option {
	return func(r *Resolver) {
		r.allowAbsoluteDynamic = allow
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		nodes:  make(map[*route.Node]*nodeCache),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// nodeCache holds the deferred slots for one node.
type nodeCache struct {
	children   deferred
	index      deferred
	component  deferred
	components deferred
}

// deferred is a write-once async cell. The first resolve call starts the
// loader; everyone else waits on the same completion.
type deferred struct {
	mu        sync.Mutex
	started   bool
	completed bool
	done      chan struct{}
	val       any
	err       error
}

// resolve runs start exactly once and waits for its completion or ctx
// cancellation. A cancelled wait does not cancel the loader; the completion
// stays cached for later transitions.
func (d *deferred) resolve(ctx context.Context, start func(complete func(any, error))) (any, error) {
	d.mu.Lock()
	if !d.started {
		d.started = true
		d.done = make(chan struct{})
		d.mu.Unlock()

		start(func(v any, err error) {
			d.mu.Lock()
			if d.completed {
				// A loader must complete once; extra calls are
				// dropped.
				d.mu.Unlock()
				return
			}
			d.completed = true
			d.val, d.err = v, err
			close(d.done)
			d.mu.Unlock()
		})
	} else {
		d.mu.Unlock()
	}

	select {
	case <-d.done:
		return d.val, d.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Resolver) cacheFor(node *route.Node) *nodeCache {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.nodes[node]
	if !ok {
		c = &nodeCache{}
		r.nodes[node] = c
	}
	return c
}

// ChildRoutes returns a node's children, invoking the deferred loader when
// the static list is absent. Loaded children are normalized before they
// enter the cache.
func (r *Resolver) ChildRoutes(ctx context.Context, node *route.Node, loc *location.Location) ([]*route.Node, error) {
	if node.Children != nil {
		return node.Children, nil
	}
	if node.GetChildRoutes == nil {
		return nil, nil
	}

	d := &r.cacheFor(node).children
	v, err := d.resolve(ctx, func(complete func(any, error)) {
		node.GetChildRoutes(loc, func(children []*route.Node, err error) {
			if err != nil {
				complete(nil, errors.New("W101").WithRoute(node.Path).
					WithLocation(loc.Pathname).Wrap(err))
				return
			}
			if verr := r.validateLoaded(children); verr != nil {
				complete(nil, verr)
				return
			}
			complete(children, nil)
		})
	})
	if err != nil {
		return nil, err
	}
	children, _ := v.([]*route.Node)
	return children, nil
}

// IndexRoute returns a node's index route, invoking the deferred loader
// when needed. Only meaningful once the node matched with nothing left of
// the pathname.
func (r *Resolver) IndexRoute(ctx context.Context, node *route.Node, loc *location.Location) (*route.Node, error) {
	if node.IndexRoute != nil {
		return node.IndexRoute, nil
	}
	if node.GetIndexRoute == nil {
		return nil, nil
	}

	d := &r.cacheFor(node).index
	v, err := d.resolve(ctx, func(complete func(any, error)) {
		node.GetIndexRoute(loc, func(index *route.Node, err error) {
			if err != nil {
				complete(nil, errors.New("W102").WithRoute(node.Path).
					WithLocation(loc.Pathname).Wrap(err))
				return
			}
			if index != nil && index.Path != "" {
				complete(nil, errors.New("W002").WithRoute(node.Path))
				return
			}
			complete(index, nil)
		})
	})
	if err != nil {
		return nil, err
	}
	index, _ := v.(*route.Node)
	return index, nil
}

// Component resolves a node's deferred single component.
func (r *Resolver) Component(ctx context.Context, node *route.Node, loc *location.Location) (route.Component, error) {
	if node.Component != nil {
		return node.Component, nil
	}
	if node.GetComponent == nil {
		return nil, nil
	}

	d := &r.cacheFor(node).component
	v, err := d.resolve(ctx, func(complete func(any, error)) {
		node.GetComponent(loc, func(c route.Component, err error) {
			if err != nil {
				complete(nil, errors.New("W103").WithRoute(node.Path).
					WithLocation(loc.Pathname).Wrap(err))
				return
			}
			complete(c, nil)
		})
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Components resolves a node's deferred named component map.
func (r *Resolver) Components(ctx context.Context, node *route.Node, loc *location.Location) (map[string]route.Component, error) {
	if node.Components != nil {
		return node.Components, nil
	}
	if node.GetComponents == nil {
		return nil, nil
	}

	d := &r.cacheFor(node).components
	v, err := d.resolve(ctx, func(complete func(any, error)) {
		node.GetComponents(loc, func(cs map[string]route.Component, err error) {
			if err != nil {
				complete(nil, errors.New("W103").WithRoute(node.Path).
					WithLocation(loc.Pathname).Wrap(err))
				return
			}
			complete(cs, nil)
		})
	})
	if err != nil {
		return nil, err
	}
	cs, _ := v.(map[string]route.Component)
	return cs, nil
}

// validateLoaded normalizes a dynamically loaded subtree and enforces the
// absolute-path policy.
func (r *Resolver) validateLoaded(children []*route.Node) error {
	if err := route.Normalize(children); err != nil {
		return err
	}
	if r.allowAbsoluteDynamic {
		return nil
	}
	var bad string
	route.Walk(children, func(n *route.Node, _ string) bool {
		if strings.HasPrefix(n.Path, "/") {
			bad = n.Path
			return false
		}
		return true
	})
	if bad != "" {
		return errors.New("W104").WithRoute(bad)
	}
	return nil
}
