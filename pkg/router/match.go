package router

import (
	"context"

	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/resolve"
	"github.com/vango-dev/waymark/pkg/route"
	"github.com/vango-dev/waymark/pkg/transition"
)

// Match resolves a location against a route tree without a running Router:
// no history, no subscribers, nothing committed. Enter hooks still run and
// may redirect; a requested redirect is returned, not followed, so batch
// callers decide what to do with it.
//
// Exactly one of the three results is meaningful: a state when a branch
// matched and its hooks passed, a location when a hook redirected, an
// error when resolution or a hook failed. All three nil means no match.
func Match(ctx context.Context, routes []*route.Node, loc *location.Location, opts ...Option) (*route.State, *location.Location, error) {
	r := &Router{maxRedirects: DefaultMaxRedirects}
	for _, opt := range opts {
		opt(r)
	}

	if err := route.Normalize(routes); err != nil {
		return nil, nil, err
	}
	resolver := resolve.New(resolve.WithDynamicAbsolutePaths(r.allowAbsoluteDynamic))

	m, ok, err := resolver.ResolveBranch(ctx, routes, loc)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, nil
	}

	redirect, err := transition.New().Run(ctx, nil, m.ToState(loc))
	if err != nil {
		return nil, nil, err
	}
	if redirect != nil {
		return nil, redirect, nil
	}

	if err := resolver.ResolveComponents(ctx, m, loc); err != nil {
		return nil, nil, err
	}
	return m.ToState(loc), nil, nil
}
