package resolve

import (
	"context"
	"strings"

	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
)

// ResolveBranch matches a location against the route tree, expanding
// deferred children and index routes as matching descends. Precedence is
// identical to route.MatchBranch: configuration order, first match wins, and a
// branch that fails deeper falls back to later siblings. Async loading
// never changes precedence — the result is the same as if the tree had been
// fully static from the start.
//
// The boolean is false when no branch consumes the whole pathname (the
// ordinary 404 outcome). An error means a loader failed or ctx was
// cancelled; the caller decides whether anything is committed.
func (r *Resolver) ResolveBranch(ctx context.Context, routes []*route.Node, loc *location.Location) (*route.Match, bool, error) {
	pathname := loc.Pathname
	if !strings.HasPrefix(pathname, "/") {
		pathname = "/" + pathname
	}
	b := &branchResolver{r: r, ctx: ctx, loc: loc, pathname: pathname}
	return b.matchRoutes(routes, pathname, true, nil, nil)
}

// ResolveComponents fills the match's component list, one slot per matched
// route: the named map for Components nodes, the single view for Component
// nodes, nil for pass-through layouts. Deferred component loaders run here,
// after hooks had their chance to redirect.
func (r *Resolver) ResolveComponents(ctx context.Context, m *route.Match, loc *location.Location) error {
	m.Components = make([]route.Component, len(m.Routes))
	for i, node := range m.Routes {
		if node.Components != nil || node.GetComponents != nil {
			cs, err := r.Components(ctx, node, loc)
			if err != nil {
				return err
			}
			if cs != nil {
				m.Components[i] = cs
			}
			continue
		}
		c, err := r.Component(ctx, node, loc)
		if err != nil {
			return err
		}
		m.Components[i] = c
	}
	return nil
}

// branchResolver carries one resolution attempt's fixed inputs.
type branchResolver struct {
	r        *Resolver
	ctx      context.Context
	loc      *location.Location
	pathname string
}

func (b *branchResolver) matchRoutes(routes []*route.Node, remaining string, hasRemaining bool, names, values []string) (*route.Match, bool, error) {
	for _, node := range routes {
		m, ok, err := b.matchNodeDeep(node, remaining, hasRemaining, names, values)
		if err != nil || ok {
			return m, ok, err
		}
	}
	return nil, false, nil
}

func (b *branchResolver) matchNodeDeep(node *route.Node, remaining string, hasRemaining bool, names, values []string) (*route.Match, bool, error) {
	pattern := node.Path
	if strings.HasPrefix(pattern, "/") {
		remaining = b.pathname
		hasRemaining = true
		names, values = nil, nil
	}

	if hasRemaining && pattern != "" {
		pm, ok, err := route.MatchPattern(pattern, remaining)
		if err != nil {
			return nil, false, err
		}
		if ok {
			remaining = pm.RemainingPathname
			names = appendCopy(names, pm.ParamNames)
			values = appendCopy(values, pm.ParamValues)
		} else {
			hasRemaining = false
		}
	}

	if hasRemaining && remaining == "" {
		chain, err := b.indexChain(node)
		if err != nil {
			return nil, false, err
		}
		match := &route.Match{
			Routes: append([]*route.Node{node}, chain...),
			Params: route.NewParams(names, values),
		}
		return match, true, nil
	}

	if hasRemaining {
		// The node matched a prefix (or is pathless): its children may
		// consume the rest, loading them if necessary.
		children, err := b.r.ChildRoutes(b.ctx, node, b.loc)
		if err != nil {
			return nil, false, err
		}
		return b.descend(node, children, remaining, hasRemaining, names, values)
	}

	if len(node.Children) > 0 {
		// The node itself failed, but a statically known child with an
		// absolute path may still match. Deferred loaders are not
		// triggered for non-matching subtrees.
		return b.descend(node, node.Children, remaining, false, names, values)
	}

	return nil, false, nil
}

func (b *branchResolver) descend(node *route.Node, children []*route.Node, remaining string, hasRemaining bool, names, values []string) (*route.Match, bool, error) {
	sub, ok, err := b.matchRoutes(children, remaining, hasRemaining, names, values)
	if err != nil || !ok {
		return nil, false, err
	}
	sub.Routes = append([]*route.Node{node}, sub.Routes...)
	return sub, true, nil
}

// indexChain finds the index route for an exactly matched node, descending
// through pathless children the way the matcher itself would.
func (b *branchResolver) indexChain(node *route.Node) ([]*route.Node, error) {
	if node.IndexRoute != nil {
		return []*route.Node{node.IndexRoute}, nil
	}
	if node.GetIndexRoute != nil {
		index, err := b.r.IndexRoute(b.ctx, node, b.loc)
		if err != nil || index == nil {
			return nil, err
		}
		return []*route.Node{index}, nil
	}

	children, err := b.r.ChildRoutes(b.ctx, node, b.loc)
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if child.Path != "" {
			continue
		}
		inner, err := b.indexChain(child)
		if err != nil {
			return nil, err
		}
		if inner != nil {
			return append([]*route.Node{child}, inner...), nil
		}
	}
	return nil, nil
}

func appendCopy(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
