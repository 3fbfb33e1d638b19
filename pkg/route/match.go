package route

import "strings"

// MatchBranch matches a pathname against a static route tree: depth-first,
// configuration order, first match wins. Routes whose children or index
// route exist only behind a deferred loader are treated as if those pieces
// were absent; MatchBranch is pure and never suspends. Use
// resolve.ResolveBranch when deferred capabilities must participate.
//
// The second return is false when no branch consumes the entire pathname;
// that is the ordinary 404 outcome, not an error.
func MatchBranch(routes []*Node, pathname string) (*Match, bool) {
	if !strings.HasPrefix(pathname, "/") {
		pathname = "/" + pathname
	}
	m := &syncMatcher{pathname: pathname}
	return m.matchRoutes(routes, pathname, true, nil, nil)
}

// syncMatcher carries the full pathname so absolute child paths can restart
// matching from the root.
type syncMatcher struct {
	pathname string
}

func (m *syncMatcher) matchRoutes(routes []*Node, remaining string, hasRemaining bool, names, values []string) (*Match, bool) {
	for _, node := range routes {
		if match, ok := m.matchNodeDeep(node, remaining, hasRemaining, names, values); ok {
			return match, true
		}
	}
	return nil, false
}

// matchNodeDeep tries one node and, on a prefix match, its subtree. When the
// node's own pattern fails, descent still happens for subtrees that may hold
// absolute-path children.
func (m *syncMatcher) matchNodeDeep(node *Node, remaining string, hasRemaining bool, names, values []string) (*Match, bool) {
	pattern := node.Path
	if strings.HasPrefix(pattern, "/") {
		// Absolute override: match from the root of the pathname.
		remaining = m.pathname
		hasRemaining = true
		names, values = nil, nil
	}

	if hasRemaining && pattern != "" {
		pm, ok, err := MatchPattern(pattern, remaining)
		if err != nil {
			return nil, false
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
		// Exact match; pull in the index route, searching pathless
		// children recursively.
		match := &Match{
			Routes: append([]*Node{node}, staticIndexChain(node)...),
			Params: NewParams(names, values),
		}
		return match, true
	}

	if hasRemaining || len(node.Children) > 0 {
		if sub, ok := m.matchRoutes(node.Children, remaining, hasRemaining, names, values); ok {
			sub.Routes = append([]*Node{node}, sub.Routes...)
			return sub, true
		}
	}

	return nil, false
}

// staticIndexChain returns the index route for a node, descending through
// pathless children. Deferred index loaders are invisible here.
func staticIndexChain(n *Node) []*Node {
	if n.IndexRoute != nil {
		return []*Node{n.IndexRoute}
	}
	if n.GetIndexRoute != nil {
		return nil
	}
	for _, child := range n.Children {
		if child.Path != "" {
			continue
		}
		if inner := staticIndexChain(child); inner != nil {
			return append([]*Node{child}, inner...)
		}
	}
	return nil
}

// appendCopy concatenates without aliasing the base slice, so sibling
// attempts cannot see a failed branch's captures.
func appendCopy(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	out = append(out, base...)
	return append(out, extra...)
}
