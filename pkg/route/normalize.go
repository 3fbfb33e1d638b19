package route

import (
	"strings"

	"github.com/vango-dev/waymark/internal/errors"
)

// Normalize validates a route tree before it is handed to a router: every
// pattern must compile, index routes must not declare paths, and a node may
// carry a single component or a named map but not both. Deferred subtrees
// are validated later, when their loaders complete.
func Normalize(routes []*Node) error {
	return normalizeLevel(routes, "")
}

func normalizeLevel(routes []*Node, parent string) error {
	for _, node := range routes {
		full := JoinPatterns(parent, node.Path)

		if node.Path != "" {
			if _, err := compilePattern(node.Path); err != nil {
				return err
			}
		}
		if node.Component != nil && node.Components != nil {
			return errors.Newf(errors.CategoryValidation,
				"route %q declares both a component and named components", full)
		}
		if node.IndexRoute != nil {
			if node.IndexRoute.Path != "" {
				return errors.New("W002").WithRoute(full)
			}
			if err := normalizeLevel([]*Node{node.IndexRoute}, full); err != nil {
				return err
			}
		}
		if err := normalizeLevel(node.Children, full); err != nil {
			return err
		}
	}
	return nil
}

// JoinPatterns joins a child pattern onto its parent's. An absolute child
// pattern stands alone.
func JoinPatterns(parent, child string) string {
	if strings.HasPrefix(child, "/") {
		return child
	}
	if child == "" {
		return parent
	}
	if parent == "" || parent == "/" {
		return "/" + child
	}
	return strings.TrimSuffix(parent, "/") + "/" + child
}

// Walk visits every statically reachable node in configuration order,
// passing the node and its joined pattern. Returning false stops the walk.
func Walk(routes []*Node, fn func(node *Node, pattern string) bool) {
	walkLevel(routes, "", fn)
}

func walkLevel(routes []*Node, parent string, fn func(*Node, string) bool) bool {
	for _, node := range routes {
		full := JoinPatterns(parent, node.Path)
		if !fn(node, full) {
			return false
		}
		if node.IndexRoute != nil {
			if !fn(node.IndexRoute, full) {
				return false
			}
		}
		if !walkLevel(node.Children, full, fn) {
			return false
		}
	}
	return true
}

// Patterns flattens the static tree into the joined pattern of every node,
// in configuration order. Useful for diagnostics and route listings.
func Patterns(routes []*Node) []string {
	var out []string
	Walk(routes, func(_ *Node, pattern string) bool {
		if pattern == "" {
			pattern = "/"
		}
		out = append(out, pattern)
		return true
	})
	return out
}
