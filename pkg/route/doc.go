// Package route defines the route configuration tree and the pure path
// matching that powers Waymark.
//
// A tree of Nodes describes the application's routes. Each node may carry a
// path pattern, view components, an index route, child routes, lifecycle
// hooks, and deferred loaders for any of those pieces. MatchBranch performs
// synchronous matching over the static parts of a tree; the resolve package
// layers deferred loading on top with identical precedence.
//
// # Patterns
//
// Path patterns are matched case-insensitively and support:
//
//	users          literal segment
//	users/:id      named parameter, one segment
//	files/*        splat, captures the remainder as "splat"
//	files/**/meta  greedy splat
//	users(/:id)    optional group
//
// A child pattern is joined onto its parent's matched prefix; a pattern
// starting with "/" matches against the full pathname from the root.
package route
