package route

import (
	"context"

	"github.com/vango-dev/waymark/pkg/location"
)

// Component is an opaque view value attached to a route. The engine never
// looks inside one; rendering belongs to the collaborator that consumes the
// committed state.
type Component any

// Completion contracts for deferred capabilities. A loader is invoked with
// the location being resolved and a done function; calling done with a
// non-nil error reports failure, otherwise the value is the result. Each
// loader runs at most once per node per resolver lifetime.
type (
	ChildRoutesDone func(children []*Node, err error)
	IndexRouteDone  func(index *Node, err error)
	ComponentDone   func(component Component, err error)
	ComponentsDone  func(components map[string]Component, err error)
)

// Deferred capability loaders. Any combination may be set on a node; done
// may be called synchronously or later from another goroutine.
type (
	ChildRoutesFunc func(loc *location.Location, done ChildRoutesDone)
	IndexRouteFunc  func(loc *location.Location, done IndexRouteDone)
	ComponentFunc   func(loc *location.Location, done ComponentDone)
	ComponentsFunc  func(loc *location.Location, done ComponentsDone)
)

// RedirectFunc aborts the current transition and navigates to a new
// location instead. Handed to enter/change hooks.
type RedirectFunc func(to *location.Location)

// EnterHook runs when a route joins the active branch. Returning an error
// aborts the transition; calling redirect aborts it and starts a new one.
// A hook that needs async work simply blocks — each transition runs on its
// own goroutine and ctx is cancelled when the transition is superseded.
type EnterHook func(ctx context.Context, next *State, redirect RedirectFunc) error

// ChangeHook runs when a route stays in the branch but its location-derived
// inputs (params, query, state) changed.
type ChangeHook func(ctx context.Context, prev, next *State, redirect RedirectFunc) error

// LeaveHook runs when a route drops out of the active branch. Leave hooks
// cannot block or cancel a transition.
type LeaveHook func(prev *State)

// Node is a node in the route configuration tree. A node is immutable after
// construction; deferred capabilities are resolved at most once and the
// results cached by the resolver.
//
// A node with neither a Path nor index/child content is unreachable and
// never matches.
type Node struct {
	// Path is the pattern for this node, relative to the parent's matched
	// prefix. A leading "/" matches against the full pathname instead
	// (absolute override). Empty means the node matches only via its
	// children or index route.
	Path string

	// Component is the single view for this node. Mutually exclusive
	// with Components.
	Component Component

	// Components maps named outlets to views.
	Components map[string]Component

	// IndexRoute renders when this node matches with nothing left of the
	// pathname. An index route must not declare a Path.
	IndexRoute *Node

	// Children are the statically configured child routes, tried in order.
	Children []*Node

	// Deferred capabilities. When both a static field and its loader are
	// set, the static field wins and the loader never runs.
	GetChildRoutes ChildRoutesFunc
	GetIndexRoute  IndexRouteFunc
	GetComponent   ComponentFunc
	GetComponents  ComponentsFunc

	// Lifecycle hooks.
	OnEnter  EnterHook
	OnChange ChangeHook
	OnLeave  LeaveHook
}

// Match is the result of matching a pathname against a route tree: the
// branch from root to leaf and the merged parameters.
type Match struct {
	// Routes is the matched branch in root-to-leaf order.
	Routes []*Node

	// Params are the merged path captures for the whole branch. On a name
	// collision the deeper node wins.
	Params Params

	// Components is positionally aligned with Routes once resolved: a
	// single Component, a map[string]Component for named outlets, or nil
	// for pass-through layout nodes.
	Components []Component
}

// State is the committed router state: one location fully resolved into a
// render plan. It is replaced atomically at the end of a successful
// transition and never partially visible.
type State struct {
	Location   *location.Location
	Routes     []*Node
	Params     Params
	Components []Component
}

// ToState pairs a match with the location it resolved. Params are
// copied so a hook mutating the state cannot corrupt the cached match.
func (m *Match) ToState(loc *location.Location) *State {
	return &State{
		Location:   loc,
		Routes:     m.Routes,
		Params:     m.Params.clone(),
		Components: m.Components,
	}
}

// Leaf returns the deepest matched route, or nil for an empty branch.
func (s *State) Leaf() *Node {
	if s == nil || len(s.Routes) == 0 {
		return nil
	}
	return s.Routes[len(s.Routes)-1]
}

// Contains reports whether the branch includes the given node, by identity.
func (s *State) Contains(n *Node) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Routes {
		if r == n {
			return true
		}
	}
	return false
}
