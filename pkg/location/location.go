package location

import "strings"

// Location describes a point in the application's navigation space.
// It is an immutable value: the resolution pipeline never modifies one, and
// sources hand out fresh values on every change.
type Location struct {
	// Pathname is the absolute path portion of the URL (always starts
	// with "/").
	Pathname string

	// Search is the query string, including the leading "?" when non-empty.
	Search string

	// Hash is the fragment, including the leading "#" when non-empty.
	Hash string

	// State is opaque navigation state attached by the caller.
	State any
}

// New creates a Location from a path that may carry a query string and
// fragment, e.g. "/users/42?tab=posts#bio".
func New(path string) *Location {
	loc := &Location{}

	if i := strings.Index(path, "#"); i >= 0 {
		loc.Hash = path[i:]
		path = path[:i]
	}
	if i := strings.Index(path, "?"); i >= 0 {
		loc.Search = path[i:]
		path = path[:i]
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	loc.Pathname = path

	return loc
}

// WithState returns a copy of the location carrying the given state.
func (l *Location) WithState(state any) *Location {
	c := *l
	c.State = state
	return &c
}

// String reassembles the location into a path string.
func (l *Location) String() string {
	return l.Pathname + l.Search + l.Hash
}

// SameURL reports whether two locations point at the same URL, ignoring
// navigation state.
func (l *Location) SameURL(other *Location) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.Pathname == other.Pathname &&
		l.Search == other.Search &&
		l.Hash == other.Hash
}
