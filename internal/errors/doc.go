// Package errors provides structured, actionable error messages for Waymark.
//
// Each error carries a category, an optional registered code, the route
// pattern and location it relates to, a fix suggestion, and a documentation
// link.
//
// # Error Categories
//
//   - config: route manifest loading and parsing errors
//   - validation: route tree normalization errors (bad patterns, misplaced
//     index routes)
//   - resolution: deferred loader failures during branch resolution
//   - navigation: transition-level failures (redirect loops, hook errors)
//
// # Error Codes
//
// Each registered code (e.g., "W101") maps to a short message, a detailed
// explanation, and a documentation URL.
//
// # Usage
//
//	err := errors.New("W101").
//	    WithRoute("users/:id").
//	    WithLocation("/users/42").
//	    Wrap(loadErr)
//
//	fmt.Println(err.Format())
package errors
