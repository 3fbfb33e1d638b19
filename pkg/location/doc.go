// Package location defines the Location value, the Source contract that
// history backends implement, the query string codec seam, and an in-memory
// Source for tests and non-browser environments.
//
// The resolution pipeline treats locations as opaque immutable values; only
// sources create them. Sources are constructed explicitly and passed by
// reference into the router — their lifecycle belongs to the caller.
package location
