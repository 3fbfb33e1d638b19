// Package console exposes an interactive route-navigation console over
// WebSocket. It exists for inspecting a route manifest: connect, push
// paths, step through history, and watch which branch each location
// resolves to.
package console
