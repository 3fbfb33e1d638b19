// Package router orchestrates navigation: it listens to a location
// source, resolves each location change into a branch of the route tree,
// runs lifecycle hooks, follows redirects up to a bounded depth and
// commits the resulting state for subscribers.
//
// Concurrency model: transitions run on their own goroutines and carry a
// sequence number. Whenever a newer navigation starts, every older
// in-flight transition becomes stale and is discarded at its next
// checkpoint, so commits always reflect the latest navigation even when
// deferred route loading makes an older transition finish late.
package router
