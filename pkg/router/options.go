package router

import (
	"log/slog"

	"github.com/vango-dev/waymark/pkg/location"
)

// DefaultMaxRedirects bounds a redirect chain within one navigation.
const DefaultMaxRedirects = 10

// Option configures a Router.
type Option func(*Router)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithQueryCodec replaces the default query-string codec.
func WithQueryCodec(codec location.QueryCodec) Option {
	return func(r *Router) {
		r.codec = codec
	}
}

// WithObserver registers a transition observer. May be given multiple
// times; observers fire in registration order.
func WithObserver(obs Observer) Option {
	return func(r *Router) {
		r.observers = append(r.observers, obs)
	}
}

// WithErrorHandler sets the handler invoked when a transition aborts on a
// resolution or hook error. The previously committed state stays intact
// either way.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Router) {
		r.onError = fn
	}
}

// WithMaxRedirects bounds chained redirects within one navigation.
func WithMaxRedirects(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.maxRedirects = n
		}
	}
}

// WithDynamicAbsolutePaths permits absolute paths on dynamically loaded
// routes.
func WithDynamicAbsolutePaths(allow bool) Option {
	return func(r *Router) {
		r.allowAbsoluteDynamic = allow
	}
}
