package transition

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/waymark/internal/errors"
	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
)

// Pipeline runs lifecycle hooks for one transition pass. It is stateless
// between runs; the router creates one and reuses it.
type Pipeline struct {
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{logger: slog.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// redirectCapture is the RedirectFunc handed to hooks. The first call
// wins; later calls within the same pass are ignored.
type redirectCapture struct {
	mu sync.Mutex
	to *location.Location
}

func (rc *redirectCapture) set(to *location.Location) {
	rc.mu.Lock()
	if rc.to == nil {
		rc.to = to
	}
	rc.mu.Unlock()
}

func (rc *redirectCapture) get() *location.Location {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.to
}

// Run executes the hook pass for a transition from prev to next. Leave
// hooks fire first, leaf to root, and cannot stop the transition. Enter
// and change hooks then run root to leaf in tree order; each may block,
// return an error, or request a redirect.
//
// A non-nil returned location means a hook redirected: the pass is
// aborted and the caller starts a fresh transition at that location. A
// non-nil error aborts the pass with the previous state intact.
func (p *Pipeline) Run(ctx context.Context, prev, next *route.State) (*location.Location, error) {
	d := Compute(prev, next)

	for _, n := range d.Left {
		if n.OnLeave != nil {
			n.OnLeave(prev)
		}
	}

	entered := make(map[*route.Node]bool, len(d.Entered))
	for _, n := range d.Entered {
		entered[n] = true
	}
	changed := make(map[*route.Node]bool, len(d.Changed))
	for _, n := range d.Changed {
		changed[n] = true
	}

	rc := &redirectCapture{}
	redirect := func(to *location.Location) { rc.set(to) }

	// Interleaved root to leaf by position in the new branch.
	for _, n := range next.Routes {
		var err error
		switch {
		case entered[n] && n.OnEnter != nil:
			err = n.OnEnter(ctx, next, redirect)
		case changed[n] && n.OnChange != nil:
			err = n.OnChange(ctx, prev, next, redirect)
		default:
			continue
		}

		if to := rc.get(); to != nil {
			if err != nil {
				p.logger.Warn("hook error discarded in favor of redirect",
					"route", n.Path, "error", err)
			}
			p.logger.Debug("transition redirected",
				"route", n.Path, "to", to.String())
			return to, nil
		}
		if err != nil {
			return nil, errors.FromError(err, "W202").
				WithRoute(n.Path).
				WithLocation(next.Location.Pathname)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
	return nil, nil
}
