package router

import (
	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
)

// Observer receives transition lifecycle events. Implementations must be
// safe for concurrent use; transitions run on their own goroutines.
type Observer interface {
	// TransitionStarted fires when a location notification begins a new
	// transition.
	TransitionStarted(seq uint64, loc *location.Location)
	// TransitionCommitted fires exactly once per committed transition,
	// after subscribers were notified.
	TransitionCommitted(seq uint64, state *route.State)
	// TransitionAborted fires when a transition ends without a commit.
	// The error is ErrSuperseded for stale transitions, otherwise the
	// resolution or hook failure.
	TransitionAborted(seq uint64, loc *location.Location, err error)
	// TransitionRedirected fires for every hop of a redirect chain.
	TransitionRedirected(seq uint64, from, to *location.Location)
}
