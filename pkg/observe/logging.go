package observe

import (
	"errors"
	"log/slog"

	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
	"github.com/vango-dev/waymark/pkg/router"
)

// LoggingObserver writes one structured log line per transition event.
// It implements router.Observer.
type LoggingObserver struct {
	logger *slog.Logger
}

// Logging creates an observer logging at Info for commits and errors,
// Debug for the rest. A nil logger uses slog.Default.
func Logging(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

func (l *LoggingObserver) TransitionStarted(seq uint64, loc *location.Location) {
	l.logger.Debug("transition started", "seq", seq, "location", loc.String())
}

func (l *LoggingObserver) TransitionCommitted(seq uint64, state *route.State) {
	l.logger.Info("transition committed",
		"seq", seq,
		"location", state.Location.String(),
		"routes", len(state.Routes))
}

func (l *LoggingObserver) TransitionAborted(seq uint64, loc *location.Location, err error) {
	if errors.Is(err, router.ErrSuperseded) {
		l.logger.Debug("transition superseded", "seq", seq, "location", loc.String())
		return
	}
	l.logger.Info("transition aborted", "seq", seq, "location", loc.String(), "error", err)
}

func (l *LoggingObserver) TransitionRedirected(seq uint64, from, to *location.Location) {
	l.logger.Debug("transition redirected", "seq", seq, "from", from.String(), "to", to.String())
}
