package console

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
	"github.com/vango-dev/waymark/pkg/router"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 5 * time.Minute
	sendBuffer   = 16
)

// Config configures the navigation console.
type Config struct {
	logger     *slog.Logger
	routerOpts []router.Option
	initial    string
}

// Option configures the navigation console.
type Option func(*Config)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithRouterOptions passes options to each connection's router.
func WithRouterOptions(opts ...router.Option) Option {
	return func(c *Config) {
		c.routerOpts = append(c.routerOpts, opts...)
	}
}

// WithInitialPath sets the location each session starts at.
func WithInitialPath(path string) Option {
	return func(c *Config) {
		c.initial = path
	}
}

// Command is a navigation request from the client.
type Command struct {
	// Op is one of push, replace, go, back, forward.
	Op string `json:"op"`
	// Path is the target for push and replace.
	Path string `json:"path,omitempty"`
	// Delta is the distance for go.
	Delta int `json:"delta,omitempty"`
}

// Message is one frame sent to the client.
type Message struct {
	// Type is "state" or "error".
	Type string `json:"type"`
	// Location is the committed location for state frames.
	Location string `json:"location,omitempty"`
	// Routes holds the patterns of the committed branch.
	Routes []string `json:"routes,omitempty"`
	// Params holds the resolved params.
	Params map[string]string `json:"params,omitempty"`
	// Error carries the failure text for error frames.
	Error string `json:"error,omitempty"`
}

// Handler serves an interactive navigation console over WebSocket. Each
// connection drives its own Router over an in-memory history, so sessions
// explore the route tree independently: the client sends Commands, the
// console streams a Message for every commit and every failed transition.
func Handler(routes []*route.Node, opts ...Option) http.Handler {
	config := Config{logger: slog.Default(), initial: "/"}
	for _, opt := range opts {
		opt(&config)
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			config.logger.Error("console upgrade failed", "error", err)
			return
		}
		s := &session{
			conn:   conn,
			config: config,
			send:   make(chan Message, sendBuffer),
		}
		s.run(req.Context(), routes)
	})
}

// session is one console connection with its own router.
type session struct {
	conn   *websocket.Conn
	config Config
	send   chan Message
}

func (s *session) run(ctx context.Context, routes []*route.Node) {
	defer s.conn.Close()

	src := location.NewMemorySource(location.New(s.config.initial))
	opts := append([]router.Option{
		router.WithLogger(s.config.logger),
		router.WithErrorHandler(func(err error) {
			s.enqueue(Message{Type: "error", Error: err.Error()})
		}),
	}, s.config.routerOpts...)

	r, err := router.New(routes, src, opts...)
	if err != nil {
		s.config.logger.Error("console router rejected routes", "error", err)
		return
	}
	unsub := r.Subscribe(func(state *route.State) {
		s.enqueue(stateMessage(state))
	})
	defer unsub()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	r.Start(ctx)
	defer r.Stop()

	go s.writeLoop(ctx)
	s.readLoop(r)
}

func (s *session) readLoop(r *router.Router) {
	for {
		s.conn.SetReadDeadline(time.Now().Add(readTimeout))
		var cmd Command
		if err := s.conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.config.logger.Error("console read error", "error", err)
			}
			return
		}

		switch cmd.Op {
		case "push":
			r.Push(location.New(cmd.Path))
		case "replace":
			r.Replace(location.New(cmd.Path))
		case "go":
			r.Go(cmd.Delta)
		case "back":
			r.GoBack()
		case "forward":
			r.GoForward()
		default:
			s.enqueue(Message{Type: "error", Error: "unknown op: " + cmd.Op})
		}
	}
}

func (s *session) writeLoop(ctx context.Context) {
	for {
		select {
		case msg := <-s.send:
			s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := s.conn.WriteJSON(msg); err != nil {
				s.config.logger.Debug("console write error", "error", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// enqueue drops frames when the client cannot keep up; the next commit
// carries the full state anyway.
func (s *session) enqueue(msg Message) {
	select {
	case s.send <- msg:
	default:
	}
}

func stateMessage(state *route.State) Message {
	patterns := make([]string, len(state.Routes))
	for i, n := range state.Routes {
		patterns[i] = n.Path
	}
	return Message{
		Type:     "state",
		Location: state.Location.String(),
		Routes:   patterns,
		Params:   state.Params,
	}
}
