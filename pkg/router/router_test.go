package router

import (
	"context"
	stderrors "errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/waymark/internal/errors"
	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
)

func waitState(t *testing.T, ch <-chan *route.State) *route.State {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a commit")
		return nil
	}
}

func waitErr(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an error")
		return nil
	}
}

func waitFor(t *testing.T, ch <-chan *route.State, want func(*route.State) bool) *route.State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case s := <-ch:
			if want(s) {
				return s
			}
		case <-deadline:
			t.Fatal("timed out waiting for the expected commit")
			return nil
		}
	}
}

func leafPath(s *route.State) string {
	if len(s.Routes) == 0 {
		return ""
	}
	return s.Routes[len(s.Routes)-1].Path
}

// recorder collects observer events for assertions.
type recorder struct {
	mu         sync.Mutex
	redirects  [][2]string
	aborted    []error
	committed  int
	redirectCh chan struct{}
}

func newRecorder() *recorder {
	return &recorder{redirectCh: make(chan struct{}, 16)}
}

func (r *recorder) TransitionStarted(seq uint64, loc *location.Location) {}

func (r *recorder) TransitionCommitted(seq uint64, state *route.State) {
	r.mu.Lock()
	r.committed++
	r.mu.Unlock()
}

func (r *recorder) TransitionAborted(seq uint64, loc *location.Location, err error) {
	r.mu.Lock()
	r.aborted = append(r.aborted, err)
	r.mu.Unlock()
}

func (r *recorder) TransitionRedirected(seq uint64, from, to *location.Location) {
	r.mu.Lock()
	r.redirects = append(r.redirects, [2]string{from.Pathname, to.Pathname})
	r.mu.Unlock()
	r.redirectCh <- struct{}{}
}

func (r *recorder) abortReasons() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.aborted...)
}

func startRouter(t *testing.T, routes []*route.Node, opts ...Option) (*Router, *location.MemorySource, <-chan *route.State) {
	t.Helper()
	src := location.NewMemorySource(location.New("/"))
	r, err := New(routes, src, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	commits := make(chan *route.State, 16)
	r.Subscribe(func(s *route.State) { commits <- s })
	r.Start(context.Background())
	t.Cleanup(r.Stop)
	return r, src, commits
}

func basicRoutes() []*route.Node {
	return []*route.Node{
		{Path: "/", Component: "shell", IndexRoute: &route.Node{Component: "home"}, Children: []*route.Node{
			{Path: "about", Component: "about"},
			{Path: "users/:userID", Component: "user"},
		}},
	}
}

func TestRouterInitialCommit(t *testing.T) {
	r, _, commits := startRouter(t, basicRoutes())

	s := waitState(t, commits)
	if s.Location.Pathname != "/" {
		t.Fatalf("committed %q", s.Location.Pathname)
	}
	if len(s.Routes) != 2 || s.Components[1] != "home" {
		t.Fatalf("routes=%d components=%v, want index branch", len(s.Routes), s.Components)
	}
	if r.CurrentState() != s {
		t.Fatal("CurrentState disagrees with subscriber")
	}
}

func TestRouterPushCommitsNewBranch(t *testing.T) {
	r, src, commits := startRouter(t, basicRoutes())
	waitState(t, commits)

	r.Push(location.New("/users/42"))
	s := waitState(t, commits)
	if leafPath(s) != "users/:userID" || s.Params.Get("userID") != "42" {
		t.Fatalf("leaf=%q params=%v", leafPath(s), s.Params)
	}
	if src.Current().Pathname != "/users/42" {
		t.Fatalf("source at %q", src.Current().Pathname)
	}
}

func TestRouterNoMatchCommitsEmptyBranch(t *testing.T) {
	r, _, commits := startRouter(t, basicRoutes())
	waitState(t, commits)

	r.Push(location.New("/missing"))
	s := waitState(t, commits)
	if len(s.Routes) != 0 {
		t.Fatalf("routes = %v, want empty branch on no match", s.Routes)
	}
	if s.Location.Pathname != "/missing" {
		t.Fatalf("location = %q", s.Location.Pathname)
	}
}

func TestRouterRedirect(t *testing.T) {
	rec := newRecorder()
	routes := []*route.Node{
		{Path: "/", Children: []*route.Node{
			{Path: "login", Component: "login"},
			{Path: "admin", Component: "admin",
				OnEnter: func(ctx context.Context, next *route.State, redirect route.RedirectFunc) error {
					redirect(location.New("/login"))
					return nil
				}},
		}},
	}

	r, src, commits := startRouter(t, routes, WithObserver(rec))
	waitState(t, commits)

	r.Push(location.New("/admin"))
	s := waitState(t, commits)
	if leafPath(s) != "login" {
		t.Fatalf("committed leaf %q, want the redirect target", leafPath(s))
	}
	if src.Current().Pathname != "/login" {
		t.Fatalf("history at %q, want replaced with the final target", src.Current().Pathname)
	}

	select {
	case <-rec.redirectCh:
	case <-time.After(time.Second):
		t.Fatal("observer saw no redirect")
	}
}

func TestRouterRedirectLoop(t *testing.T) {
	errs := make(chan error, 1)
	bounce := func(to string) route.EnterHook {
		return func(ctx context.Context, next *route.State, redirect route.RedirectFunc) error {
			redirect(location.New(to))
			return nil
		}
	}
	routes := []*route.Node{
		{Path: "/", Component: "shell", IndexRoute: &route.Node{}, Children: []*route.Node{
			{Path: "a", OnEnter: bounce("/b")},
			{Path: "b", OnEnter: bounce("/a")},
		}},
	}

	r, _, commits := startRouter(t, routes, WithErrorHandler(func(err error) { errs <- err }))
	first := waitState(t, commits)

	r.Push(location.New("/a"))
	err := waitErr(t, errs)
	if !errors.CodeIs(err, "W201") {
		t.Fatalf("got %v, want W201", err)
	}
	if r.CurrentState() != first {
		t.Fatal("failed navigation replaced the committed state")
	}
}

func TestRouterStaleTransitionDiscarded(t *testing.T) {
	rec := newRecorder()
	release := make(chan route.ChildRoutesDone, 1)
	routes := []*route.Node{
		{Path: "/", Component: "shell", IndexRoute: &route.Node{}, Children: []*route.Node{
			{Path: "slow", GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
				release <- done
			}},
			{Path: "fast", Component: "fast"},
		}},
	}

	r, _, commits := startRouter(t, routes, WithObserver(rec))
	waitState(t, commits)

	r.Push(location.New("/slow/deep"))
	done := <-release // the slow branch is now suspended in its loader

	r.Push(location.New("/fast"))
	s := waitState(t, commits)
	if leafPath(s) != "fast" {
		t.Fatalf("leaf = %q", leafPath(s))
	}

	done([]*route.Node{{Path: "deep", Component: "deep"}}, nil)

	// The late completion must not produce another commit.
	select {
	case late := <-commits:
		t.Fatalf("stale transition committed %q", late.Location.Pathname)
	case <-time.After(100 * time.Millisecond):
	}
	if leafPath(r.CurrentState()) != "fast" {
		t.Fatal("committed state changed after stale completion")
	}

	superseded := false
	for _, err := range rec.abortReasons() {
		if stderrors.Is(err, ErrSuperseded) {
			superseded = true
		}
	}
	if !superseded {
		t.Fatal("stale transition was not reported as superseded")
	}
}

func TestRouterBackToBackPushesCommitLast(t *testing.T) {
	r, _, commits := startRouter(t, basicRoutes())
	waitState(t, commits)

	// Sequence numbers are taken at notification time, so the second push
	// always supersedes the first regardless of goroutine scheduling.
	for i := 0; i < 25; i++ {
		id := strconv.Itoa(i)
		r.Push(location.New("/about"))
		r.Push(location.New("/users/" + id))

		waitFor(t, commits, func(s *route.State) bool {
			return s.Params.Get("userID") == id
		})
		if got := r.CurrentState().Params.Get("userID"); got != id {
			t.Fatalf("iteration %d: committed userID %q, want %q", i, got, id)
		}
	}
}

func TestRouterStateOnlyNavigation(t *testing.T) {
	changes := make(chan any, 4)
	routes := []*route.Node{
		{Path: "/", Component: "shell", IndexRoute: &route.Node{Component: "home"}, Children: []*route.Node{
			{Path: "tabs", Component: "tabs",
				OnChange: func(ctx context.Context, prev, next *route.State, redirect route.RedirectFunc) error {
					changes <- next.Location.State
					return nil
				}},
		}},
	}

	r, _, commits := startRouter(t, routes)
	waitState(t, commits)

	r.Push(location.New("/tabs"))
	waitState(t, commits)

	// Same URL, different state: still a navigation.
	r.Push(location.New("/tabs").WithState("tab=2"))
	s := waitState(t, commits)
	if s.Location.State != "tab=2" {
		t.Fatalf("committed state %v, want the pushed state", s.Location.State)
	}
	select {
	case got := <-changes:
		if got != "tab=2" {
			t.Fatalf("OnChange saw state %v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("state-only navigation never ran OnChange")
	}
}

func TestRouterRedirectEchoResolvesOnce(t *testing.T) {
	var enters atomic.Int32
	routes := []*route.Node{
		{Path: "/", Children: []*route.Node{
			{Path: "login", Component: "login",
				OnEnter: func(ctx context.Context, next *route.State, redirect route.RedirectFunc) error {
					enters.Add(1)
					return nil
				}},
			{Path: "admin",
				OnEnter: func(ctx context.Context, next *route.State, redirect route.RedirectFunc) error {
					redirect(location.New("/login"))
					return nil
				}},
		}},
	}

	r, src, commits := startRouter(t, routes)
	waitState(t, commits)

	r.Push(location.New("/admin"))
	waitState(t, commits)
	if src.Current().Pathname != "/login" {
		t.Fatalf("history at %q, want replaced with the final target", src.Current().Pathname)
	}

	// The notification echoed by the post-redirect Replace must not start
	// a second transition.
	select {
	case s := <-commits:
		t.Fatalf("echoed notification re-committed %q", s.Location.Pathname)
	case <-time.After(100 * time.Millisecond):
	}
	if n := enters.Load(); n != 1 {
		t.Fatalf("login entered %d times, want once", n)
	}
}

func TestRouterSubscribeUnsubscribe(t *testing.T) {
	r, _, commits := startRouter(t, basicRoutes())
	waitState(t, commits)

	extra := make(chan *route.State, 4)
	unsub := r.Subscribe(func(s *route.State) { extra <- s })

	r.Push(location.New("/about"))
	waitState(t, commits)
	waitState(t, extra)

	unsub()
	r.Push(location.New("/users/1"))
	waitState(t, commits)
	select {
	case s := <-extra:
		t.Fatalf("unsubscribed listener got %q", s.Location.Pathname)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRouterIsActive(t *testing.T) {
	r, _, commits := startRouter(t, basicRoutes())
	waitState(t, commits)

	r.Push(location.New("/users/42"))
	waitState(t, commits)

	if !r.IsActive("/users/42", false) {
		t.Fatal("current branch not active")
	}
	if r.IsActive("/about", false) {
		t.Fatal("unrelated branch active")
	}
	if !r.IsActive("/", false) {
		t.Fatal("root ancestor not active")
	}
	if r.IsActive("/", true) {
		t.Fatal("indexOnly root active while at a descendant")
	}

	r.Push(location.New("/"))
	waitState(t, commits)
	if !r.IsActive("/", true) {
		t.Fatal("indexOnly root not active at the index")
	}
}

func TestRouterHref(t *testing.T) {
	src := location.NewMemorySource(location.New("/"))
	r, err := New(basicRoutes(), src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	href, err := r.Href("users/:userID", route.Params{"userID": "42"}, nil)
	if err != nil {
		t.Fatalf("Href: %v", err)
	}
	if href != "/users/42" {
		t.Fatalf("href = %q", href)
	}

	loc, err := r.LinkLocation("about", nil, map[string][]string{"ref": {"nav"}})
	if err != nil {
		t.Fatalf("LinkLocation: %v", err)
	}
	if loc.Pathname != "/about" || loc.Search != "?ref=nav" {
		t.Fatalf("loc = %q %q", loc.Pathname, loc.Search)
	}
}

func TestStandaloneMatch(t *testing.T) {
	ctx := context.Background()

	s, redirect, err := Match(ctx, basicRoutes(), location.New("/users/7"))
	if err != nil || redirect != nil {
		t.Fatalf("Match: redirect=%v err=%v", redirect, err)
	}
	if s.Params.Get("userID") != "7" {
		t.Fatalf("params = %v", s.Params)
	}

	s, redirect, err = Match(ctx, basicRoutes(), location.New("/missing"))
	if err != nil || redirect != nil || s != nil {
		t.Fatalf("no-match: s=%v redirect=%v err=%v", s, redirect, err)
	}

	guarded := []*route.Node{
		{Path: "/admin", OnEnter: func(ctx context.Context, next *route.State, redirect route.RedirectFunc) error {
			redirect(location.New("/login"))
			return nil
		}},
	}
	s, redirect, err = Match(ctx, guarded, location.New("/admin"))
	if err != nil || s != nil {
		t.Fatalf("redirect case: s=%v err=%v", s, err)
	}
	if redirect == nil || redirect.Pathname != "/login" {
		t.Fatalf("redirect = %v", redirect)
	}
}
