package resolve

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vango-dev/waymark/internal/errors"
	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
)

func TestChildRoutesStaticWins(t *testing.T) {
	child := &route.Node{Path: "about"}
	node := &route.Node{
		Path:     "app",
		Children: []*route.Node{child},
		GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
			t.Fatal("loader invoked despite static children")
		},
	}

	got, err := New().ChildRoutes(context.Background(), node, location.New("/app"))
	if err != nil {
		t.Fatalf("ChildRoutes: %v", err)
	}
	if len(got) != 1 || got[0] != child {
		t.Fatalf("got %v, want static child", got)
	}
}

func TestChildRoutesMemoized(t *testing.T) {
	var calls atomic.Int32
	node := &route.Node{
		Path: "app",
		GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
			calls.Add(1)
			done([]*route.Node{{Path: "about"}}, nil)
		},
	}

	r := New()
	ctx := context.Background()
	loc := location.New("/app/about")
	first, err := r.ChildRoutes(ctx, node, loc)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := r.ChildRoutes(ctx, node, loc)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("loader called %d times, want 1", calls.Load())
	}
	if len(first) != 1 || len(second) != 1 || first[0] != second[0] {
		t.Fatal("memoized calls returned different children")
	}
}

func TestChildRoutesConcurrentAttach(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	node := &route.Node{
		Path: "app",
		GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
			calls.Add(1)
			go func() {
				<-release
				done([]*route.Node{{Path: "about"}}, nil)
			}()
		},
	}

	r := New()
	loc := location.New("/app")
	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = r.ChildRoutes(context.Background(), node, loc)
		}(i)
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if calls.Load() != 1 {
		t.Fatalf("loader called %d times, want 1", calls.Load())
	}
	for i, err := range errs {
		if err != nil {
			t.Fatalf("waiter %d: %v", i, err)
		}
	}
}

func TestChildRoutesErrorWrapped(t *testing.T) {
	boom := fmt.Errorf("manifest unreachable")
	node := &route.Node{
		Path: "admin",
		GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
			done(nil, boom)
		},
	}

	_, err := New().ChildRoutes(context.Background(), node, location.New("/admin/users"))
	if !errors.CodeIs(err, "W101") {
		t.Fatalf("got %v, want W101", err)
	}
	if !stderrors.Is(err, boom) {
		t.Fatalf("wrapped chain lost the loader error: %v", err)
	}
}

func TestChildRoutesErrorMemoized(t *testing.T) {
	var calls atomic.Int32
	node := &route.Node{
		Path: "admin",
		GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
			calls.Add(1)
			done(nil, fmt.Errorf("down"))
		},
	}

	r := New()
	loc := location.New("/admin")
	for range 3 {
		if _, err := r.ChildRoutes(context.Background(), node, loc); err == nil {
			t.Fatal("expected error")
		}
	}
	if calls.Load() != 1 {
		t.Fatalf("loader retried %d times, failures must cache too", calls.Load())
	}
}

func TestChildRoutesRejectsAbsolutePaths(t *testing.T) {
	node := &route.Node{
		Path: "app",
		GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
			done([]*route.Node{{Path: "/escape"}}, nil)
		},
	}

	_, err := New().ChildRoutes(context.Background(), node, location.New("/app"))
	if !errors.CodeIs(err, "W104") {
		t.Fatalf("got %v, want W104", err)
	}

	permissive := New(WithDynamicAbsolutePaths(true))
	node2 := &route.Node{
		Path: "app",
		GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
			done([]*route.Node{{Path: "/escape"}}, nil)
		},
	}
	if _, err := permissive.ChildRoutes(context.Background(), node2, location.New("/app")); err != nil {
		t.Fatalf("permissive resolver: %v", err)
	}
}

func TestIndexRouteRejectsPath(t *testing.T) {
	node := &route.Node{
		Path: "app",
		GetIndexRoute: func(loc *location.Location, done route.IndexRouteDone) {
			done(&route.Node{Path: "oops"}, nil)
		},
	}

	_, err := New().IndexRoute(context.Background(), node, location.New("/app"))
	if !errors.CodeIs(err, "W002") {
		t.Fatalf("got %v, want W002", err)
	}
}

func TestComponentErrorWrapped(t *testing.T) {
	node := &route.Node{
		Path: "app",
		GetComponent: func(loc *location.Location, done route.ComponentDone) {
			done(nil, fmt.Errorf("chunk failed"))
		},
	}

	_, err := New().Component(context.Background(), node, location.New("/app"))
	if !errors.CodeIs(err, "W103") {
		t.Fatalf("got %v, want W103", err)
	}
}

func TestResolveContextCancelled(t *testing.T) {
	node := &route.Node{
		Path: "slow",
		GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
			// Never completes.
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()
	_, err := New().ChildRoutes(ctx, node, location.New("/slow"))
	if err != context.Canceled {
		t.Fatalf("got %v, want context.Canceled", err)
	}
}

func TestLateCompletionAfterCancelIsCached(t *testing.T) {
	complete := make(chan route.ChildRoutesDone, 1)
	node := &route.Node{
		Path: "slow",
		GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
			complete <- done
		},
	}

	r := New()
	loc := location.New("/slow")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.ChildRoutes(ctx, node, loc); err != context.Canceled {
		t.Fatalf("got %v, want context.Canceled", err)
	}

	// The loader finishes after the first waiter gave up; the value must
	// serve the next transition.
	(<-complete)([]*route.Node{{Path: "about"}}, nil)

	got, err := r.ChildRoutes(context.Background(), node, loc)
	if err != nil {
		t.Fatalf("second attempt: %v", err)
	}
	if len(got) != 1 || got[0].Path != "about" {
		t.Fatalf("got %v, want cached children", got)
	}
}

func TestDoubleCompletionDropped(t *testing.T) {
	node := &route.Node{
		Path: "app",
		GetChildRoutes: func(loc *location.Location, done route.ChildRoutesDone) {
			done([]*route.Node{{Path: "first"}}, nil)
			done([]*route.Node{{Path: "second"}}, nil)
		},
	}

	got, err := New().ChildRoutes(context.Background(), node, location.New("/app"))
	if err != nil {
		t.Fatalf("ChildRoutes: %v", err)
	}
	if len(got) != 1 || got[0].Path != "first" {
		t.Fatalf("got %v, want the first completion only", got)
	}
}
