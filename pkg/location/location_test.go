package location

import "testing"

func TestNewSplitsPathSearchHash(t *testing.T) {
	loc := New("/users/42?tab=posts#bio")

	if loc.Pathname != "/users/42" {
		t.Errorf("Pathname = %q, want %q", loc.Pathname, "/users/42")
	}
	if loc.Search != "?tab=posts" {
		t.Errorf("Search = %q, want %q", loc.Search, "?tab=posts")
	}
	if loc.Hash != "#bio" {
		t.Errorf("Hash = %q, want %q", loc.Hash, "#bio")
	}
}

func TestNewAddsLeadingSlash(t *testing.T) {
	loc := New("users")
	if loc.Pathname != "/users" {
		t.Errorf("Pathname = %q, want %q", loc.Pathname, "/users")
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, path := range []string{"/", "/a", "/a?b=c", "/a?b=c#d", "/a#d"} {
		if got := New(path).String(); got != path {
			t.Errorf("New(%q).String() = %q", path, got)
		}
	}
}

func TestSameURLIgnoresState(t *testing.T) {
	a := New("/a?x=1").WithState("one")
	b := New("/a?x=1").WithState("two")
	c := New("/a?x=2")

	if !a.SameURL(b) {
		t.Error("locations differing only in state should compare equal")
	}
	if a.SameURL(c) {
		t.Error("locations with different queries should not compare equal")
	}
}

func TestQueryParsesSearch(t *testing.T) {
	loc := New("/a?x=1&y=2")

	q := loc.Query(nil)
	if q.Get("x") != "1" || q.Get("y") != "2" {
		t.Errorf("Query = %v", q)
	}
}

func TestQueryMalformedYieldsEmpty(t *testing.T) {
	loc := &Location{Pathname: "/a", Search: "?x=%zz"}

	q := loc.Query(nil)
	if len(q) != 0 {
		t.Errorf("Query = %v, want empty", q)
	}
}

func TestMemorySourcePushReplaceGo(t *testing.T) {
	s := NewMemorySource()

	var seen []string
	unlisten := s.Listen(func(loc *Location) {
		seen = append(seen, loc.Pathname)
	})
	defer unlisten()

	s.Push(New("/a"))
	s.Push(New("/b"))
	s.Replace(New("/b2"))
	s.Go(-1)
	s.Go(1)

	want := []string{"/a", "/b", "/b2", "/a", "/b2"}
	if len(seen) != len(want) {
		t.Fatalf("notifications = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("notification %d = %q, want %q", i, seen[i], want[i])
		}
	}

	if got := s.Current().Pathname; got != "/b2" {
		t.Errorf("Current = %q, want %q", got, "/b2")
	}
}

func TestMemorySourcePushDropsForwardEntries(t *testing.T) {
	s := NewMemorySource()
	s.Push(New("/a"))
	s.Push(New("/b"))
	s.Go(-1)
	s.Push(New("/c"))

	// Forward history ("/b") is gone.
	s.Go(1)
	if got := s.Current().Pathname; got != "/c" {
		t.Errorf("Current = %q, want %q", got, "/c")
	}
	if s.Length() != 3 {
		t.Errorf("Length = %d, want 3", s.Length())
	}
}

func TestMemorySourceGoPastEndsIsNoop(t *testing.T) {
	s := NewMemorySource()

	fired := 0
	s.Listen(func(*Location) { fired++ })

	s.Go(-1)
	s.Go(5)
	if fired != 0 {
		t.Errorf("out-of-range Go fired %d notifications", fired)
	}
}

func TestMemorySourceUnlisten(t *testing.T) {
	s := NewMemorySource()

	fired := 0
	unlisten := s.Listen(func(*Location) { fired++ })
	s.Push(New("/a"))
	unlisten()
	s.Push(New("/b"))

	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
}
