package errors

import (
	stderrors "errors"
	"strings"
	"testing"
)

func TestNewFromRegistry(t *testing.T) {
	err := New("W201")

	if err.Code != "W201" {
		t.Errorf("Code = %q, want %q", err.Code, "W201")
	}
	if err.Category != CategoryNavigation {
		t.Errorf("Category = %q, want %q", err.Category, CategoryNavigation)
	}
	if err.Message == "" {
		t.Error("Message should not be empty")
	}
	if err.DocURL == "" {
		t.Error("DocURL should not be empty")
	}
}

func TestNewUnknownCode(t *testing.T) {
	err := New("W999")

	if err.Code != "W999" {
		t.Errorf("Code = %q, want %q", err.Code, "W999")
	}
	if err.Message != "Unknown error" {
		t.Errorf("Message = %q, want %q", err.Message, "Unknown error")
	}
}

func TestErrorString(t *testing.T) {
	err := New("W101").WithRoute("users/:id")

	s := err.Error()
	if !strings.Contains(s, "W101") {
		t.Errorf("Error() = %q, want code included", s)
	}
	if !strings.Contains(s, "users/:id") {
		t.Errorf("Error() = %q, want route included", s)
	}
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("network down")
	err := New("W103").Wrap(cause)

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}

	var we *WaymarkError
	if !stderrors.As(err, &we) {
		t.Fatal("errors.As should find *WaymarkError")
	}
	if we.Code != "W103" {
		t.Errorf("Code = %q, want %q", we.Code, "W103")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "W103") != nil {
		t.Error("FromError(nil) should return nil")
	}

	orig := New("W104")
	if got := FromError(orig, "W103"); got != orig {
		t.Error("FromError should pass through an existing WaymarkError")
	}

	wrapped := FromError(stderrors.New("boom"), "W103")
	if wrapped.Code != "W103" {
		t.Errorf("Code = %q, want %q", wrapped.Code, "W103")
	}
}

func TestCodeIs(t *testing.T) {
	if !CodeIs(New("W201"), "W201") {
		t.Error("CodeIs should match the error's code")
	}
	if CodeIs(New("W201"), "W202") {
		t.Error("CodeIs should not match a different code")
	}
	if CodeIs(stderrors.New("plain"), "W201") {
		t.Error("CodeIs should reject non-WaymarkError values")
	}
}

func TestFormatPlain(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("W201").
		WithLocation("/login").
		WithSuggestion("Check for onEnter hooks that redirect to each other.").
		Format()

	for _, want := range []string{"ERROR W201", "/login", "Hint:", "Learn more:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}
}
