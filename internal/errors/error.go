package errors

import (
	stderrors "errors"
	"fmt"
)

// Category represents the type of error.
type Category string

const (
	CategoryConfig     Category = "config"
	CategoryValidation Category = "validation"
	CategoryResolution Category = "resolution"
	CategoryNavigation Category = "navigation"
)

// WaymarkError is a structured error with a code, a route pattern, a fix
// suggestion, and a documentation link.
type WaymarkError struct {
	// Code is a unique error identifier (e.g., "W101").
	Code string

	// Category is the error type (config, resolution, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Route is the route path pattern the error relates to, if any.
	Route string

	// Location is the URL pathname being resolved when the error
	// occurred, if any.
	Location string

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// DocURL is a link to documentation about this error.
	DocURL string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *WaymarkError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Route != "" {
		msg = fmt.Sprintf("%s (route %q)", msg, e.Route)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped)
	}
	return msg
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *WaymarkError) Unwrap() error {
	return e.Wrapped
}

// WithRoute records the route pattern the error relates to.
func (e *WaymarkError) WithRoute(pattern string) *WaymarkError {
	e.Route = pattern
	return e
}

// WithLocation records the pathname being resolved.
func (e *WaymarkError) WithLocation(pathname string) *WaymarkError {
	e.Location = pathname
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *WaymarkError) WithSuggestion(s string) *WaymarkError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *WaymarkError) WithDetail(d string) *WaymarkError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *WaymarkError) Wrap(err error) *WaymarkError {
	e.Wrapped = err
	return e
}

// New creates a WaymarkError from a registered error code.
func New(code string) *WaymarkError {
	template, ok := registry[code]
	if !ok {
		return &WaymarkError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &WaymarkError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
		DocURL:   template.DocURL,
	}
}

// Newf creates a new WaymarkError with a formatted message (no code).
func Newf(category Category, format string, args ...any) *WaymarkError {
	return &WaymarkError{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// FromError wraps a standard error in a WaymarkError.
func FromError(err error, code string) *WaymarkError {
	if err == nil {
		return nil
	}
	if we, ok := err.(*WaymarkError); ok {
		return we
	}
	return New(code).Wrap(err)
}

// CodeIs reports whether err carries the given registered code, anywhere
// in its unwrap chain.
func CodeIs(err error, code string) bool {
	var we *WaymarkError
	if !stderrors.As(err, &we) {
		return false
	}
	return we.Code == code
}
