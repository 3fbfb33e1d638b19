package route

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Params are the merged path captures for a branch. Keys are the parameter
// names from the matched patterns; values are the decoded segments.
type Params map[string]string

// NewParams folds ordered capture name/value pairs into a map. A repeated
// name keeps the later (deeper) value.
func NewParams(names, values []string) Params {
	p := make(Params, len(names))
	for i, name := range names {
		p[name] = values[i]
	}
	return p
}

// Get returns the raw value for a parameter, or "" when absent.
func (p Params) Get(name string) string {
	return p[name]
}

// Has reports whether the parameter was captured.
func (p Params) Has(name string) bool {
	_, ok := p[name]
	return ok
}

// Int parses a parameter as an int.
func (p Params) Int(name string) (int, error) {
	v, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("param %q not captured", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("param %q: invalid integer %q", name, v)
	}
	return n, nil
}

// Int64 parses a parameter as an int64.
func (p Params) Int64(name string) (int64, error) {
	v, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("param %q not captured", name)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("param %q: invalid integer %q", name, v)
	}
	return n, nil
}

// Float parses a parameter as a float64.
func (p Params) Float(name string) (float64, error) {
	v, ok := p[name]
	if !ok {
		return 0, fmt.Errorf("param %q not captured", name)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("param %q: invalid float %q", name, v)
	}
	return f, nil
}

// Bool parses a parameter as a bool.
func (p Params) Bool(name string) (bool, error) {
	v, ok := p[name]
	if !ok {
		return false, fmt.Errorf("param %q not captured", name)
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("param %q: invalid boolean %q", name, v)
	}
	return b, nil
}

// UUID parses a parameter as a UUID.
func (p Params) UUID(name string) (uuid.UUID, error) {
	v, ok := p[name]
	if !ok {
		return uuid.Nil, fmt.Errorf("param %q not captured", name)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("param %q: invalid UUID %q", name, v)
	}
	return id, nil
}

// Splat returns the splat capture split into segments, or nil when no splat
// was captured.
func (p Params) Splat() []string {
	v, ok := p[SplatParam]
	if !ok || v == "" {
		return nil
	}
	return strings.Split(strings.Trim(v, "/"), "/")
}

// Equal reports whether two param sets capture the same values.
func (p Params) Equal(other Params) bool {
	if len(p) != len(other) {
		return false
	}
	for k, v := range p {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// clone returns a copy; mutating the copy leaves the original intact.
func (p Params) clone() Params {
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}
