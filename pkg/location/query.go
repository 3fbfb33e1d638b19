package location

import (
	"net/url"
	"strings"
)

// QueryCodec converts between query strings and value maps. A codec is
// injected into the router so applications can swap in their own encoding
// without the resolution pipeline caring.
type QueryCodec interface {
	// Stringify encodes values into a query string without the leading "?".
	Stringify(values url.Values) string

	// Parse decodes a query string. The input may carry a leading "?".
	Parse(query string) (url.Values, error)
}

// urlCodec is the default QueryCodec backed by net/url.
type urlCodec struct{}

// DefaultQueryCodec returns the net/url-backed codec.
func DefaultQueryCodec() QueryCodec {
	return urlCodec{}
}

func (urlCodec) Stringify(values url.Values) string {
	return values.Encode()
}

func (urlCodec) Parse(query string) (url.Values, error) {
	query = strings.TrimPrefix(query, "?")
	return url.ParseQuery(query)
}

// Query parses the location's search string with the given codec. A nil
// codec falls back to the default. Parse failures yield an empty map; a
// malformed query never aborts resolution.
func (l *Location) Query(codec QueryCodec) url.Values {
	if codec == nil {
		codec = DefaultQueryCodec()
	}
	values, err := codec.Parse(l.Search)
	if err != nil {
		return url.Values{}
	}
	return values
}
