package router

import (
	"net/url"

	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
)

// Href builds a concrete URL from a route pattern, filling named params
// and splats and appending the query with the router's codec. The inverse
// of matching: Href("users/:id", {"id": "42"}, nil) gives "/users/42".
func (r *Router) Href(pattern string, params route.Params, query url.Values) (string, error) {
	pathname, err := route.FormatPattern(pattern, params)
	if err != nil {
		return "", err
	}
	if len(pathname) == 0 || pathname[0] != '/' {
		pathname = "/" + pathname
	}
	if len(query) > 0 {
		search := r.codec.Stringify(query)
		if search != "" && search[0] != '?' {
			search = "?" + search
		}
		pathname += search
	}
	return pathname, nil
}

// LinkLocation builds the Location that Push or Replace would need for a
// pattern and params, convenient for programmatic navigation.
func (r *Router) LinkLocation(pattern string, params route.Params, query url.Values) (*location.Location, error) {
	href, err := r.Href(pattern, params, query)
	if err != nil {
		return nil, err
	}
	return location.New(href), nil
}
