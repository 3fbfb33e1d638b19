package config

import (
	"context"

	"github.com/vango-dev/waymark/internal/errors"
	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/route"
)

const (
	// ManifestFileName is the default manifest file name.
	ManifestFileName = "waymark.yaml"

	// DefaultAddr is the default serve address.
	DefaultAddr = ":3000"
)

// Manifest is the YAML route manifest. It describes a route tree with
// string component names; the embedding application maps names to real
// views.
type Manifest struct {
	// Routes is the root level of the route tree.
	Routes []RouteSpec `yaml:"routes"`

	// Server configures the serve command.
	Server ServerConfig `yaml:"server"`

	// MaxRedirects bounds redirect chains, 0 for the default.
	MaxRedirects int `yaml:"max_redirects"`
}

// RouteSpec is one node of the manifest tree.
type RouteSpec struct {
	// Path is the route pattern, empty for pathless layouts.
	Path string `yaml:"path"`

	// Component names the single view for this route.
	Component string `yaml:"component"`

	// Components names views per named slot. Mutually exclusive with
	// Component.
	Components map[string]string `yaml:"components"`

	// Redirect sends every visit to another location instead of
	// rendering.
	Redirect string `yaml:"redirect"`

	// Index is the route rendered at this node's own path.
	Index *RouteSpec `yaml:"index"`

	// Children are nested routes.
	Children []RouteSpec `yaml:"children"`
}

// ServerConfig configures the HTTP surface of the serve command.
type ServerConfig struct {
	// Addr is the listen address (default ":3000").
	Addr string `yaml:"addr"`

	// Metrics exposes Prometheus metrics on /metrics.
	Metrics bool `yaml:"metrics"`

	// Console exposes the WebSocket navigation console on /ws.
	Console bool `yaml:"console"`
}

// applyDefaults fills unset fields.
func (m *Manifest) applyDefaults() {
	if m.Server.Addr == "" {
		m.Server.Addr = DefaultAddr
	}
}

// Build converts the manifest into a route tree and validates it. A
// redirect entry becomes a route whose enter hook immediately redirects.
func (m *Manifest) Build() ([]*route.Node, error) {
	nodes := buildLevel(m.Routes)
	if err := route.Normalize(nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

func buildLevel(specs []RouteSpec) []*route.Node {
	nodes := make([]*route.Node, 0, len(specs))
	for i := range specs {
		nodes = append(nodes, buildNode(&specs[i]))
	}
	return nodes
}

func buildNode(spec *RouteSpec) *route.Node {
	node := &route.Node{Path: spec.Path}
	if spec.Component != "" {
		node.Component = spec.Component
	}
	if len(spec.Components) > 0 {
		node.Components = make(map[string]route.Component, len(spec.Components))
		for slot, name := range spec.Components {
			node.Components[slot] = name
		}
	}
	if spec.Redirect != "" {
		target := spec.Redirect
		node.OnEnter = func(ctx context.Context, next *route.State, redirect route.RedirectFunc) error {
			redirect(location.New(target))
			return nil
		}
	}
	if spec.Index != nil {
		node.IndexRoute = buildNode(spec.Index)
	}
	if len(spec.Children) > 0 {
		node.Children = buildLevel(spec.Children)
	}
	return node
}

// Validate checks manifest consistency beyond what Build's normalization
// covers.
func (m *Manifest) Validate() error {
	return validateLevel(m.Routes)
}

func validateLevel(specs []RouteSpec) error {
	for i := range specs {
		s := &specs[i]
		if s.Component != "" && len(s.Components) > 0 {
			return errors.New("W004").
				WithRoute(s.Path).
				WithDetail("component and components are mutually exclusive")
		}
		if s.Redirect != "" && (s.Component != "" || len(s.Components) > 0) {
			return errors.New("W004").
				WithRoute(s.Path).
				WithDetail("a redirect route cannot also name a component")
		}
		if s.Index != nil {
			if s.Index.Path != "" {
				return errors.New("W002").WithRoute(s.Path)
			}
			if err := validateLevel([]RouteSpec{*s.Index}); err != nil {
				return err
			}
		}
		if err := validateLevel(s.Children); err != nil {
			return err
		}
	}
	return nil
}
