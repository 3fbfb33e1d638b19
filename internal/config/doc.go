// Package config loads declarative route manifests. A manifest is a YAML
// file, local or in S3, describing a route tree with string component
// names, server settings for the serve command and router limits.
package config
