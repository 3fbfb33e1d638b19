package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/waymark/internal/config"
	"github.com/vango-dev/waymark/pkg/location"
	"github.com/vango-dev/waymark/pkg/router"
)

func resolveCmd() *cobra.Command {
	var manifest string

	cmd := &cobra.Command{
		Use:   "resolve <path>",
		Short: "Resolve a path against the route manifest",
		Long: `Resolve a single path and print the matched branch.

Runs the full resolution pipeline offline: pattern matching,
deferred loading, enter hooks and redirect detection, without
starting a router or touching history.

Examples:
  waymark resolve /users/42
  waymark resolve /admin --manifest s3://configs/app/waymark.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, manifest, args[0])
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", config.ManifestFileName, "Route manifest path or s3:// reference")

	return cmd
}

func runResolve(cmd *cobra.Command, manifestRef, path string) error {
	ctx := cmd.Context()
	m, err := loadManifest(ctx, manifestRef)
	if err != nil {
		return err
	}
	routes, err := m.Build()
	if err != nil {
		return err
	}

	state, redirect, err := router.Match(ctx, routes, location.New(path))
	if err != nil {
		return err
	}

	switch {
	case redirect != nil:
		success("%s redirects to %s", path, redirect.String())
	case state == nil:
		fmt.Printf("\033[33m⚠\033[0m no route matches %s\n", path)
	default:
		success("%s resolved", path)
		for _, n := range state.Routes {
			pattern := n.Path
			if pattern == "" {
				pattern = "(index)"
			}
			info("%s", pattern)
		}
		for name, value := range state.Params {
			info("%s = %s", name, value)
		}
	}
	return nil
}
