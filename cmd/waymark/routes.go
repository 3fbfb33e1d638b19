package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/waymark/internal/config"
	"github.com/vango-dev/waymark/pkg/route"
)

func routesCmd() *cobra.Command {
	var manifest string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "List the flattened route patterns of a manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := loadManifest(cmd.Context(), manifest)
			if err != nil {
				return err
			}
			routes, err := m.Build()
			if err != nil {
				return err
			}
			for _, pattern := range route.Patterns(routes) {
				fmt.Println(pattern)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&manifest, "manifest", "m", config.ManifestFileName, "Route manifest path or s3:// reference")

	return cmd
}
