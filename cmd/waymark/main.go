package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/vango-dev/waymark/internal/config"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "waymark",
		Short: "Route resolution engine for nested route trees",
		Long: `Waymark resolves locations against nested route trees.

It matches path patterns with params and splats, loads route
subtrees on demand, runs enter/change/leave lifecycle hooks,
and follows hook-requested redirects. Route trees live in code
or in a YAML manifest, local or in S3.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		resolveCmd(),
		routesCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// loadManifest reads the manifest behind ref, wiring an S3 client for
// s3:// references.
func loadManifest(ctx context.Context, ref string) (*config.Manifest, error) {
	var opts []config.LoadOption
	if strings.HasPrefix(ref, "s3://") {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, err
		}
		opts = append(opts, config.WithS3Client(s3.NewFromConfig(awsCfg)))
	}
	return config.NewLoader(opts...).Load(ctx, ref)
}

// success prints a success message.
func success(format string, args ...any) {
	fmt.Printf("\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(format string, args ...any) {
	fmt.Printf("  %s\n", fmt.Sprintf(format, args...))
}
