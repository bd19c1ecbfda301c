package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depnix/depnix/pkg/fetch"
)

func newFetchCmd() *cobra.Command {
	var (
		flagBaseDir      string
		flagExport       string
		flagManifestFile string
	)

	cmd := &cobra.Command{
		Use:   "fetch <name> <specifier>",
		Short: "Resolve a single git dependency",
		Long: `Runs the resolve pipeline for one dependency and prints the resulting
descriptor as JSON.

The specifier is a git URL with an optional commit-ish fragment, e.g.
git+https://example.com/repo.git#v1.2.0.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, args[0], args[1], flagBaseDir, flagExport, flagManifestFile)
		},
	}

	cmd.Flags().StringVar(&flagBaseDir, "base-dir", ".", "referrer base directory the install path is computed from")
	cmd.Flags().StringVar(&flagExport, "export", "", "copy the sanitized checkout into this directory")
	cmd.Flags().StringVar(&flagManifestFile, "manifest-file", "", "manifest filename inside the checkout (default package.json)")

	return cmd
}

func runFetch(cmd *cobra.Command, name, spec, baseDir, export, manifestFile string) error {
	fetcher, err := newFetcher(cmd)
	if err != nil {
		return err
	}
	fetcher.ExportDir = export
	fetcher.ManifestFile = manifestFile

	ctx, cancel := resolveContext(cmd.Context())
	defer cancel()

	desc, err := fetcher.Fetch(ctx, fetch.Request{BaseDir: baseDir, Name: name, Spec: spec})
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(desc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding descriptor: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
