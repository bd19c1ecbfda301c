package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/depnix/depnix/pkg/config"
	"github.com/depnix/depnix/pkg/generator"
	"github.com/depnix/depnix/pkg/manifest"
)

func newGenerateCmd() *cobra.Command {
	var (
		flagManifest string
		flagOut      string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Resolve git dependencies and write build expressions",
		Long:  "Walks the package manifest, pins every git dependency to an exact commit and content hash, then writes emitter outputs and the lockfile.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, flagManifest, flagOut)
		},
	}

	cmd.Flags().StringVar(&flagManifest, "manifest", "", "package manifest filename (default from depnix.toml, else package.json)")
	cmd.Flags().StringVar(&flagOut, "out", "", "output directory for emitter files (default from depnix.toml)")

	return cmd
}

func runGenerate(cmd *cobra.Command, flagManifest, flagOut string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	cfg := loadProjectConfig(wd)

	manifestFile := cfg.PackageManifest()
	if flagManifest != "" {
		manifestFile = flagManifest
	}

	m, err := manifest.Load(filepath.Join(wd, manifestFile))
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(cmd)
	if err != nil {
		return err
	}

	outDir := filepath.Join(wd, cfg.OutDir())
	if flagOut != "" {
		outDir = flagOut
	}

	gen := &generator.Generator{
		Fetcher:  fetcher,
		OutDir:   outDir,
		Emitters: cfg.Generate.Emitters,
		Logger:   loggerFromContext(cmd.Context()),
	}

	ctx, cancel := resolveContext(cmd.Context())
	defer cancel()

	res, err := gen.Run(ctx, wd, m)
	if err != nil {
		return err
	}

	lockPath := filepath.Join(wd, config.LockFileName)
	if err := config.SaveLockFile(lockPath, res.Lock); err != nil {
		return fmt.Errorf("writing lockfile: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pinned %d git dependency(ies)\n", len(res.Descriptors))
	for _, out := range res.Outputs {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", lockPath)
	return nil
}

// loadProjectConfig reads depnix.toml from dir, falling back to defaults
// when the project has not been initialized.
func loadProjectConfig(dir string) *config.Config {
	cfg, err := config.LoadFile(filepath.Join(dir, config.ManifestFileName))
	if err != nil {
		return &config.Config{}
	}
	return cfg
}
