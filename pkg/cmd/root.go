package cmd

import (
	"context"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/depnix/depnix/pkg/config"
	"github.com/depnix/depnix/pkg/fetch"
	"github.com/depnix/depnix/pkg/git"
	"github.com/depnix/depnix/pkg/nix"
)

// version is injected via ldflags at build time.
var version = "dev"

var (
	flagVerbose bool
	flagTimeout int

	// DevCfg holds the resolved developer configuration, available to all
	// subcommands after PersistentPreRunE completes.
	DevCfg *config.DevConfig
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "depnix",
		Short:   "Pin git dependencies for reproducible builds",
		Long:    "depnix resolves git dependencies from a package manifest into exact commits and content hashes, and emits build expressions that re-fetch the pinned sources.",
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]any{}
			if cmd.Flags().Changed("verbose") {
				overrides["verbose"] = flagVerbose
			}
			if cmd.Flags().Changed("timeout") {
				overrides["timeout"] = flagTimeout
			}

			cfg, err := config.LoadDevConfig(overrides)
			if err != nil {
				return err
			}
			DevCfg = cfg

			level := charmlog.InfoLevel
			if cfg.Verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().IntVar(&flagTimeout, "timeout", 0, "deadline for dependency resolution in seconds (0 = none)")

	root.AddCommand(newInitCmd())
	root.AddCommand(newGenerateCmd())
	root.AddCommand(newFetchCmd())
	root.AddCommand(newDoctorCmd())

	return root
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// newFetcher builds the fetch pipeline from the resolved developer config.
func newFetcher(cmd *cobra.Command) (*fetch.Fetcher, error) {
	gitClient, err := git.Detect(DevCfg.Git)
	if err != nil {
		return nil, err
	}

	hasher, err := nix.Detect(DevCfg.NixHash)
	if err != nil {
		return nil, err
	}

	return &fetch.Fetcher{
		Git:    gitClient,
		Hasher: hasher,
		Logger: loggerFromContext(cmd.Context()),
	}, nil
}

// resolveContext applies the configured resolution deadline, if any.
func resolveContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if DevCfg != nil && DevCfg.Timeout > 0 {
		return context.WithTimeout(ctx, time.Duration(DevCfg.Timeout)*time.Second)
	}
	return context.WithCancel(ctx)
}
