package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/depnix/depnix/pkg/config"
	"github.com/depnix/depnix/pkg/git"
	"github.com/depnix/depnix/pkg/nix"
)

func newDoctorCmd() *cobra.Command {
	var flagFix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check that required external tools are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, flagFix)
		},
	}

	cmd.Flags().BoolVar(&flagFix, "fix", false, "prompt for missing tool paths and save them to the developer config")

	return cmd
}

func runDoctor(cmd *cobra.Command, fix bool) error {
	out := cmd.OutOrStdout()
	ok := true
	fixes := &config.DevConfig{}

	gitClient, err := git.Detect(DevCfg.Git)
	if err != nil {
		fmt.Fprintf(out, "git: NOT FOUND (%v)\n", err)
		if fix {
			path, perr := promptToolPath("git")
			if perr != nil {
				return perr
			}
			fixes.Git = path
		} else {
			fmt.Fprintln(out, "  git is required. Install it, or set DEPNIX_GIT.")
			ok = false
		}
	} else {
		ver, verr := gitClient.Version(cmd.Context())
		if verr != nil {
			fmt.Fprintf(out, "git: %s (version check failed: %v)\n", gitClient.Path, verr)
		} else {
			fmt.Fprintf(out, "git: %s (%s)\n", gitClient.Path, ver)
		}
	}

	hasher, err := nix.Detect(DevCfg.NixHash)
	if err != nil {
		fmt.Fprintf(out, "nix-hash: NOT FOUND (%v)\n", err)
		if fix {
			path, perr := promptToolPath("nix-hash")
			if perr != nil {
				return perr
			}
			fixes.NixHash = path
		} else {
			fmt.Fprintln(out, "  nix-hash is required for content hashing. Install Nix, or set DEPNIX_NIX_HASH.")
			ok = false
		}
	} else {
		ver, verr := hasher.Version(cmd.Context())
		if verr != nil {
			fmt.Fprintf(out, "nix-hash: %s (version check failed: %v)\n", hasher.Path, verr)
		} else {
			fmt.Fprintf(out, "nix-hash: %s (%s)\n", hasher.Path, ver)
		}
	}

	if fixes.Git != "" || fixes.NixHash != "" {
		if err := promptSaveDevConfig(fixes); err != nil {
			return err
		}
	}

	if !ok {
		return fmt.Errorf("missing required tools")
	}
	return nil
}

// promptToolPath uses huh to ask for the path to a missing tool.
func promptToolPath(name string) (string, error) {
	var path string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Path to %s binary", name)).
				Value(&path),
		),
	).Run()
	if err != nil {
		return "", fmt.Errorf("tool path prompt failed: %w", err)
	}
	return path, nil
}

// promptSaveDevConfig asks where to persist the collected tool overrides.
func promptSaveDevConfig(cfg *config.DevConfig) error {
	var saveChoice string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Save tool paths for future runs?").
				Options(
					huh.NewOption("Yes, for this project", "project"),
					huh.NewOption("Yes, globally", "global"),
					huh.NewOption("No", "no"),
				).
				Value(&saveChoice),
		),
	).Run()
	if err != nil {
		return fmt.Errorf("save preference prompt failed: %w", err)
	}

	switch saveChoice {
	case "project":
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		return config.WriteLocalDevConfig(wd, cfg)
	case "global":
		return config.WriteGlobalDevConfig(cfg)
	}
	return nil
}
