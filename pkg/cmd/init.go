package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/depnix/depnix/pkg/config"
	"github.com/depnix/depnix/pkg/emit"
	"github.com/depnix/depnix/pkg/project"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new depnix project",
		Long:  "Creates a depnix.toml config and configures .gitignore entries.",
		RunE:  runInit,
		// init does not need dev config resolution; skip the root PersistentPreRunE.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}

	name := project.InferName(wd)

	emitters, err := promptEmitters()
	if err != nil {
		return err
	}

	if err := project.Init(wd, name, emitters); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", project.ManifestFile)

	// Prompt for generated files to gitignore.
	selected, err := promptGeneratedFiles()
	if err != nil {
		return err
	}

	gitignoreEntries := append([]string{config.LocalConfigFile}, selected...)
	added, err := project.EnsureGitignore(wd, gitignoreEntries)
	if err != nil {
		return err
	}
	for _, entry := range added {
		fmt.Fprintf(cmd.OutOrStdout(), "Added %s to .gitignore\n", entry)
	}

	return nil
}

// promptEmitters uses huh to present a multi-select of registered emitters.
// An empty selection means all emitters run.
func promptEmitters() ([]string, error) {
	names := emit.RegisteredEmitters()
	options := make([]huh.Option[string], len(names))
	for i, name := range names {
		options[i] = huh.NewOption(name, name)
	}

	var selected []string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select emitters to run (empty = all)").
				Options(options...).
				Value(&selected),
		),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}

// promptGeneratedFiles uses huh to present a multi-select of generated
// output files to add to .gitignore.
func promptGeneratedFiles() ([]string, error) {
	options := make([]huh.Option[string], len(project.GeneratedFiles))
	for i, f := range project.GeneratedFiles {
		options[i] = huh.NewOption(f, f)
	}

	var selected []string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Add generated files to .gitignore?").
				Options(options...).
				Value(&selected),
		),
	).Run()
	if err != nil {
		return nil, fmt.Errorf("prompt failed: %w", err)
	}

	return selected, nil
}
