// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zetup/zetup/pkg/zetup"
)

func newKeywordsCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "keywords",
		Short: "Print the setup() keyword arguments as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.loadSession(cmd.Context(), flags, metadataOnly)
			if err != nil {
				return err
			}
			data, err := s.project.SetupKeywordsJSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, string(data))
			return nil
		},
	}
}

func newPyprojectCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "pyproject",
		Short: "Print a pyproject.toml for the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.loadSession(cmd.Context(), flags, metadataOnly)
			if err != nil {
				return err
			}
			data, err := s.project.Pyproject()
			if err != nil {
				return err
			}
			_, err = app.stdout.Write(data)
			return err
		},
	}
}

func newCondaCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "conda",
		Short: "Generate the conda recipe",
		Long: `Print the conda meta.yaml of the project. With --write, create
.conda/meta.yaml and .conda/build.sh in the project directory instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.loadSession(cmd.Context(), flags, metadataOnly)
			if err != nil {
				return err
			}
			meta, err := s.project.CondaMeta()
			if err != nil {
				return err
			}
			if !write {
				_, err = app.stdout.Write(meta)
				return err
			}

			dir := filepath.Join(s.project.Dir, zetup.CondaDir)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create conda directory: %w", err)
			}
			if err := writeGenerated(app, filepath.Join(dir, zetup.CondaMetaFile), meta, 0o644); err != nil {
				return err
			}
			return writeGenerated(app, filepath.Join(dir, zetup.CondaBuildFile), zetup.BuildScript(), 0o755)
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write the recipe into "+zetup.CondaDir)
	return cmd
}

func newToxCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "tox",
		Short: "Generate a tox.ini for the declared Python versions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.loadSession(cmd.Context(), flags, metadataOnly)
			if err != nil {
				return err
			}
			data, err := s.project.ToxINI()
			if err != nil {
				return err
			}
			if !write {
				_, err = app.stdout.Write(data)
				return err
			}
			return writeGenerated(app, filepath.Join(s.project.Dir, zetup.ToxFile), data, 0o644)
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, "write "+zetup.ToxFile+" into the project directory")
	return cmd
}

func writeGenerated(app *App, path string, data []byte, perm os.FileMode) error {
	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(app.stdout, "%s Wrote %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
