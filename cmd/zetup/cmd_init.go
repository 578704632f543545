// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zetup/zetup/internal/issue"
	"github.com/zetup/zetup/pkg/requires"
	"github.com/zetup/zetup/pkg/zetup"
)

type initFlagValues struct {
	format      string
	description string
	author      string
	url         string
	license     string
	python      []string
}

func newInitCommand(app *App, flags *rootFlagValues) *cobra.Command {
	f := &initFlagValues{}

	cmd := &cobra.Command{
		Use:   "init <name>",
		Short: "Create a project config",
		Long: `Create a skeleton project config for the project <name> in the project
directory. The default format is zetup.cue; --format ini writes a legacy
zetuprc instead. Fill in the remaining keys afterwards.

An existing zetup config is never overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := flags.project()
			if err != nil {
				return err
			}
			skel := zetup.Skeleton{
				Name:        args[0],
				Description: f.description,
				Author:      f.author,
				URL:         f.url,
				License:     f.license,
				Python:      f.python,
			}
			path, err := zetup.WriteSkeleton(dir, skel, zetup.SkeletonFormat(f.format))
			if errors.Is(err, zetup.ErrConfigExists) {
				return issue.NewErrorContext().
					WithOperation("create project config").
					WithResource(dir).
					WithSuggestion("Edit the existing config instead").
					Wrap(err).
					BuildError()
			}
			if err != nil {
				return err
			}
			app.logger.Debug("wrote project config", "path", path, "format", f.format)
			fmt.Fprintf(app.stdout, "%s Created %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.format, "format", zetup.FormatCUE.String(), "config format (cue or ini)")
	cmd.Flags().StringVar(&f.description, "description", "", "one-line project description")
	cmd.Flags().StringVar(&f.author, "author", "Author Name <author@example.com>", "author as 'Name <email>'")
	cmd.Flags().StringVar(&f.url, "url", "", "project homepage")
	cmd.Flags().StringVar(&f.license, "license", "", "license name")
	cmd.Flags().StringSliceVar(&f.python, "python", []string{requires.DefaultRuntime.String()}, "supported python versions")
	return cmd
}
