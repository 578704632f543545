// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zetup/zetup/pkg/requires"
)

func newRequiresCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var extra string

	cmd := &cobra.Command{
		Use:   "requires",
		Short: "List the project's requirements",
		Long: `List the install requirements of the project, one per line in
canonical form. With --extra, list the requirements of an optional extra
instead; "all" combines every extra.

Lines gated on another Python version are left out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.loadSession(cmd.Context(), flags, metadataOnly)
			if err != nil {
				return err
			}
			reqs := s.project.Requires
			if extra != "" {
				if reqs, err = s.project.Extras.Get(extra); err != nil {
					return fmt.Errorf("%w (available: %v)", err, s.project.Extras.Names())
				}
			}
			printRequirements(app, reqs)
			return nil
		},
	}
	cmd.Flags().StringVarP(&extra, "extra", "e", "", "list the requirements of this extra (\"all\" for every extra)")
	return cmd
}

func newExtrasCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "extras",
		Short: "List the project's optional extras",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.loadSession(cmd.Context(), flags, metadataOnly)
			if err != nil {
				return err
			}
			extras := s.project.Extras
			if extras.Len() == 0 {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(no extras)"))
				return nil
			}
			for i, name := range extras.Names() {
				if i > 0 {
					fmt.Fprintln(app.stdout)
				}
				fmt.Fprintln(app.stdout, KeyStyle.Render("["+name+"]"))
				reqs, _ := extras.Get(name)
				printRequirements(app, reqs)
			}
			return nil
		},
	}
}

func printRequirements(app *App, reqs *requires.Requirements) {
	for _, req := range reqs.Records() {
		fmt.Fprintln(app.stdout, req.String())
	}
}
