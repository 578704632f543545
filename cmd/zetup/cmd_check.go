// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zetup/zetup/internal/watch"
	"github.com/zetup/zetup/pkg/modules"
	"github.com/zetup/zetup/pkg/requires"
)

// ErrRequirementsUnmet is returned by a strict check with failures.
var ErrRequirementsUnmet = errors.New("requirements not met")

type checkFlagValues struct {
	extras   []string
	noStrict bool
	watch    bool
}

type (
	// checkSet is a named group of requirements to verify.
	checkSet struct {
		name string
		reqs *requires.Requirements
	}

	// checkResult is the outcome of one requirement.
	checkResult struct {
		set string
		req *requires.Requirement
		err error
	}
)

func newCheckCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cf := &checkFlagValues{}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify requirements against the installed environment",
		Long: `Verify that every install requirement, and the requirements of the
extras given with --extra, is importable from the configured site-packages
and satisfied by the installed version. The project's declared packages
must exist and an installed distribution of the project itself must match
its VERSION.

Failures exit non-zero unless check.strict is false or --no-strict is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cf.watch {
				return runCheckWatch(cmd.Context(), app, flags, cf)
			}
			return runCheck(cmd.Context(), app, flags, cf)
		},
	}
	cmd.Flags().StringSliceVarP(&cf.extras, "extra", "e", nil, "also check the requirements of these extras (\"all\" for every extra)")
	cmd.Flags().BoolVar(&cf.noStrict, "no-strict", false, "report failures without failing")
	cmd.Flags().BoolVarP(&cf.watch, "watch", "w", false, "re-check whenever the project config changes")
	return cmd
}

func runCheck(ctx context.Context, app *App, flags *rootFlagValues, cf *checkFlagValues) error {
	s, err := app.loadSession(ctx, flags, withEnvironment)
	if err != nil {
		return err
	}
	project := s.project
	env := requires.Environment{Importer: s.site, Distributions: s.site}
	strict := s.settings.Check.Strict && !cf.noStrict

	sets := []checkSet{{name: "install", reqs: project.Requires}}
	for _, extra := range cf.extras {
		reqs, err := project.Extras.Get(extra)
		if err != nil {
			return fmt.Errorf("%w (available: %v)", err, project.Extras.Names())
		}
		sets = append(sets, checkSet{name: "extra " + extra, reqs: reqs})
	}

	var results []checkResult
	for _, set := range sets {
		for _, req := range set.reqs.Records() {
			single := requires.New([]requires.Input{requires.FromRecord(req)},
				requires.WithRequirer(project.Name, project.Version.String()))
			_, err := single.Check(env, true)
			results = append(results, checkResult{set: set.name, req: req, err: err})
		}
	}

	var failures []error
	for _, r := range results {
		if r.err != nil {
			failures = append(failures, r.err)
			fmt.Fprintf(app.stdout, "%s %s %s\n", ErrorStyle.Render("✗"), r.req, SubtitleStyle.Render("("+r.set+")"))
			fmt.Fprintf(app.stdout, "    %s\n", r.err)
			continue
		}
		fmt.Fprintf(app.stdout, "%s %s %s\n", SuccessStyle.Render("✓"), r.req, SubtitleStyle.Render("("+r.set+")"))
	}

	meta, err := project.Metadata(s.site)
	if err != nil {
		failures = append(failures, err)
		fmt.Fprintf(app.stdout, "%s %s\n    %s\n", ErrorStyle.Render("✗"), project.Distribution, err)
	} else if meta.Distribution != nil {
		fmt.Fprintf(app.stdout, "%s %s %s installed at %s\n", SuccessStyle.Render("✓"),
			meta.Distribution.Name, meta.Distribution.Version, meta.Distribution.Location)
	}
	if meta != nil {
		if err := modules.CheckPackages(meta); err != nil {
			failures = append(failures, err)
			fmt.Fprintf(app.stdout, "%s packages\n    %s\n", ErrorStyle.Render("✗"), err)
		}
	}

	if len(failures) == 0 {
		fmt.Fprintf(app.stdout, "\n%s %d requirement(s) of %s satisfied\n",
			SuccessStyle.Render("✓"), len(results), KeyStyle.Render(project.Name))
		return nil
	}

	fmt.Fprintf(app.stdout, "\n%s %d problem(s) in %s\n", ErrorStyle.Render("✗"), len(failures), KeyStyle.Render(project.Name))
	if !strict {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrRequirementsUnmet, errors.Join(failures...))
}

func runCheckWatch(ctx context.Context, app *App, flags *rootFlagValues, cf *checkFlagValues) error {
	dir, err := flags.project()
	if err != nil {
		return err
	}
	recheck := func(ctx context.Context) {
		if err := runCheck(ctx, app, flags, cf); err != nil {
			fmt.Fprintf(app.stderr, "%s %s\n", WarningStyle.Render("!"), formatErrorForDisplay(err, flags.verbose))
		}
	}

	recheck(ctx)
	fmt.Fprintf(app.stdout, "\n%s Watching %s for changes (Ctrl+C to stop)...\n\n",
		KeyStyle.Render("→"), filepath.Base(dir))

	w, err := watch.New(watch.Config{
		BaseDir: dir,
		Logger:  app.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "%s Detected %d change(s). Re-checking...\n", KeyStyle.Render("→"), len(changed))
			recheck(ctx)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	return w.Run(ctx)
}

func newWhichCommand(app *App, flags *rootFlagValues) *cobra.Command {
	return &cobra.Command{
		Use:   "which <module>",
		Short: "Show where a module is imported from",
		Long: `Show the file a dotted module name resolves to in the configured
site-packages, its own __version__ and the installed distribution of the
same name, if any.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.loadSession(cmd.Context(), flags, environmentOnly)
			if err != nil {
				return err
			}
			mod, err := s.site.FindModule(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render("module"), mod.Name)
			fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render("file"), mod.File)
			fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render("kind"), mod.Kind)
			if v, ok := mod.Version(); ok {
				fmt.Fprintf(app.stdout, "%s: %s\n", KeyStyle.Render("version"), v)
			}
			if dist, err := s.site.FindDistribution(args[0]); err == nil {
				fmt.Fprintf(app.stdout, "%s: %s %s\n", KeyStyle.Render("distribution"), dist.Name, dist.Version)
			} else if !errors.Is(err, requires.ErrUnknownDistribution) {
				return err
			}
			return nil
		},
	}
}
