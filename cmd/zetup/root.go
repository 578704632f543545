// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/zetup/zetup/internal/config"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by all commands.
type rootFlagValues struct {
	verbose    bool
	configPath string
	projectDir string
}

// NewRootCommand builds the zetup command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   "zetup",
		Short: "Python project metadata from a single config",
		Long: TitleStyle.Render("zetup") + SubtitleStyle.Render(" - Python project metadata from a single config") + `

zetup reads a project's zetup.cue (or legacy zetup.ini) together with its
VERSION and requirements*.txt files, checks the requirements against an
installed Python environment and exports the metadata for setuptools,
pyproject.toml, conda and tox.

` + SubtitleStyle.Render("Examples:") + `
  zetup init demo              Create a zetup.cue for the project demo
  zetup requires               List the install requirements
  zetup requires --extra all   List every optional requirement
  zetup check                  Verify requirements against site-packages
  zetup check --watch          Re-check whenever the project files change
  zetup pyproject              Print a pyproject.toml
  zetup config show            Show the current configuration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if flags.verbose {
				app.logger.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/zetup/config.cue)")
	rootCmd.PersistentFlags().StringVarP(&flags.projectDir, "project", "p", "", "project directory (default is the working directory)")

	rootCmd.AddCommand(
		newInitCommand(app, flags),
		newRequiresCommand(app, flags),
		newExtrasCommand(app, flags),
		newCheckCommand(app, flags),
		newWhichCommand(app, flags),
		newKeywordsCommand(app, flags),
		newPyprojectCommand(app, flags),
		newCondaCommand(app, flags),
		newToxCommand(app, flags),
		newConfigCommand(app, flags),
	)

	wrapErrors(rootCmd, app, flags)
	return rootCmd
}

// wrapErrors makes every RunE return an *ExitError whose message includes
// the suggestions of actionable errors.
func wrapErrors(cmd *cobra.Command, app *App, flags *rootFlagValues) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) error {
			err := run(c, args)
			var exitErr *ExitError
			if err == nil || errors.As(err, &exitErr) {
				return err
			}
			if flags.verbose {
				app.renderIssue(app.stderr, err, app.colorScheme(c.Context(), flags))
			}
			return &ExitError{Code: 1, Err: &displayError{err: err, verbose: flags.verbose}}
		}
	}
	for _, sub := range cmd.Commands() {
		wrapErrors(sub, app, flags)
	}
}

// colorScheme returns the configured scheme for rendering, or auto.
func (a *App) colorScheme(ctx context.Context, flags *rootFlagValues) config.ColorScheme {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return config.ColorSchemeAuto
	}
	return cfg.UI.ColorScheme
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
