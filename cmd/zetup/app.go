// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/zetup/zetup/internal/config"
	"github.com/zetup/zetup/internal/issue"
	"github.com/zetup/zetup/internal/pyenv"
	"github.com/zetup/zetup/pkg/requires"
	"github.com/zetup/zetup/pkg/sitepkgs"
	"github.com/zetup/zetup/pkg/zetup"
)

type (
	// ProbeFunc asks an interpreter for its version and site-packages paths.
	ProbeFunc func(ctx context.Context, interpreter string) (*pyenv.Info, error)

	// App wires CLI services and shared dependencies. All Cobra handlers
	// receive an App reference.
	App struct {
		Config config.Provider
		Probe  ProbeFunc
		stdout io.Writer
		stderr io.Writer
		logger *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Probe  ProbeFunc
		Stdout io.Writer
		Stderr io.Writer
	}

	// session is a loaded project together with the environment it targets.
	session struct {
		settings *config.Config
		project  *zetup.Config
		runtime  requires.Runtime
		site     *sitepkgs.Environment
	}

	// sessionMode selects how strictly the Python environment is resolved.
	sessionMode int
)

const (
	// metadataOnly falls back to the default runtime when the interpreter
	// cannot be probed.
	metadataOnly sessionMode = iota
	// withEnvironment requires a usable interpreter or configured site paths.
	withEnvironment
	// environmentOnly is withEnvironment without loading a project.
	environmentOnly
)

// NewApp builds an App from deps.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config: deps.Config,
		Probe:  deps.Probe,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Probe == nil {
		app.Probe = pyenv.Probe
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	app.logger = log.NewWithOptions(app.stderr, log.Options{Prefix: "zetup"})
	return app
}

// loadSession loads the app config and, unless mode is environmentOnly, the
// project in flags.projectDir. It resolves the interpreter version and site
// paths.
func (a *App) loadSession(ctx context.Context, flags *rootFlagValues, mode sessionMode) (*session, error) {
	dir, err := flags.project()
	if err != nil {
		return nil, err
	}

	settings, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath, ProjectDir: dir})
	if err != nil {
		return nil, err
	}
	if flags.verbose || settings.UI.Verbose {
		a.logger.SetLevel(log.DebugLevel)
	}

	s := &session{settings: settings}
	paths, err := a.resolvePython(ctx, s, mode)
	if err != nil {
		return nil, err
	}

	if mode != environmentOnly {
		project, err := zetup.Load(dir, zetup.WithRuntime(s.runtime), zetup.WithLogger(a.logger))
		if err != nil {
			return nil, projectLoadError(dir, err)
		}
		s.project = project
		a.logger.Debug("loaded project", "name", project.Name, "version", project.Version, "file", project.File)
	}

	if s.site, err = sitepkgs.New(paths); err != nil {
		return nil, err
	}
	return s, nil
}

// resolvePython fills s.runtime and returns the site paths. Configured values
// win; the interpreter is only probed for what the config leaves empty.
func (a *App) resolvePython(ctx context.Context, s *session, mode sessionMode) ([]string, error) {
	py := s.settings.Python
	rt, err := py.Version.Runtime()
	if err != nil {
		return nil, err
	}
	s.runtime = rt
	paths := py.SitePaths
	if !py.NeedsProbe() {
		return paths, nil
	}

	info, err := a.Probe(ctx, py.Interpreter.String())
	if err != nil {
		if mode == metadataOnly {
			a.logger.Debug("interpreter probe failed, using defaults", "interpreter", py.Interpreter, "err", err)
			return paths, nil
		}
		return nil, issue.NewErrorContext().
			WithOperation("probe python interpreter").
			WithResource(py.Interpreter.String()).
			WithSuggestion("Set python.interpreter in the zetup config or ZETUP_PYTHON_INTERPRETER").
			WithSuggestion("Set python.version and python.site_paths to skip probing").
			WithIssue(issue.InterpreterNotFoundId).
			Wrap(err).
			BuildError()
	}
	a.logger.Debug("probed interpreter", "executable", info.Executable, "version", info.FullVersion)

	if py.Version == "" {
		s.runtime = info.Runtime
	}
	if len(paths) == 0 {
		paths = info.SitePaths
	}
	return paths, nil
}

func projectLoadError(dir string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("load project config").
		WithResource(dir).
		Wrap(err)
	switch {
	case errors.Is(err, zetup.ErrConfigNotFound):
		ctx.WithIssue(issue.ConfigNotFoundId).
			WithSuggestion("Run zetup in the project directory or pass --project")
	case errors.Is(err, os.ErrPermission):
		ctx.WithIssue(issue.PermissionDeniedId)
	default:
		ctx.WithIssue(issue.ConfigParseErrorId).
			WithSuggestion("Check the config file against the documented keys")
	}
	return ctx.BuildError()
}

func (f *rootFlagValues) project() (string, error) {
	dir := f.projectDir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determine working directory: %w", err)
		}
		dir = wd
	}
	return filepath.Abs(dir)
}
