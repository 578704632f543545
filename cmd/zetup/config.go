// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zetup/zetup/internal/config"
)

// newConfigCommand creates the `zetup config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage zetup configuration",
		Long: `Manage zetup configuration.

Configuration is stored in:
  - Linux: ~/.config/zetup/config.cue
  - macOS: ~/Library/Application Support/zetup/config.cue
  - Windows: %APPDATA%\zetup\config.cue

ZETUP_* variables from the environment or a project .env file override it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.Config.Load(cmd.Context(), flags.loadOptions())
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			path, err := config.CreateDefaultConfig()
			if err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			cfgPath, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", cfgPath)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, flags, args[0], args[1])
		},
	})

	return cfgCmd
}

func (f *rootFlagValues) loadOptions() config.LoadOptions {
	opts := config.LoadOptions{ConfigFilePath: f.configPath}
	if dir, err := f.project(); err == nil {
		opts.ProjectDir = dir
	}
	return opts
}

func showConfig(ctx context.Context, app *App, flags *rootFlagValues) error {
	opts := flags.loadOptions()
	cfg, err := app.Config.Load(ctx, opts)
	if err != nil {
		return err
	}
	source, err := app.Config.Source(ctx, opts)
	if err != nil {
		return err
	}

	keyStyle := KeyStyle
	valueStyle := SuccessStyle
	out := app.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)
	if source == "" {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), source)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s:\n", keyStyle.Render("python"))
	fmt.Fprintf(out, "  interpreter: %s\n", valueStyle.Render(cfg.Python.Interpreter.String()))
	if cfg.Python.Version == "" {
		fmt.Fprintf(out, "  version: %s\n", SubtitleStyle.Render("(probed)"))
	} else {
		fmt.Fprintf(out, "  version: %s\n", valueStyle.Render(cfg.Python.Version.String()))
	}
	if len(cfg.Python.SitePaths) == 0 {
		fmt.Fprintf(out, "  site_paths: %s\n", SubtitleStyle.Render("(probed)"))
	} else {
		fmt.Fprintln(out, "  site_paths:")
		for _, p := range cfg.Python.SitePaths {
			fmt.Fprintf(out, "    - %s\n", valueStyle.Render(p))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("check"))
	fmt.Fprintf(out, "  strict: %s\n", valueStyle.Render(strconv.FormatBool(cfg.Check.Strict)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))
	return nil
}

func setConfigValue(ctx context.Context, app *App, flags *rootFlagValues, key, value string) error {
	cfg, err := app.Config.Load(ctx, config.LoadOptions{ConfigFilePath: flags.configPath})
	if err != nil {
		return err
	}

	switch key {
	case "python.interpreter":
		cfg.Python.Interpreter = config.InterpreterPath(value)
	case "python.version":
		cfg.Python.Version = config.PythonVersion(value)
	case "python.site_paths":
		cfg.Python.SitePaths = nil
		for p := range strings.SplitSeq(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				cfg.Python.SitePaths = append(cfg.Python.SitePaths, p)
			}
		}
	case "check.strict", "ui.verbose":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		if key == "check.strict" {
			cfg.Check.Strict = b
		} else {
			cfg.UI.Verbose = b
		}
	case "ui.color_scheme":
		cfg.UI.ColorScheme = config.ColorScheme(value)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return errs[0]
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s Set %s = %s\n", SuccessStyle.Render("✓"), key, value)
	return nil
}
