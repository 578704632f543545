// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zetup/zetup/pkg/requires"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultInterpreter is the interpreter looked up in PATH when none is configured.
	DefaultInterpreter InterpreterPath = "python3"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidInterpreterPath is returned when an InterpreterPath is empty or whitespace-only.
	ErrInvalidInterpreterPath = errors.New("invalid interpreter path")
	// ErrInvalidPythonVersion is returned when a PythonVersion is not "major.minor".
	ErrInvalidPythonVersion = errors.New("invalid python version")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InterpreterPath is a Python executable, either a path or a name looked up in PATH.
	InterpreterPath string

	// InvalidInterpreterPathError is returned when an InterpreterPath is blank.
	InvalidInterpreterPathError struct {
		Value InterpreterPath
	}

	// PythonVersion is a "major.minor" interpreter version.
	// The zero value means the version is probed from the interpreter.
	PythonVersion string

	// InvalidPythonVersionError is returned when a PythonVersion does not parse.
	InvalidPythonVersionError struct {
		Value PythonVersion
		Err   error
	}

	// InvalidConfigError collects the field-level validation errors of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// Python selects the environment requirements are checked against.
		Python PythonConfig `json:"python" mapstructure:"python"`
		// Check configures requirement verification.
		Check CheckConfig `json:"check" mapstructure:"check"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// PythonConfig selects the Python environment.
	PythonConfig struct {
		Interpreter InterpreterPath `json:"interpreter" mapstructure:"interpreter"`
		// Version gates "#py" requirement lines. Empty means probe the interpreter.
		Version PythonVersion `json:"version" mapstructure:"version"`
		// SitePaths are searched for modules and distributions. Empty means
		// probe the interpreter.
		SitePaths []string `json:"site_paths" mapstructure:"site_paths"`
	}

	// CheckConfig configures requirement verification.
	CheckConfig struct {
		// Strict reports the first unmet requirement as an error instead of a
		// plain false result.
		Strict bool `json:"strict" mapstructure:"strict"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Python.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig and the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// IsValid returns whether the interpreter and version are valid.
func (c PythonConfig) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.Interpreter.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Version.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	return len(errs) == 0, errs
}

// NeedsProbe reports whether the interpreter must be run to fill in the
// version or the site paths.
func (c PythonConfig) NeedsProbe() bool {
	return c.Version == "" || len(c.SitePaths) == 0
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the InterpreterPath.
func (p InterpreterPath) String() string { return string(p) }

// IsValid returns whether the InterpreterPath is non-blank.
func (p InterpreterPath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidInterpreterPathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidInterpreterPathError.
func (e *InvalidInterpreterPathError) Error() string {
	return fmt.Sprintf("invalid interpreter path %q: must be non-empty", e.Value)
}

// Unwrap returns ErrInvalidInterpreterPath for errors.Is() compatibility.
func (e *InvalidInterpreterPathError) Unwrap() error { return ErrInvalidInterpreterPath }

// String returns the string representation of the PythonVersion.
func (v PythonVersion) String() string { return string(v) }

// IsValid returns whether the PythonVersion parses. The zero value is valid.
func (v PythonVersion) IsValid() (bool, []error) {
	if v == "" {
		return true, nil
	}
	if _, err := requires.ParseRuntime(string(v)); err != nil {
		return false, []error{&InvalidPythonVersionError{Value: v, Err: err}}
	}
	return true, nil
}

// Runtime returns the version as a requirement gate runtime.
func (v PythonVersion) Runtime() (requires.Runtime, error) {
	if v == "" {
		return requires.DefaultRuntime, nil
	}
	return requires.ParseRuntime(string(v))
}

// Error implements the error interface for InvalidPythonVersionError.
func (e *InvalidPythonVersionError) Error() string {
	return fmt.Sprintf("invalid python version %q: %v", e.Value, e.Err)
}

// Unwrap returns ErrInvalidPythonVersion for errors.Is() compatibility.
func (e *InvalidPythonVersionError) Unwrap() error { return ErrInvalidPythonVersion }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Python: PythonConfig{
			Interpreter: DefaultInterpreter,
			Version:     "",
			SitePaths:   []string{},
		},
		Check: CheckConfig{
			Strict: true,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
