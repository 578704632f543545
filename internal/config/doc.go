// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/zetup/config.cue (or XDG equivalent on Linux,
// ~/Library/Application Support/zetup/config.cue on macOS, %APPDATA%\zetup\config.cue
// on Windows). It selects the Python interpreter whose environment requirements are
// checked against, the strictness of checks and UI settings.
//
// Values are layered: built-in defaults, the CUE file (validated against the embedded
// config_schema.cue), ZETUP_* entries of a project .env file, and finally ZETUP_*
// variables of the process environment.
package config
