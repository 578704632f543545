// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for zetup.
//
// The commands load a project's zetup config, resolve the Python environment
// it targets and then list, verify or export the project metadata.
package cmd
