// SPDX-License-Identifier: MPL-2.0

// Package zetup loads a Python project's declarative zetup configuration and
// derives packaging metadata from it.
//
// A project directory holds one config file, either zetup.cue or one of the
// legacy INI names zetup.ini, zetup.cfg and zetuprc, next to a VERSION file,
// requirements.txt and any number of requirements.<extra>.txt files.
// [Load] reads all of them into a [Config]; the exports render setup()
// keywords, pyproject.toml, conda build files and tox.ini from it.
//
// [Finder] locates the config of an importable package, first in project
// checkouts and then in the config data installed alongside the package, and
// serves it to [modules.Toplevel] facades as [modules.Metadata].
package zetup
