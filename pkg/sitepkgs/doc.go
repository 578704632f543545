// SPDX-License-Identifier: MPL-2.0

// Package sitepkgs inspects an installed Python environment on disk.
//
// An [Environment] is a list of search paths, typically an interpreter's
// site-packages directories. It imports modules by locating their source or
// extension files, reading a literal __version__ assignment from the source,
// and finds distribution metadata in *.dist-info and *.egg-info entries. It
// satisfies both requires.Importer and requires.DistributionFinder, so a
// requirement check can run against a real environment without starting the
// interpreter.
package sitepkgs
