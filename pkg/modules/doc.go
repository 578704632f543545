// SPDX-License-Identifier: MPL-2.0

// Package modules provides a module registry and namespace facades for
// packages that expose a curated public API.
//
// A [Registry] maps qualified dotted names to [Namespace] values. Module code
// is registered with [Registry.Define] and executed at most once by
// [Registry.Import], which imports parent packages first and then assigns
// the child onto its parent through the parent's write filter.
//
// A module's loader may replace its own registry entry with a facade exactly
// once:
//   - [Package] resolves reads through an alias table, the wrapped module,
//     its own state and finally lazily imported submodules, and keeps
//     incidentally assigned submodules out of its listing.
//   - [Toplevel] additionally annotates the package with project metadata
//     and verifies the project's declared requirements.
//   - [ClassPackage] assembles a [Class] from member modules on first access.
package modules
