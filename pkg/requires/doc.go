// SPDX-License-Identifier: MPL-2.0

// Package requires parses and verifies package requirement declarations.
//
// Requirements are declared one per line using the standard dependency
// specifier grammar, optionally decorated with an import-name hint or an
// interpreter version gate:
//
//	requests>=2.0                   # import name defaults to the key
//	pyyaml>=5.1 #import yaml        # explicit import name
//	#py3 typing-extensions>=4       # only kept when the runtime tag starts with "3"
//	# anything else                 # comment, silently skipped
//
// The package consolidates the requirement model:
//   - [Requirement]: a single parsed declaration
//   - [Requirements]: an ordered, immutable set of declarations parsed from text
//   - [Extras]: named optional requirement sets with a synthesized "all" entry
//
// # Verification
//
// [Requirements.Check] imports each requirement through an [Importer] and
// compares the installed version against the declared constraints. The version
// is taken from the imported [Module] first and from a [DistributionFinder]
// second. Verification stops at the first failing requirement.
//
// # Merging
//
// [Requirements.Add] concatenates source text and re-parses it. It is not a
// set union: declarations for the same package are all retained, in order.
package requires
