// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// An ActionableError carries the failed operation, the resource involved and
// remediation hints. Known failure classes additionally point at a Markdown
// catalog entry that the CLI renders with glamour.
package issue
