// SPDX-License-Identifier: MPL-2.0

//go:build windows

package watch

import "syscall"

// stopErrnos end a project watch. ReadDirectoryChangesW fails with these
// when the process is out of handles (4), the project directory handle went
// stale (6) or the change buffer cannot be allocated (8).
var stopErrnos = []syscall.Errno{4, 6, 8}
