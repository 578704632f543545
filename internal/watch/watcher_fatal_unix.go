// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import "syscall"

// stopErrnos end a project watch: the inotify watch budget or the file
// descriptor limits ran out, so requirement files can no longer be tracked.
var stopErrnos = []syscall.Errno{syscall.ENOSPC, syscall.EMFILE, syscall.ENFILE}
