// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestStopsWatching(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want bool
	}{
		{err: syscall.ENOSPC, want: true},
		{err: syscall.EMFILE, want: true},
		{err: syscall.ENFILE, want: true},
		{err: fmt.Errorf("inotify_add_watch requirements.txt: %w", syscall.ENOSPC), want: true},
		{err: syscall.EPERM, want: false},
		{err: syscall.EACCES, want: false},
		{err: errors.New("event queue overflow"), want: false},
	}

	for _, tt := range tests {
		if got := stopsWatching(tt.err); got != tt.want {
			t.Errorf("stopsWatching(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
