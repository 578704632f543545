// SPDX-License-Identifier: MPL-2.0

//go:build windows

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
		{err: syscall.Errno(4), want: true},
		{err: syscall.Errno(6), want: true},
		{err: syscall.Errno(8), want: true},
		{err: fmt.Errorf("ReadDirectoryChanges zetup.cue: %w", syscall.Errno(6)), want: true},
		{err: syscall.Errno(2), want: false},
		{err: syscall.Errno(5), want: false},
		{err: errors.New("event queue overflow"), want: false},
	}

	for _, tt := range tests {
		if got := stopsWatching(tt.err); got != tt.want {
			t.Errorf("stopsWatching(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
