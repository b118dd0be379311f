// SPDX-License-Identifier: MPL-2.0

//go:build !windows

package watch

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsFatalFsnotifyError(t *testing.T) {
	t.Parallel()

	for _, errno := range []syscall.Errno{syscall.ENOSPC, syscall.EMFILE, syscall.ENFILE} {
		if !isFatalFsnotifyError(errno) {
			t.Errorf("%v should stop the watcher", errno)
		}
		if !isFatalFsnotifyError(fmt.Errorf("inotify_add_watch: %w", errno)) {
			t.Errorf("wrapped %v should stop the watcher", errno)
		}
	}

	for _, err := range []error{syscall.EPERM, syscall.EACCES, syscall.ENOENT, errors.New("queue overflow")} {
		if isFatalFsnotifyError(err) {
			t.Errorf("%v should be logged, not fatal", err)
		}
	}
}
