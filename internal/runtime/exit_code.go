// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"fmt"
	"strconv"
)

const (
	// NotApplicable marks an outcome that had no effect for the phase. It is
	// never counted as a failure.
	NotApplicable ExitCode = -1

	// NotApplicableStatus is the process exit status an entry-point script
	// uses to report "not applicable". Scripts see it as $NOT_APPLICABLE.
	NotApplicableStatus = 254

	// ExitStructural is recorded when an explicitly named path is neither a
	// directory nor a recognized artifact, or a required tool is missing.
	ExitStructural ExitCode = 10

	// ExitLoad is recorded when a rule file exists but cannot be loaded.
	ExitLoad ExitCode = 11
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

type (
	// ExitCode is the status of one executed work item. Values 0-255 are
	// process exit statuses; NotApplicable is the only negative value allowed.
	ExitCode int

	// InvalidExitCodeError is returned when an ExitCode is outside 0-255 and
	// is not NotApplicable.
	InvalidExitCodeError struct {
		Value ExitCode
	}
)

// Error implements the error interface.
func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("invalid exit code %d (must be in range 0-255)", e.Value)
}

// Unwrap returns ErrInvalidExitCode for errors.Is.
func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate returns an error if the ExitCode is out of range.
func (c ExitCode) Validate() error {
	if c == NotApplicable {
		return nil
	}
	if c < 0 || c > 255 {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether the code is zero.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// IsNotApplicable reports whether the code is the NotApplicable sentinel.
func (c ExitCode) IsNotApplicable() bool { return c == NotApplicable }

// IsFailure reports whether the code counts as a failure.
func (c ExitCode) IsFailure() bool { return c != 0 && c != NotApplicable }

// String returns the decimal representation, or "n/a" for NotApplicable.
func (c ExitCode) String() string {
	if c == NotApplicable {
		return "n/a"
	}
	return strconv.Itoa(int(c))
}

// FromStatus converts a raw process exit status into an ExitCode, mapping
// NotApplicableStatus to NotApplicable.
func FromStatus(status int) ExitCode {
	if status == NotApplicableStatus {
		return NotApplicable
	}
	return ExitCode(status)
}
