// SPDX-License-Identifier: MPL-2.0

package runtime

// Result is the outcome of running one script or tool.
type Result struct {
	// ExitCode is the mapped exit status.
	ExitCode ExitCode
	// Error carries infrastructure failures (spawn errors, parse errors).
	Error error
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}

// NewExitCodeResult creates a Result for a process that terminated normally
// with the given status.
func NewExitCodeResult(code ExitCode) *Result {
	return &Result{ExitCode: code}
}

// Success reports whether the run succeeded without error.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Error == nil
}
