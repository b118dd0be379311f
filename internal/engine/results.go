// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"
	"io"
	"slices"

	"github.com/google/uuid"
)

const (
	// MessageFailure is printed when any outcome failed.
	MessageFailure = "Errors detected in the build."
	// MessageSuccess is printed in verbose mode when nothing failed.
	MessageSuccess = "Build is successful!"
)

type (
	// Results is the ordered outcome log of a run.
	Results struct {
		runID    string
		outcomes []Outcome
	}

	// Theme styles rendered results.
	Theme interface {
		Failure(s string) string
		Success(s string) string
		Muted(s string) string
	}

	// PlainTheme renders without styling.
	PlainTheme struct{}
)

func (PlainTheme) Failure(s string) string { return s }
func (PlainTheme) Success(s string) string { return s }
func (PlainTheme) Muted(s string) string   { return s }

// NewResults creates an empty log tagged with a fresh run id.
func NewResults() *Results {
	return &Results{runID: uuid.NewString()}
}

// RunID identifies the run in logs and reports.
func (r *Results) RunID() string { return r.runID }

// Add appends an outcome.
func (r *Results) Add(o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

// Outcomes returns a copy of the log.
func (r *Results) Outcomes() []Outcome {
	return slices.Clone(r.outcomes)
}

// Len returns the number of recorded outcomes.
func (r *Results) Len() int { return len(r.outcomes) }

// ExitCode returns the code of the first failing outcome, or 0.
func (r *Results) ExitCode() int {
	for _, o := range r.outcomes {
		if o.Failed() {
			return int(o.Code)
		}
	}
	return 0
}

// Failed reports whether any outcome failed.
func (r *Results) Failed() bool {
	return r.ExitCode() != 0
}

// Render prints the outcome log when a failure occurred or verbose is set,
// followed by the summary line. A successful quiet run prints nothing.
func (r *Results) Render(w io.Writer, verbose bool, theme Theme) {
	if theme == nil {
		theme = PlainTheme{}
	}
	failed := r.Failed()
	if !failed && !verbose {
		return
	}
	for _, o := range r.outcomes {
		line := o.String()
		switch {
		case o.Failed():
			line = theme.Failure(line)
		case o.Code.IsNotApplicable():
			line = theme.Muted(line)
		}
		fmt.Fprintln(w, line)
	}
	if failed {
		fmt.Fprintln(w, theme.Failure(MessageFailure))
		return
	}
	fmt.Fprintln(w, theme.Success(MessageSuccess))
}
