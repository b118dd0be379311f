// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"fmt"

	"github.com/makeprojects/makeprojects/internal/rules"
	"github.com/makeprojects/makeprojects/internal/runtime"
)

// Outcome is the recorded result of one executed work item.
type Outcome struct {
	Code          runtime.ExitCode `json:"code" yaml:"code" toml:"code"`
	Phase         rules.Phase      `json:"phase" yaml:"phase" toml:"phase"`
	Priority      int              `json:"priority" yaml:"priority" toml:"priority"`
	Source        string           `json:"source" yaml:"source" toml:"source"`
	Configuration string           `json:"configuration,omitempty" yaml:"configuration,omitempty" toml:"configuration,omitempty"`
	Action        string           `json:"action,omitempty" yaml:"action,omitempty" toml:"action,omitempty"`
	Message       string           `json:"message,omitempty" yaml:"message,omitempty" toml:"message,omitempty"`
}

// Failed reports whether the outcome counts as a failure.
func (o Outcome) Failed() bool { return o.Code.IsFailure() }

func (o Outcome) String() string {
	s := fmt.Sprintf("%s %s", o.Code, o.Source)
	if o.Configuration != "" {
		s += " (" + o.Configuration + ")"
	}
	if o.Action != "" {
		s += ": " + o.Action
	}
	if o.Message != "" {
		s += ": " + o.Message
	}
	return s
}
