// SPDX-License-Identifier: MPL-2.0

package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/makeprojects/makeprojects/internal/runtime"
)

// Scheduler runs the work items collected for one directory.
type Scheduler struct {
	s *Session
}

// NewScheduler creates a scheduler recording into s.
func NewScheduler(s *Session) *Scheduler {
	return &Scheduler{s: s}
}

// Run sorts items by priority, keeping discovery order for equal
// priorities, and executes them. In preview mode the items are printed
// instead. It returns true when the run must abort: the context was
// cancelled, or an item failed in fatal mode.
func (sc *Scheduler) Run(ctx context.Context, items []*WorkItem) bool {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority < items[j].Priority
	})

	if sc.s.opts.Preview {
		for _, item := range items {
			fmt.Fprintln(sc.s.preview, item.String())
		}
		return false
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			slog.Warn("run cancelled", "error", err)
			return true
		}

		key, isEntryPoint := item.entryKey()
		if isEntryPoint && sc.s.executed[key] {
			slog.Debug("entry point already executed", "rules_file", key.rulesFile, "entry_point", key.name)
			sc.s.record(outcomeFor(item, runtime.NewExitCodeResult(runtime.NotApplicable)))
			continue
		}

		slog.Debug("running work item", "priority", item.Priority, "source", item.Source, "action", item.Action.String())
		res := sc.execute(ctx, item)
		if res == nil {
			continue
		}
		if isEntryPoint && !res.ExitCode.IsNotApplicable() {
			sc.s.executed[key] = true
		}

		outcome := outcomeFor(item, res)
		sc.s.record(outcome)
		if outcome.Failed() && sc.s.opts.Fatal {
			slog.Debug("aborting on failure", "source", item.Source, "code", int(outcome.Code))
			return true
		}
	}
	return false
}

// execute runs one item, converting a panic into a failing result.
func (sc *Scheduler) execute(ctx context.Context, item *WorkItem) (res *runtime.Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("work item panicked", "source", item.Source, "panic", r)
			res = runtime.NewErrorResult(1, fmt.Errorf("panic: %v", r))
		}
	}()
	return item.Action.Run(ctx, sc.s.streams)
}

func outcomeFor(item *WorkItem, res *runtime.Result) Outcome {
	o := Outcome{
		Code:          res.ExitCode,
		Priority:      item.Priority,
		Source:        item.Source,
		Configuration: item.Configuration,
		Action:        item.Action.String(),
	}
	if res.Error != nil {
		o.Message = res.Error.Error()
	}
	if o.Code == 0 && res.Error != nil {
		o.Code = 1
	}
	return o
}
