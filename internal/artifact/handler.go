// SPDX-License-Identifier: MPL-2.0

package artifact

import (
	"log/slog"

	"github.com/makeprojects/makeprojects/internal/runtime"
)

type (
	// Handler recognizes one kind of artifact and creates its actions.
	Handler interface {
		// Name identifies the handler.
		Name() string
		// Match reports whether the handler accepts path. Only the name is
		// inspected.
		Match(path string) bool
		// BuildActions returns one action per configuration. An empty
		// configuration list selects the tool's default configuration.
		BuildActions(path string, configurations []string, verbose bool) []Action
		// CleanActions mirrors BuildActions for the clean phase. Handlers
		// without cleaning semantics return one NotApplicableAction.
		CleanActions(path string, configurations []string, verbose bool) []Action
	}

	// Registry is an ordered list of handlers.
	Registry struct {
		handlers []Handler
	}

	// Options configures the built-in handlers.
	Options struct {
		// Tools spawns external tools. Nil uses runtime.NewToolRunner.
		Tools *runtime.ToolRunner
		// Scripts runs *.sh artifacts. Nil uses the virtual runtime.
		Scripts runtime.Runtime
		// Documentation enables the doxygen handler.
		Documentation bool
	}
)

// NewRegistry creates a registry querying handlers in the given order.
func NewRegistry(handlers ...Handler) *Registry {
	return &Registry{handlers: handlers}
}

// NewDefaultRegistry creates a registry with every built-in handler.
func NewDefaultRegistry(opts Options) *Registry {
	if opts.Tools == nil {
		opts.Tools = runtime.NewToolRunner()
	}
	if opts.Scripts == nil {
		opts.Scripts = runtime.NewVirtualRuntime()
	}
	r := NewRegistry(
		NewScriptHandler(opts.Scripts),
		NewVisualStudioHandler(opts.Tools),
		NewXcodeHandler(opts.Tools),
		NewMakefileHandler(opts.Tools),
		NewNinjaHandler(opts.Tools),
	)
	if opts.Documentation {
		r.Register(NewDoxygenHandler(opts.Tools))
	}
	return r
}

// Register appends h to the registry.
func (r *Registry) Register(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Handlers returns the registered handlers in order.
func (r *Registry) Handlers() []Handler {
	return append([]Handler(nil), r.handlers...)
}

// Match returns the first handler accepting path, or nil.
func (r *Registry) Match(path string) Handler {
	for _, h := range r.handlers {
		if h.Match(path) {
			slog.Debug("artifact matched", "path", path, "handler", h.Name())
			return h
		}
	}
	return nil
}
