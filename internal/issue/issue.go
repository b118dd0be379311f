// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"cmp"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
)

type Id int

const (
	PathNotFoundId Id = iota + 1
	UnsupportedFileId
	RuleFileParseErrorId
	DefaultRulesNotFoundId
	ToolNotFoundId
	EntryPointFailedId
	ConfigLoadFailedId
	InvalidRuntimeModeId
	DependencyCycleId
	ShellNotFoundId
	PermissionDeniedId
	BuildFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation for this issue type
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	var extraMd strings.Builder
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			extraMd.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(string(i.mdMsg)+extraMd.String(), stylePath)
}

var (
	render = glamour.Render

	pathNotFoundIssue = &Issue{
		id: PathNotFoundId,
		mdMsg: `
# Path not found!

A file or directory given on the command line does not exist.

## Things you can try:
- Check the spelling of the path
- Paths are relative to the current directory:
~~~
$ makeprojects build ./sub/project
~~~`,
	}

	unsupportedFileIssue = &Issue{
		id: UnsupportedFileId,
		mdMsg: `
# File type not supported!

The file was named explicitly but no handler recognizes it.

## Supported files:
- *.sln, *.vcxproj (msbuild)
- *.xcodeproj (xcodebuild)
- Makefile, *.mk (make)
- build.ninja, *.ninja (ninja)
- prebuild.sh, custombuild.sh, postbuild.sh (embedded shell)
- Doxyfile (doxygen, with --docs)
- build_rules.cue (rule file)

## Things you can try:
- Pass the directory instead and let the walker find projects:
~~~
$ makeprojects build -r .
~~~`,
	}

	ruleFileParseErrorIssue = &Issue{
		id: RuleFileParseErrorId,
		mdMsg: `
# Failed to parse rule file!

A build_rules.cue file could not be loaded. The run continues with the other
rule files in the cascade and exits with code 11.

## Common issues:
- Entry points must be a string or a struct with a 'script' field
- Flags such as GENERIC or CLEAN_CONTINUE must be booleans
- DEPENDENCIES must be a string or a list of strings
- Entry point scripts must be valid shell syntax

## Example:
~~~cue
GENERIC: true
CLEAN_CONTINUE: true
build: "make -C src"
clean: {
	script: "rm -rf out"
	runtime: "virtual"
}
~~~`,
	}

	defaultRulesNotFoundIssue = &Issue{
		id: DefaultRulesNotFoundId,
		mdMsg: `
# Default rule file not found!

The configured default rule file does not exist.

## Things you can try:
- Remove 'default_rules' from your config to use the builtin rules
- Unset the BUILD_RULES environment variable
- Write a fresh default rule file:
~~~
$ makeprojects rules init ~/
~~~`,
	}

	toolNotFoundIssue = &Issue{
		id: ToolNotFoundId,
		mdMsg: `
# Build tool not found!

A project file was found but the tool that builds it is not on PATH.

## Things you can try:
- Install the tool (make, ninja, msbuild, xcodebuild, doxygen)
- Check your PATH:
~~~
$ echo $PATH
~~~
- Use NO_RECURSE or PROCESS_PROJECT_FILES: false in build_rules.cue to skip the directory`,
	}

	entryPointFailedIssue = &Issue{
		id: EntryPointFailedId,
		mdMsg: `
# Entry point failed!

A build, clean, prebuild or postbuild entry point exited with a non-zero status.

## Things you can try:
- Rerun with --verbose to see every outcome
- Exit with $NOT_APPLICABLE (254) to hand the phase to an ancestor rule file
- Preview the plan without running anything:
~~~
$ makeprojects build -n
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your configuration file could not be loaded.

## Things you can try:
- Check the config file for syntax errors
- Show the config file location:
~~~
$ makeprojects config path
~~~

- Write a default configuration:
~~~
$ makeprojects config init
~~~`,
	}

	invalidRuntimeModeIssue = &Issue{
		id: InvalidRuntimeModeId,
		mdMsg: `
# Invalid runtime mode!

The specified runtime mode is not valid.

## Valid runtime modes:
- ` + "`virtual`" + ` - embedded POSIX shell (default, portable)
- ` + "`native`" + ` - the host shell (bash/sh, cmd on Windows)`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

DEPENDENCIES entries form a cycle. Each directory is still processed once per
run, so the cycle does not loop, but the order may not be what you expect.

## Things you can try:
- Inspect the dependency order:
~~~
$ makeprojects rules deps
~~~
- Remove one of the DEPENDENCIES entries in the cycle`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

An entry point asked for the native runtime but no suitable shell was found.

## Things you can try:
- Use the virtual runtime, which needs no host shell:
~~~cue
build: {script: "make", runtime: "virtual"}
~~~
- Install bash or sh and make sure it is on PATH`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

A file or directory could not be read or executed.

## Things you can try:
- Check file permissions:
~~~
$ ls -la
~~~
- Check ownership of the project tree`,
	}

	buildFailedIssue = &Issue{
		id: BuildFailedId,
		mdMsg: `
# Errors detected in the build!

At least one action failed. The exit status is the first failing code.

## Exit codes:
- 10 - structural error (missing path, unsupported file, missing tool)
- 11 - a rule file failed to load
- other - the failing tool or entry point's own exit status

## Things you can try:
- Rerun with --verbose to list every outcome
- Write a machine-readable report:
~~~
$ makeprojects build --report results.json
~~~`,
	}

	issues = map[Id]*Issue{
		pathNotFoundIssue.Id():         pathNotFoundIssue,
		unsupportedFileIssue.Id():      unsupportedFileIssue,
		ruleFileParseErrorIssue.Id():   ruleFileParseErrorIssue,
		defaultRulesNotFoundIssue.Id(): defaultRulesNotFoundIssue,
		toolNotFoundIssue.Id():         toolNotFoundIssue,
		entryPointFailedIssue.Id():     entryPointFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		invalidRuntimeModeIssue.Id():   invalidRuntimeModeIssue,
		dependencyCycleIssue.Id():      dependencyCycleIssue,
		shellNotFoundIssue.Id():        shellNotFoundIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
		buildFailedIssue.Id():          buildFailedIssue,
	}
)

// Values returns every issue ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return cmp.Compare(a.id, b.id)
	})
}

func Get(id Id) *Issue {
	return issues[id]
}
