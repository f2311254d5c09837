// Package runnertest provides a scripted runner.Runner for tests that must
// not spawn real container-runtime processes.
package runnertest

import (
	"context"
	"sync"

	"github.com/mmr-tortoise/webui-deploy/internal/model"
)

// Fake is a runner.Runner that records every command it receives and
// answers with scripted results. Responses are keyed by the first argument
// after the program name ("stop", "rm", "pull", "run", "--version").
// Commands without a scripted response succeed with empty output.
type Fake struct {
	mu        sync.Mutex
	responses map[string]model.CommandResult
	calls     []model.Command
}

// NewFake creates a Fake where every command succeeds.
func NewFake() *Fake {
	return &Fake{responses: make(map[string]model.CommandResult)}
}

// On scripts the result returned for commands whose first argument is
// subcommand. Command in the returned result is always filled in from
// the actual call.
func (f *Fake) On(subcommand string, result model.CommandResult) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[subcommand] = result
	return f
}

// FailWith scripts a non-zero exit for subcommand.
func (f *Fake) FailWith(subcommand string, code int, stderr string) *Fake {
	return f.On(subcommand, model.CommandResult{
		Outcome:  model.OutcomeExitFailure,
		ExitCode: code,
		Stderr:   stderr,
	})
}

// NotFound scripts a missing executable for subcommand.
func (f *Fake) NotFound(subcommand string) *Fake {
	return f.On(subcommand, model.CommandResult{
		Outcome:     model.OutcomeNotFound,
		ExitCode:    -1,
		Description: "the command \"docker\" was not found",
	})
}

// Run records cmd and returns the scripted result.
func (f *Fake) Run(_ context.Context, cmd model.Command) model.CommandResult {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, append(model.Command(nil), cmd...))

	key := ""
	if args := cmd.Args(); len(args) > 0 {
		key = args[0]
	}
	result, ok := f.responses[key]
	if !ok {
		result = model.CommandResult{Outcome: model.OutcomeSuccess}
	}
	result.Command = cmd
	return result
}

// Calls returns a copy of every command received so far, in order.
func (f *Fake) Calls() []model.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Command(nil), f.calls...)
}

// Subcommands returns the first argument of every received command,
// e.g. ["--version", "stop", "rm", "pull", "run"].
func (f *Fake) Subcommands() []string {
	var out []string
	for _, c := range f.Calls() {
		sub := ""
		if args := c.Args(); len(args) > 0 {
			sub = args[0]
		}
		out = append(out, sub)
	}
	return out
}

// Called reports whether any command with the given subcommand was run.
func (f *Fake) Called(subcommand string) bool {
	for _, s := range f.Subcommands() {
		if s == subcommand {
			return true
		}
	}
	return false
}
