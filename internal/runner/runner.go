package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os/exec"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mmr-tortoise/webui-deploy/internal/model"
)

// Runner executes one external command and reports its outcome.
// Implementations must always return a definite result; they never
// panic and never return an error value.
type Runner interface {
	Run(ctx context.Context, cmd model.Command) model.CommandResult
}

// Func adapts an ordinary function to the Runner interface.
type Func func(ctx context.Context, cmd model.Command) model.CommandResult

// Run calls f(ctx, cmd).
func (f Func) Run(ctx context.Context, cmd model.Command) model.CommandResult {
	return f(ctx, cmd)
}

// ExecRunner runs commands as child processes via os/exec.
//
// Each call is synchronous: it blocks until the process exits. There are
// no retries and no timeouts; the only way to interrupt a call is to
// cancel ctx.
type ExecRunner struct {
	log logrus.FieldLogger
}

// NewExecRunner creates an ExecRunner that reports progress to log.
// A nil log discards all output.
func NewExecRunner(log logrus.FieldLogger) *ExecRunner {
	if log == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		log = discard
	}
	return &ExecRunner{log: log}
}

// Run spawns cmd, waits for it to finish, and classifies the result.
//
// Stdout and stderr are captured separately. On success both are logged
// when non-empty, since container runtimes report pull progress on stderr.
// On a non-zero exit the command, return code and captured output are
// logged at error level and returned to the caller.
func (r *ExecRunner) Run(ctx context.Context, cmd model.Command) (result model.CommandResult) {
	result.Command = cmd
	entry := r.log.WithField("command", cmd.String())

	// Nothing below may escape as a panic.
	defer func() {
		if p := recover(); p != nil {
			result = faultResult(cmd, fmt.Sprintf("unexpected error running %q: %v", cmd.String(), p))
			logFault(entry, result.Description)
		}
	}()

	if len(cmd) == 0 || cmd.Program() == "" {
		result = faultResult(cmd, "cannot execute an empty command")
		entry.Error(result.Description)
		return result
	}
	if ctx == nil {
		ctx = context.Background()
	}

	entry.Info("executing")

	var stdout, stderr bytes.Buffer
	c := exec.CommandContext(ctx, cmd.Program(), cmd.Args()...)
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		result.Outcome = model.OutcomeSuccess
		result.ExitCode = 0
		logOutput(entry, result)
		entry.Info("command executed successfully")

	case ctx.Err() != nil:
		// The process was killed because the context ended; its exit
		// status says nothing about the command itself.
		result.Outcome = model.OutcomeFault
		result.ExitCode = -1
		result.Description = fmt.Sprintf("command %q interrupted: %v", cmd.String(), ctx.Err())
		entry.WithField("error", ctx.Err()).Error("command interrupted")

	case errors.As(err, &exitErr):
		result.Outcome = model.OutcomeExitFailure
		result.ExitCode = exitErr.ExitCode()
		fields := logrus.Fields{"return_code": result.ExitCode}
		if s := strings.TrimSpace(result.Stdout); s != "" {
			fields["stdout"] = s
		}
		if s := strings.TrimSpace(result.Stderr); s != "" {
			fields["stderr"] = s
		}
		entry.WithFields(fields).Error("error executing command")

	case errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist):
		result.Outcome = model.OutcomeNotFound
		result.ExitCode = -1
		result.Description = fmt.Sprintf(
			"the command %q was not found; please ensure it is installed and in your system's PATH",
			cmd.Program(),
		)
		entry.Error(result.Description)

	default:
		result.Outcome = model.OutcomeFault
		result.ExitCode = -1
		result.Description = fmt.Sprintf("unexpected error running %q: %v", cmd.String(), err)
		entry.WithError(err).Error("an unexpected error occurred")
	}

	return result
}

// logOutput logs the captured streams of a successful command.
func logOutput(entry logrus.FieldLogger, result model.CommandResult) {
	if s := strings.TrimSpace(result.Stdout); s != "" {
		entry.WithField("stdout", s).Info("output")
	}
	if s := strings.TrimSpace(result.Stderr); s != "" {
		entry.WithField("stderr", s).Info("standard error output")
	}
}

func faultResult(cmd model.Command, description string) model.CommandResult {
	return model.CommandResult{
		Command:     cmd,
		Outcome:     model.OutcomeFault,
		ExitCode:    -1,
		Description: description,
	}
}

// logFault reports a contained panic. The logger may itself be what
// panicked, so a second panic here is dropped and the result stands.
func logFault(entry *logrus.Entry, description string) {
	defer func() { _ = recover() }()
	entry.WithField("error", description).Error("an unexpected error occurred")
}
