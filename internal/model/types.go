package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Outcome classifies how an external command invocation ended.
// Every invocation ends in exactly one of these states:
//
//	success       → process exited with status zero
//	exit-failure  → process ran and exited with a non-zero status
//	not-found     → the program could not be located at all
//	fault         → anything else (spawn error, I/O error, panic)
type Outcome string

const (
	// OutcomeSuccess indicates the process exited with status zero.
	OutcomeSuccess Outcome = "success"

	// OutcomeExitFailure indicates the process ran but exited non-zero.
	// ExitCode, Stdout and Stderr carry the details.
	OutcomeExitFailure Outcome = "exit-failure"

	// OutcomeNotFound indicates the program is not installed or not on PATH.
	OutcomeNotFound Outcome = "not-found"

	// OutcomeFault indicates an unexpected failure during invocation.
	// Description holds the underlying error text.
	OutcomeFault Outcome = "fault"
)

// String returns the string representation of Outcome.
func (o Outcome) String() string {
	return string(o)
}

// IsValid checks whether the Outcome value is one of the predefined states.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeSuccess, OutcomeExitFailure, OutcomeNotFound, OutcomeFault:
		return true
	default:
		return false
	}
}

// Command is an ordered sequence of tokens for one external invocation:
// the program name followed by its arguments.
type Command []string

// NewCommand builds a Command from arbitrary parts, coercing each one to
// its textual form with fmt.Sprint. This lets callers pass port numbers
// and other non-string values directly.
func NewCommand(parts ...interface{}) Command {
	cmd := make(Command, 0, len(parts))
	for _, p := range parts {
		cmd = append(cmd, fmt.Sprint(p))
	}
	return cmd
}

// Program returns the executable name, or "" for an empty command.
func (c Command) Program() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the arguments after the program name.
func (c Command) Args() []string {
	if len(c) <= 1 {
		return nil
	}
	return c[1:]
}

// String joins the tokens with single spaces, matching how the command
// is shown in progress output.
func (c Command) String() string {
	return strings.Join(c, " ")
}

// CommandResult is the outcome of a single external invocation.
// It is created per call, consumed by the caller for logging and
// branching, and then discarded.
type CommandResult struct {
	// Command is the invocation that produced this result.
	Command Command `json:"command"`

	// Outcome is the tagged classification of how the invocation ended.
	Outcome Outcome `json:"outcome"`

	// ExitCode is the process return code. Only meaningful for
	// OutcomeSuccess (always 0) and OutcomeExitFailure.
	ExitCode int `json:"exitCode"`

	// Stdout is the captured standard output.
	Stdout string `json:"stdout,omitempty"`

	// Stderr is the captured standard error. Container runtimes write
	// progress to stderr even on success, so a non-empty Stderr does not
	// imply failure.
	Stderr string `json:"stderr,omitempty"`

	// Description is a human-readable explanation for not-found and
	// fault outcomes.
	Description string `json:"description,omitempty"`
}

// Success reports whether the invocation exited with status zero.
func (r CommandResult) Success() bool {
	return r.Outcome == OutcomeSuccess
}

// Summary returns a one-line description of the result suitable for
// error messages.
func (r CommandResult) Summary() string {
	switch r.Outcome {
	case OutcomeSuccess:
		return fmt.Sprintf("%q succeeded", r.Command.String())
	case OutcomeExitFailure:
		msg := fmt.Sprintf("%q exited with code %d", r.Command.String(), r.ExitCode)
		if s := strings.TrimSpace(r.Stderr); s != "" {
			msg += ": " + s
		}
		return msg
	default:
		return r.Description
	}
}

// Config holds the deployment parameters. A Config is assembled once at
// startup (defaults, optionally overridden by a config file) and is
// treated as read-only afterwards: it is passed by value.
type Config struct {
	// Runtime is the container runtime CLI binary (e.g. "docker").
	Runtime string `json:"runtime" yaml:"runtime"`

	// ImageName is the image repository without a tag.
	ImageName string `json:"imageName" yaml:"imageName"`

	// ImageTag selects the image variant. Tags containing "ollama"
	// select the bundled variant.
	ImageTag string `json:"imageTag" yaml:"imageTag"`

	// ContainerName is the name given to the running container.
	ContainerName string `json:"containerName" yaml:"containerName"`

	// HostPort is the port published on the host (1-65535).
	HostPort int `json:"hostPort" yaml:"hostPort"`

	// ContainerPort is the application port inside the container.
	ContainerPort int `json:"containerPort" yaml:"containerPort"`

	// DataVolume is the named volume holding application data
	// (chats, settings).
	DataVolume string `json:"dataVolume" yaml:"dataVolume"`

	// ModelVolume is the named volume holding model data. Only mounted
	// for the bundled variant.
	ModelVolume string `json:"modelVolume" yaml:"modelVolume"`
}

// Default configuration values, identical to the values the installer
// has always shipped with.
const (
	DefaultRuntime       = "docker"
	DefaultImageName     = "ghcr.io/open-webui/open-webui"
	DefaultImageTag      = "ollama"
	DefaultContainerName = "open-webui"
	DefaultHostPort      = 3000
	DefaultContainerPort = 8080
	DefaultDataVolume    = "open-webui-data"
	DefaultModelVolume   = "ollama-data"
)

// DefaultConfig returns the built-in deployment configuration.
func DefaultConfig() Config {
	return Config{
		Runtime:       DefaultRuntime,
		ImageName:     DefaultImageName,
		ImageTag:      DefaultImageTag,
		ContainerName: DefaultContainerName,
		HostPort:      DefaultHostPort,
		ContainerPort: DefaultContainerPort,
		DataVolume:    DefaultDataVolume,
		ModelVolume:   DefaultModelVolume,
	}
}

// objectNameRegex matches container and volume names accepted by the
// Docker CLI: an alphanumeric first character followed by alphanumerics,
// underscores, dots or hyphens.
var objectNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidateObjectName checks a container or volume name. kind is used
// only in the error message ("container", "data volume", ...).
func ValidateObjectName(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%s name must not be empty", kind)
	}
	if !objectNameRegex.MatchString(name) {
		return fmt.Errorf("invalid %s name %q: must start with an alphanumeric character and contain only alphanumerics, '_', '.' or '-'", kind, name)
	}
	return nil
}

// Validate checks every field of the Config. Image reference syntax is
// validated separately by the docker package, which owns reference parsing.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Runtime) == "" {
		return fmt.Errorf("runtime binary must not be empty")
	}
	if c.ImageName == "" {
		return fmt.Errorf("image name must not be empty")
	}
	if c.ImageTag == "" {
		return fmt.Errorf("image tag must not be empty")
	}
	if err := ValidateObjectName("container", c.ContainerName); err != nil {
		return err
	}
	if c.HostPort < 1 || c.HostPort > 65535 {
		return fmt.Errorf("host port %d out of range (1-65535)", c.HostPort)
	}
	if c.ContainerPort < 1 || c.ContainerPort > 65535 {
		return fmt.Errorf("container port %d out of range (1-65535)", c.ContainerPort)
	}
	if err := ValidateObjectName("data volume", c.DataVolume); err != nil {
		return err
	}
	if err := ValidateObjectName("model volume", c.ModelVolume); err != nil {
		return err
	}
	if c.DataVolume == c.ModelVolume {
		return fmt.Errorf("data volume and model volume must differ (both %q)", c.DataVolume)
	}
	return nil
}

// ExitCode defines the process exit codes of the CLI.
type ExitCode int

const (
	// ExitSuccess indicates the command completed. A pipeline that aborted
	// gracefully at the pull or run step also exits with ExitSuccess.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitInvalidConfig indicates the config file could not be read or
	// contained invalid values.
	ExitInvalidConfig ExitCode = 2

	// ExitDockerNotRunning indicates the container runtime CLI is missing
	// or its version probe failed.
	ExitDockerNotRunning ExitCode = 3
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
