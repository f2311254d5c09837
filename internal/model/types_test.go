package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOutcome_String verifies that Outcome values produce the expected
// string representations for log fields and JSON output.
func TestOutcome_String(t *testing.T) {
	tests := []struct {
		outcome  Outcome
		expected string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeExitFailure, "exit-failure"},
		{OutcomeNotFound, "not-found"},
		{OutcomeFault, "fault"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.outcome.String())
		})
	}
}

// TestOutcome_IsValid checks that only defined outcomes pass validation.
func TestOutcome_IsValid(t *testing.T) {
	assert.True(t, OutcomeSuccess.IsValid())
	assert.True(t, OutcomeExitFailure.IsValid())
	assert.True(t, OutcomeNotFound.IsValid())
	assert.True(t, OutcomeFault.IsValid())
	assert.False(t, Outcome("timeout").IsValid())
	assert.False(t, Outcome("").IsValid())
}

// TestNewCommand_CoercesToText verifies that non-string parts such as
// port numbers are converted to their textual form.
func TestNewCommand_CoercesToText(t *testing.T) {
	cmd := NewCommand("docker", "run", "-p", 3000, 8080, true)

	assert.Equal(t, Command{"docker", "run", "-p", "3000", "8080", "true"}, cmd)
	assert.Equal(t, "docker", cmd.Program())
	assert.Equal(t, []string{"run", "-p", "3000", "8080", "true"}, cmd.Args())
	assert.Equal(t, "docker run -p 3000 8080 true", cmd.String())
}

// TestCommand_Empty verifies the accessors on an empty command.
func TestCommand_Empty(t *testing.T) {
	var cmd Command
	assert.Equal(t, "", cmd.Program())
	assert.Nil(t, cmd.Args())
	assert.Equal(t, "", cmd.String())

	assert.Nil(t, Command{"docker"}.Args(), "program without args has no args")
}

// TestCommandResult_Success verifies that only the success outcome
// reports success, regardless of other fields.
func TestCommandResult_Success(t *testing.T) {
	assert.True(t, CommandResult{Outcome: OutcomeSuccess, Stderr: "progress"}.Success())
	assert.False(t, CommandResult{Outcome: OutcomeExitFailure, ExitCode: 1}.Success())
	assert.False(t, CommandResult{Outcome: OutcomeNotFound}.Success())
	assert.False(t, CommandResult{Outcome: OutcomeFault}.Success())
	assert.False(t, CommandResult{}.Success(), "zero value is not a success")
}

// TestCommandResult_Summary checks the one-line summaries for each outcome.
func TestCommandResult_Summary(t *testing.T) {
	cmd := Command{"docker", "pull", "img:tag"}

	assert.Equal(t, `"docker pull img:tag" succeeded`,
		CommandResult{Command: cmd, Outcome: OutcomeSuccess}.Summary())

	assert.Equal(t, `"docker pull img:tag" exited with code 1: manifest unknown`,
		CommandResult{Command: cmd, Outcome: OutcomeExitFailure, ExitCode: 1, Stderr: "manifest unknown\n"}.Summary())

	assert.Equal(t, `"docker pull img:tag" exited with code 125`,
		CommandResult{Command: cmd, Outcome: OutcomeExitFailure, ExitCode: 125}.Summary())

	assert.Equal(t, "boom",
		CommandResult{Command: cmd, Outcome: OutcomeFault, Description: "boom"}.Summary())
}

// TestDefaultConfig verifies the built-in defaults and that they validate.
func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "docker", cfg.Runtime)
	assert.Equal(t, "ghcr.io/open-webui/open-webui", cfg.ImageName)
	assert.Equal(t, "ollama", cfg.ImageTag)
	assert.Equal(t, "open-webui", cfg.ContainerName)
	assert.Equal(t, 3000, cfg.HostPort)
	assert.Equal(t, 8080, cfg.ContainerPort)
	assert.Equal(t, "open-webui-data", cfg.DataVolume)
	assert.Equal(t, "ollama-data", cfg.ModelVolume)

	require.NoError(t, cfg.Validate())
}

// TestConfig_Validate covers each validation rule with a single broken field.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"empty runtime", func(c *Config) { c.Runtime = " " }, "runtime"},
		{"empty image", func(c *Config) { c.ImageName = "" }, "image name"},
		{"empty tag", func(c *Config) { c.ImageTag = "" }, "image tag"},
		{"empty container", func(c *Config) { c.ContainerName = "" }, "container name"},
		{"bad container", func(c *Config) { c.ContainerName = "-bad" }, "invalid container name"},
		{"host port zero", func(c *Config) { c.HostPort = 0 }, "host port 0"},
		{"host port too big", func(c *Config) { c.HostPort = 70000 }, "host port 70000"},
		{"container port", func(c *Config) { c.ContainerPort = -1 }, "container port -1"},
		{"bad data volume", func(c *Config) { c.DataVolume = "a/b" }, "invalid data volume name"},
		{"empty model volume", func(c *Config) { c.ModelVolume = "" }, "model volume name"},
		{"same volumes", func(c *Config) { c.ModelVolume = c.DataVolume }, "must differ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

// TestValidateObjectName checks accepted and rejected container/volume names.
func TestValidateObjectName(t *testing.T) {
	valid := []string{"open-webui", "a", "data_1", "vol.v2", "X9"}
	for _, name := range valid {
		assert.NoError(t, ValidateObjectName("volume", name), name)
	}

	invalid := []string{"", "_x", ".x", "has space", "semi;colon", "a/b"}
	for _, name := range invalid {
		assert.Error(t, ValidateObjectName("volume", name), name)
	}
}

// TestCLIError verifies error formatting and unwrapping.
func TestCLIError(t *testing.T) {
	base := errors.New("exec: \"docker\": executable file not found in $PATH")

	wrapped := WrapCLIError(ExitDockerNotRunning, "Docker command not found", base)
	assert.Equal(t, ExitDockerNotRunning, wrapped.Code)
	assert.Equal(t, "Docker command not found: "+base.Error(), wrapped.Error())
	assert.ErrorIs(t, wrapped, base)

	plain := NewCLIError(ExitInvalidConfig, "bad config")
	assert.Equal(t, "bad config", plain.Error())
	assert.Nil(t, plain.Unwrap())

	var target *CLIError
	require.True(t, errors.As(error(wrapped), &target))
	assert.Equal(t, ExitDockerNotRunning, target.Code)
}
