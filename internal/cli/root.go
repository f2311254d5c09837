// Package cli implements the cobra-based CLI commands for webui-deploy.
//
// The root command itself performs the deployment, so running the binary
// with no arguments redeploys the container with the built-in settings.
// The plan subcommand lists the invocations without running them. This
// file defines the root command, global flags, logging setup and the
// error-to-exit-code mapping.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/webui-deploy/internal/config"
	"github.com/mmr-tortoise/webui-deploy/internal/deploy"
	"github.com/mmr-tortoise/webui-deploy/internal/docker"
	"github.com/mmr-tortoise/webui-deploy/internal/model"
	"github.com/mmr-tortoise/webui-deploy/internal/port"
	"github.com/mmr-tortoise/webui-deploy/internal/runner"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command.
var (
	// jsonOutput switches results, errors and logs to JSON.
	jsonOutput bool

	// verbose enables debug-level logging.
	verbose bool

	// configPath is an optional YAML/JSONC file overriding the defaults.
	configPath string
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// newRunner creates the command runner used for every runtime invocation.
// Tests replace it to script runtime responses.
var newRunner = func(log logrus.FieldLogger) runner.Runner {
	return runner.NewExecRunner(log)
}

// newPortChecker creates the host port checker for the run preflight.
var newPortChecker = func() port.Checker {
	return port.NewScanner()
}

// NewRootCommand creates and configures the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "webui-deploy",
		Short: "Redeploy the Open WebUI container with Docker",
		Long: `webui-deploy replaces the Open WebUI container with a freshly pulled image.

It runs four steps against the Docker CLI:
  1. docker stop <container>   (ignored if the container does not exist)
  2. docker rm <container>     (ignored if the container does not exist)
  3. docker pull <image>:<tag>
  4. docker run -d ... <image>:<tag>

Tags containing "ollama" select the bundled variant, which also mounts the
model volume and requests all GPUs. Other tags add a host-gateway alias so
the application can reach a model server running on the host.

Examples:
  webui-deploy
  webui-deploy --config deploy.yaml
  webui-deploy plan --json`,

		Args: cobra.NoArgs,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd)
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (.yaml, .yml, .json, .jsonc) overriding the defaults")

	rootCmd.AddCommand(NewPlanCommand())

	return rootCmd
}

// Execute runs the root command and exits the process with the resulting
// exit code. This is the main entry point called from main.go.
func Execute(rootCmd *cobra.Command) {
	os.Exit(int(Run(rootCmd)))
}

// Run executes rootCmd and translates its error into an exit code.
// CLIError values carry their own code; other errors map to
// ExitGeneralError.
func Run(rootCmd *cobra.Command) model.ExitCode {
	err := rootCmd.Execute()
	if err == nil {
		return model.ExitSuccess
	}

	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		printError(rootCmd.ErrOrStderr(), cliErr.Message, cliErr.Err)
		return cliErr.Code
	}

	printError(rootCmd.ErrOrStderr(), err.Error(), nil)
	return model.ExitGeneralError
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = underlying.Error()
			}
		}
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", message, underlying)
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// newLogger creates the progress logger. Text output with full timestamps
// by default, JSON under --json, debug level under --verbose.
func newLogger(w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	if jsonOutput {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.InfoLevel)
	}
	return log
}

// newDeployer loads the configuration and wires a Deployer for it.
func newDeployer(log logrus.FieldLogger) (*deploy.Deployer, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log.WithField("config", configSource()).Debug("configuration loaded")

	cli := docker.NewClient(cfg.Runtime, newRunner(log))
	return deploy.New(cfg, cli, newPortChecker(), log), nil
}

// configSource names where the configuration came from, for logs.
func configSource() string {
	if configPath == "" {
		return "built-in defaults"
	}
	return configPath
}

// IsJSONOutput returns whether the --json flag is set.
func IsJSONOutput() bool {
	return jsonOutput
}
