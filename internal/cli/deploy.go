// Package cli: deploy.go implements the root command's action.
//
// The deployment probes the container runtime first; a missing runtime is
// the only runtime problem that yields a non-zero exit status. Pull and run
// failures abort the pipeline with an explanation but still exit 0.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/webui-deploy/internal/deploy"
)

// runDeploy is the main logic function for the root command.
func runDeploy(cmd *cobra.Command) error {
	ctx := cmd.Context()
	log := newLogger(cmd.ErrOrStderr())

	// Step 1: Load the configuration and wire the pipeline.
	d, err := newDeployer(log)
	if err != nil {
		return err
	}

	// Step 2: Make sure the runtime answers before touching anything.
	if err := d.Preflight(ctx); err != nil {
		return err
	}

	// Step 3: Replace the container.
	report, err := d.Deploy(ctx)
	if err != nil {
		return err
	}

	printDeployResult(cmd.OutOrStdout(), report)
	return nil
}

// printDeployResult outputs the report in text or JSON format, depending
// on the global --json flag.
func printDeployResult(w io.Writer, report *deploy.Report) {
	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}
	printDeployResultText(w, report)
}

// printDeployResultText prints the abort explanation or the access summary.
func printDeployResultText(w io.Writer, report *deploy.Report) {
	for _, warning := range report.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}

	if report.Aborted {
		fmt.Fprintln(w, report.Message)
		for _, hint := range report.Hints {
			fmt.Fprintln(w, hint)
		}
		return
	}

	if report.Summary == nil {
		return
	}
	fmt.Fprintln(w, "--- Open WebUI Setup Complete ---")
	for _, line := range report.Summary.Lines() {
		fmt.Fprintln(w, line)
	}
	if report.Summary.ContainerID != "" {
		fmt.Fprintf(w, "Container ID: %s\n", report.Summary.ContainerID)
	}
}
