// Package cli: plan.go implements the "webui-deploy plan" command.
//
// The plan command prints the runtime invocations a deployment would make,
// in order, without running any of them. The runtime is not probed, so the
// command also works on machines without Docker.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/webui-deploy/internal/deploy"
)

// NewPlanCommand creates the "plan" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewPlanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the commands a deployment would run",
		Long: `Show the Docker commands a deployment would run, without running them.

Stop and remove are marked best-effort: their failure does not stop the
deployment. A failure of any other step ends it.

Examples:
  webui-deploy plan
  webui-deploy plan --config deploy.yaml --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd)
		},
	}
}

// runPlan loads the configuration and prints the planned steps.
func runPlan(cmd *cobra.Command) error {
	d, err := newDeployer(newLogger(cmd.ErrOrStderr()))
	if err != nil {
		return err
	}

	steps, err := d.Plan()
	if err != nil {
		return err
	}

	printPlanResult(cmd.OutOrStdout(), steps)
	return nil
}

// printPlanResult outputs the planned steps in text or JSON format.
func printPlanResult(w io.Writer, steps []deploy.PlannedStep) {
	if IsJSONOutput() {
		type resultJSON struct {
			Steps []deploy.PlannedStep `json:"steps"`
		}
		data, _ := json.MarshalIndent(resultJSON{Steps: steps}, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	// One row per step:
	//
	//	1  probe   required     docker --version
	//	2  stop    best-effort  docker stop open-webui
	for i, s := range steps {
		fmt.Fprintf(w, "%d  %-7s %-12s %s\n", i+1, s.Step, FormatFatality(s.Fatal), s.Command)
	}
}

// FormatFatality labels a step by what its failure does to the pipeline.
func FormatFatality(fatal bool) string {
	if fatal {
		return "required"
	}
	return "best-effort"
}
