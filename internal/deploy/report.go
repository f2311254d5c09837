package deploy

import (
	"fmt"

	"github.com/mmr-tortoise/webui-deploy/internal/model"
)

// Step names one stage of the deploy pipeline.
type Step string

const (
	// StepProbe is the runtime version probe that gates the pipeline.
	StepProbe Step = "probe"

	// StepStop stops an existing container with the configured name.
	StepStop Step = "stop"

	// StepRemove removes that container.
	StepRemove Step = "remove"

	// StepPull fetches the configured image.
	StepPull Step = "pull"

	// StepRun starts the new container.
	StepRun Step = "run"
)

// String returns the string representation of Step.
func (s Step) String() string {
	return string(s)
}

// IsFatal reports whether a failure at this step ends the pipeline.
// Stop and remove are best-effort: the container may legitimately not exist.
func (s Step) IsFatal() bool {
	switch s {
	case StepProbe, StepPull, StepRun:
		return true
	default:
		return false
	}
}

// StepResult pairs a pipeline step with the outcome of its invocation.
type StepResult struct {
	Step   Step                `json:"step"`
	Result model.CommandResult `json:"result"`
}

// PlannedStep is one invocation the pipeline would run.
type PlannedStep struct {
	Step    Step          `json:"step"`
	Command model.Command `json:"command"`
	Fatal   bool          `json:"fatal"`
}

// Summary describes a successful deployment.
type Summary struct {
	// Tag is the deployed image variant.
	Tag string `json:"tag"`

	// URL is where the application is reachable from the host.
	URL string `json:"url"`

	// ContainerID is the ID printed by the run invocation, if any.
	ContainerID string `json:"containerId,omitempty"`

	// DataVolume holds application data.
	DataVolume string `json:"dataVolume"`

	// ModelVolume holds model data; only set for the bundled variant.
	ModelVolume string `json:"modelVolume,omitempty"`
}

// Lines renders the access summary as human-readable lines.
func (s *Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("Open WebUI (%s version) should now be running.", s.Tag),
		fmt.Sprintf("Access it at: %s", s.URL),
		fmt.Sprintf("Open WebUI data is stored in Docker volume: '%s'", s.DataVolume),
	}
	if s.ModelVolume != "" {
		lines = append(lines,
			fmt.Sprintf("Ollama models (if using bundled version) are stored in Docker volume: '%s'", s.ModelVolume))
	}
	return lines
}

// Report is the outcome of one Deploy call.
//
// A report is either completed (Summary set) or aborted at a fatal step
// (Aborted true, AbortedAt, Message and Hints set). Stop and remove
// failures never abort.
type Report struct {
	// Image is the image reference that was pulled and run.
	Image string `json:"image"`

	// ContainerName is the name of the managed container.
	ContainerName string `json:"containerName"`

	// Bundled is true for the variant with the model server.
	Bundled bool `json:"bundled"`

	// Steps holds every executed step in order.
	Steps []StepResult `json:"steps"`

	// Warnings are non-fatal problems noticed along the way.
	Warnings []string `json:"warnings,omitempty"`

	// Aborted is true when a fatal step failed.
	Aborted bool `json:"aborted"`

	// AbortedAt names the failed fatal step.
	AbortedAt Step `json:"abortedAt,omitempty"`

	// Message is the user-facing explanation of an abort.
	Message string `json:"message,omitempty"`

	// Hints are follow-up suggestions for the user.
	Hints []string `json:"hints,omitempty"`

	// Summary is set when the deployment completed.
	Summary *Summary `json:"summary,omitempty"`
}

// Succeeded reports whether the pipeline ran to completion.
func (r *Report) Succeeded() bool {
	return !r.Aborted && r.Summary != nil
}

// Result returns the result of step, if it ran.
func (r *Report) Result(step Step) (model.CommandResult, bool) {
	for _, s := range r.Steps {
		if s.Step == step {
			return s.Result, true
		}
	}
	return model.CommandResult{}, false
}

func (r *Report) record(step Step, result model.CommandResult) {
	r.Steps = append(r.Steps, StepResult{Step: step, Result: result})
}

func (r *Report) abort(step Step, message string, hints ...string) {
	r.Aborted = true
	r.AbortedAt = step
	r.Message = message
	r.Hints = hints
}
