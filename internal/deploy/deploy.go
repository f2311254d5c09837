// Package deploy sequences the container lifecycle for webui-deploy:
//
//	probe → stop → remove → pull → run → summary
//
// Stop and remove are best-effort; the container may not exist on a first
// deployment. Pull and run are fatal: a failure there ends the pipeline
// with a user-facing explanation and no later step is attempted. The probe
// runs separately (Preflight) so that a missing runtime can be reported
// with a non-zero exit status before anything else happens.
package deploy

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mmr-tortoise/webui-deploy/internal/docker"
	"github.com/mmr-tortoise/webui-deploy/internal/model"
	"github.com/mmr-tortoise/webui-deploy/internal/port"
)

// portSuggestionRange is how far above a busy host port to look for a
// free alternative.
const portSuggestionRange = 100

// Deployer runs the deploy pipeline for one configuration.
type Deployer struct {
	cfg   model.Config
	cli   *docker.Client
	ports port.Checker
	log   logrus.FieldLogger
}

// New creates a Deployer. cfg is copied and never modified afterwards.
// ports may be nil to skip the host port preflight; log may be nil to
// discard progress output.
func New(cfg model.Config, cli *docker.Client, ports port.Checker, log logrus.FieldLogger) *Deployer {
	if log == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		log = discard
	}
	return &Deployer{cfg: cfg, cli: cli, ports: ports, log: log}
}

// Config returns a copy of the deployment configuration.
func (d *Deployer) Config() model.Config {
	return d.cfg
}

// Preflight runs the runtime version probe. A failure is returned as a
// model.CLIError with ExitDockerNotRunning.
func (d *Deployer) Preflight(ctx context.Context) error {
	version, err := d.cli.Probe(ctx)
	if err != nil {
		return err
	}
	d.log.WithFields(logrus.Fields{"step": StepProbe, "version": version}).Debug("container runtime available")
	return nil
}

// Plan returns the invocations Deploy would run, in order, without running
// any of them.
func (d *Deployer) Plan() ([]PlannedStep, error) {
	image, spec, err := d.prepare()
	if err != nil {
		return nil, err
	}
	return []PlannedStep{
		{Step: StepProbe, Command: d.cli.VersionCommand(), Fatal: StepProbe.IsFatal()},
		{Step: StepStop, Command: docker.StopCommand(d.cli, d.cfg.ContainerName), Fatal: StepStop.IsFatal()},
		{Step: StepRemove, Command: docker.RemoveCommand(d.cli, d.cfg.ContainerName), Fatal: StepRemove.IsFatal()},
		{Step: StepPull, Command: docker.PullCommand(d.cli, image), Fatal: StepPull.IsFatal()},
		{Step: StepRun, Command: docker.RunCommand(d.cli, spec), Fatal: StepRun.IsFatal()},
	}, nil
}

// Deploy runs stop, remove, pull and run in sequence and returns a report.
//
// The returned error is non-nil only when the configuration cannot produce
// a valid run invocation; this is checked before the existing container is
// touched. Pull and run failures are not errors: they are recorded in the
// report (Aborted, Message, Hints) and the pipeline stops there.
func (d *Deployer) Deploy(ctx context.Context) (*Report, error) {
	image, spec, err := d.prepare()
	if err != nil {
		return nil, err
	}

	bundled := docker.IsBundled(d.cfg.ImageTag)
	report := &Report{
		Image:         image,
		ContainerName: d.cfg.ContainerName,
		Bundled:       bundled,
	}
	d.logSetup(image, bundled)

	// Step 1: stop any existing container with the same name.
	d.log.WithField("step", StepStop).Infof("stopping existing container %q (if any)", d.cfg.ContainerName)
	stop := docker.StopContainer(ctx, d.cli, d.cfg.ContainerName)
	report.record(StepStop, stop)
	d.logBestEffort(StepStop, stop)

	// Step 2: remove it.
	d.log.WithField("step", StepRemove).Infof("removing existing container %q (if any)", d.cfg.ContainerName)
	remove := docker.RemoveContainer(ctx, d.cli, d.cfg.ContainerName)
	report.record(StepRemove, remove)
	d.logBestEffort(StepRemove, remove)

	// The old container no longer holds the host port; anything still
	// bound to it will make the run step fail.
	if warning := d.checkHostPort(); warning != "" {
		report.Warnings = append(report.Warnings, warning)
	}

	// Step 3: pull the image.
	d.log.WithField("step", StepPull).Infof("pulling image %q", image)
	pull := docker.PullImage(ctx, d.cli, image)
	report.record(StepPull, pull)
	if !pull.Success() {
		report.abort(StepPull, fmt.Sprintf(
			"Failed to pull the Docker image '%s'. Please check the image name/tag, your internet connection, and Docker setup.",
			image,
		))
		d.log.WithField("step", StepPull).Error(report.Message)
		return report, nil
	}

	// Step 4: run the new container.
	d.log.WithField("step", StepRun).Infof("running new container %q", d.cfg.ContainerName)
	run := docker.RunContainer(ctx, d.cli, spec)
	report.record(StepRun, run)
	if !run.Success() {
		report.abort(StepRun,
			fmt.Sprintf("Failed to start the Open WebUI container. Please check Docker logs for '%s' for more details.", d.cfg.ContainerName),
			fmt.Sprintf("You can try: %s logs %s", d.cli.Binary(), d.cfg.ContainerName),
		)
		d.log.WithField("step", StepRun).Error(report.Message)
		return report, nil
	}

	report.Summary = &Summary{
		Tag:         d.cfg.ImageTag,
		URL:         fmt.Sprintf("http://localhost:%d", d.cfg.HostPort),
		ContainerID: firstLine(run.Stdout),
		DataVolume:  d.cfg.DataVolume,
	}
	if bundled {
		report.Summary.ModelVolume = d.cfg.ModelVolume
	}
	d.log.WithFields(logrus.Fields{
		"container": d.cfg.ContainerName,
		"url":       report.Summary.URL,
	}).Info("Open WebUI setup complete")

	return report, nil
}

// prepare resolves the image reference and the run invocation, so that a
// bad configuration is rejected before anything is executed.
func (d *Deployer) prepare() (string, *docker.RunSpec, error) {
	spec, err := docker.BuildRunSpec(d.cfg)
	if err != nil {
		return "", nil, model.WrapCLIError(model.ExitInvalidConfig, "invalid deployment configuration", err)
	}
	return spec.Image, spec, nil
}

// logSetup logs the deployment parameters before the first step.
func (d *Deployer) logSetup(image string, bundled bool) {
	fields := logrus.Fields{
		"image":          image,
		"container":      d.cfg.ContainerName,
		"host_port":      d.cfg.HostPort,
		"container_port": d.cfg.ContainerPort,
		"data_volume":    d.cfg.DataVolume,
	}
	if bundled {
		fields["model_volume"] = d.cfg.ModelVolume
	}
	d.log.WithFields(fields).Info("starting Open WebUI Docker setup")
}

// logBestEffort reports the result of a stop or remove step. An absent
// container is the normal first-run case and is logged at info level;
// any other failure is logged as a warning. Neither stops the pipeline.
func (d *Deployer) logBestEffort(step Step, result model.CommandResult) {
	entry := d.log.WithField("step", step)
	switch {
	case result.Success():
		entry.Debugf("%s step succeeded", step)
	case docker.IsNoSuchContainer(result):
		entry.Infof("no existing container %q; nothing to %s", d.cfg.ContainerName, step)
	default:
		entry.WithField("error", result.Summary()).Warnf("%s step failed; continuing", step)
	}
}

// checkHostPort warns when the configured host port is already bound.
// It returns the warning text, or "" when the port is free or no checker
// is configured.
func (d *Deployer) checkHostPort() string {
	if d.ports == nil || d.ports.IsPortAvailable(d.cfg.HostPort, "tcp") {
		return ""
	}

	warning := fmt.Sprintf("host port %d is already in use; the run step will likely fail", d.cfg.HostPort)
	end := min(d.cfg.HostPort+portSuggestionRange, 65535)
	if free, err := d.ports.FindAvailablePort(d.cfg.HostPort+1, end, "tcp"); err == nil {
		warning += fmt.Sprintf(" (port %d is free)", free)
	}
	d.log.WithField("host_port", d.cfg.HostPort).Warn(warning)
	return warning
}

// firstLine returns the first non-empty line of s, trimmed.
func firstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return ""
}
