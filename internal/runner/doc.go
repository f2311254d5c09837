// Package runner executes external commands for the webui-deploy CLI.
//
// The Runner contract is deliberately narrow: one call spawns one process,
// waits for it, captures stdout and stderr, and returns a model.CommandResult.
// Ordinary command failure, a missing executable, and unexpected faults are
// all reported through the result's Outcome; no error value or panic ever
// crosses the Runner boundary.
//
// Progress and diagnostics are written to an injected logrus.FieldLogger so
// that tests can assert on emitted entries instead of scraping console text.
package runner
