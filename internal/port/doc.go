// Package port implements host port availability scanning for the
// webui-deploy CLI.
//
// Before the run step the deploy pipeline checks that the configured host
// port can be bound. A busy port is only reported as a warning, together
// with a nearby free port as a suggestion; the run invocation still
// proceeds and the runtime has the final word.
package port
