// Package model defines the domain types and value objects for the
// webui-deploy CLI.
//
// This package contains pure data structures with no external dependencies:
// the deployment Config, the Command token sequence, and the tagged
// CommandResult produced by every external invocation.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
