// Package main is the entry point for the webui-deploy CLI.
//
// This binary replaces the local Open WebUI container with a freshly
// pulled image. It delegates all functionality to the internal/cli
// package, which defines the cobra commands.
//
// Build-time variables (version, commit, date) are injected via ldflags.
// During development they default to "dev", "none", and "unknown".
package main

import (
	"github.com/mmr-tortoise/webui-deploy/internal/cli"
)

// version, commit, and date are set at build time via
// -ldflags "-X main.version=...". They are shown by --version.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	cli.Execute(cli.NewRootCommand())
}
