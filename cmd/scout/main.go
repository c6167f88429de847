// Package main provides the entry point for the scout CLI.
package main

import (
	"context"
	"os"

	"github.com/mrz1836/scout/internal/cli"
)

// Set via ldflags at build time.
var (
	version = "" //nolint:gochecknoglobals // ldflags
	commit  = "" //nolint:gochecknoglobals // ldflags
	date    = "" //nolint:gochecknoglobals // ldflags
)

func main() {
	ctx := context.Background()
	err := cli.Execute(ctx, cli.BuildInfo{Version: version, Commit: commit, Date: date})
	os.Exit(cli.ExitCodeForError(err))
}
