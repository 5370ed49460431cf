// Command biosec is the operator CLI for the BioSecure portal.
package main

import (
	"fmt"
	"os"

	"github.com/turtacn/BioSecure-Portal/internal/interfaces/cli"
)

// Injected at build time via -ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
