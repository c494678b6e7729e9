// Package main provides the entry point for admingate-cli, the
// command-line management tool for the AdminGate server.
package main

import (
	"fmt"
	"os"

	"github.com/tehnewb/admingate/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
