// Package main is the entry point for the Atlas CLI application.
package main

import (
	"fmt"
	"os"

	"github.com/danielolaszy/atlas/cmd"
	"github.com/danielolaszy/atlas/internal/logging"
)

// main executes the root command and handles any errors that occur.
func main() {
	if err := cmd.Execute(); err != nil {
		logging.Error("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
