// Package main is the entry point for the trackd CLI.
package main

import (
	"fmt"
	"os"

	"github.com/tracklet/trackd/internal/app"
	"github.com/tracklet/trackd/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolve working directory: %w", err)
	}

	container, err := app.New(cwd, "cli")
	if err != nil {
		return err
	}
	defer func() { _ = container.Close() }()

	rootCmd := cli.NewRootCommand(container, version)
	return rootCmd.Execute()
}
