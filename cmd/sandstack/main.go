package main

import (
	"github.com/asad/sandstack/internal/cli"
)

// main is the entry point for the Sandstack application.
// It delegates to the CLI package which handles command parsing and execution.
func main() {
	cli.Execute()
}
