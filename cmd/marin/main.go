// Package main is the entry point for the marin CLI tool.
package main

import (
	"os"

	"github.com/Henka-Programmer/Marin/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
