// Package main is the entry point for the osident CLI binary.
package main

import (
	"os"

	cli "osident/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
