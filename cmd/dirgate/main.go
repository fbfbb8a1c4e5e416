// Package main is the entry point for the dirgate admin CLI binary.
package main

import (
	"os"

	cli "dirgate/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
