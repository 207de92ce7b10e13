// Package main is the single-binary entrypoint for Questline.
package main

import "github.com/questline-app/questline/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
