// Package main is the single-binary entrypoint for Pulse, the proactive
// habit nudge engine.
package main

import "github.com/pulsehabit/pulse/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
