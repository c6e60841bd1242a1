package main

import (
	"os"

	"github.com/ironsheep/radial-resonance/cmd/radial-resonance/commands"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	commands.SetBuildInfo(Version, BuildTime, GitCommit)
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
