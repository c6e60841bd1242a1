package commands

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// BuildInfo identifies the binary.
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

var buildInfo = BuildInfo{
	Version:   "dev",
	BuildTime: "unknown",
	GitCommit: "unknown",
	GoVersion: runtime.Version(),
	Platform:  runtime.GOOS + "/" + runtime.GOARCH,
}

// SetBuildInfo records the values injected at link time.
func SetBuildInfo(version, buildTime, gitCommit string) {
	buildInfo.Version = version
	buildInfo.BuildTime = buildTime
	buildInfo.GitCommit = gitCommit
	rootCmd.Version = version
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		out := cmd.OutOrStdout()

		if jsonOutput {
			b, err := json.MarshalIndent(buildInfo, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
			return nil
		}
		fmt.Fprintf(out, "radial-resonance %s\n", buildInfo.Version)
		fmt.Fprintf(out, "  Build time: %s\n", buildInfo.BuildTime)
		fmt.Fprintf(out, "  Git commit: %s\n", buildInfo.GitCommit)
		fmt.Fprintf(out, "  Go: %s %s\n", buildInfo.GoVersion, buildInfo.Platform)
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
}
