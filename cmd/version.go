package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information (set at build time)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

type versionInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"buildDate" yaml:"buildDate"`
	Go        string `json:"go" yaml:"go"`
	Platform  string `json:"platform" yaml:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := versionInfo{
			Version:   Version,
			Commit:    Commit,
			BuildDate: BuildDate,
			Go:        runtime.Version(),
			Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		}
		if done, err := structured(info); done {
			return err
		}

		fmt.Printf("doidoi version %s\n", info.Version)
		if info.Commit != "unknown" {
			fmt.Printf("  commit:  %s\n", info.Commit)
		}
		if info.BuildDate != "unknown" {
			fmt.Printf("  built:   %s\n", info.BuildDate)
		}
		fmt.Printf("  go:      %s\n", info.Go)
		fmt.Printf("  os/arch: %s\n", info.Platform)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
