package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Build metadata. Release builds inject these through -ldflags; anything
// built with a plain "go build" falls back to the module build info the
// toolchain embeds.
var (
	version = ""
	commit  = ""
	date    = ""
)

// buildInfo is the resolved version metadata for this binary.
type buildInfo struct {
	version string
	commit  string
	date    string
}

// resolveBuildInfo fills in any field the linker left empty from
// debug.ReadBuildInfo, then substitutes placeholders for whatever is
// still unknown. VCS revisions are shortened to 7 characters.
func resolveBuildInfo() buildInfo {
	info := buildInfo{version: version, commit: commit, date: date}

	if bi, ok := debug.ReadBuildInfo(); ok {
		if info.version == "" {
			info.version = bi.Main.Version
		}
		for _, setting := range bi.Settings {
			switch setting.Key {
			case "vcs.revision":
				if info.commit == "" {
					info.commit = shortCommit(setting.Value)
				}
			case "vcs.time":
				if info.date == "" {
					info.date = setting.Value
				}
			}
		}
	}

	if info.version == "" {
		info.version = "(devel)"
	}
	if info.commit == "" {
		info.commit = "unknown"
	}
	if info.date == "" {
		info.date = "unknown"
	}

	return info
}

// shortCommit truncates a full VCS revision to the usual short form.
func shortCommit(revision string) string {
	if len(revision) > 7 {
		return revision[:7]
	}
	return revision
}

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, and build date of sdstatus.`,
		Run: func(cmd *cobra.Command, _ []string) {
			info := resolveBuildInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "sdstatus %s (commit %s, built %s)\n",
				info.version, info.commit, info.date)
		},
	}
}
