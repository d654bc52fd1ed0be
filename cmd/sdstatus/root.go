// Package main provides the entry point for the sdstatus CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sdstatus.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sdstatus",
		Short: "Report metadata about SecureDrop instances",
		Long: `sdstatus reports availability and metadata for SecureDrop instances.

It fetches the instance list from the SecureDrop directory, probes each
instance's /metadata endpoint over Tor, and reports which instances are
reachable along with their version and localization metadata.

By default, sdstatus starts an embedded Tor daemon automatically.
Use --external-tor to use an existing Tor proxy instead.`,
		Version:       resolveBuildInfo().version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewL10nCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
