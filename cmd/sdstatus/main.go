// Package main provides the entry point for the sdstatus CLI.
//
// sdstatus reports availability and metadata for the SecureDrop instances
// listed in the SecureDrop directory. It probes each instance's /metadata
// endpoint over Tor and aggregates the results.
//
// Usage:
//
//	sdstatus scan
//	sdstatus l10n <scan-output.json>
//
// See --help for all available options.
package main

// main is the entry point for sdstatus.
func main() {
	Execute()
}
