// Package report provides output formatting for scan results.
// It supports JSON output for tool integration, human-readable
// pretty-printed output for terminal display, and Markdown output
// for documentation and sharing.
package report
