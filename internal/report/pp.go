package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/nao1215/sdstatus/internal/model"
)

// PPWriter outputs human-readable text reports.
// This format is designed for terminal display with per-instance status
// lines and a summary footer.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type PPWriter struct {
	baseWriter

	// verbose enables additional detail in the output, such as the
	// GPG fingerprint and source URL of each available instance.
	verbose bool
}

// PPWriterOption configures a PPWriter.
type PPWriterOption func(*PPWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) PPWriterOption {
	return func(w *PPWriter) {
		w.verbose = verbose
	}
}

// NewPPWriter creates a PPWriter that outputs to the given writer.
func NewPPWriter(output io.Writer, opts ...PPWriterOption) *PPWriter {
	w := &PPWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the scan result in human-readable format.
func (w *PPWriter) Write(result model.ScanResult) (int, error) {
	var sb strings.Builder

	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                    SECUREDROP INSTANCE STATUS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	for _, outcome := range result.Outcomes {
		w.writeOutcome(&sb, outcome)
	}

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("%d of %d instances available\n", result.AvailableCount(), result.Len()))

	return w.output.Write([]byte(sb.String()))
}

// writeOutcome writes a single instance status line.
func (w *PPWriter) writeOutcome(sb *strings.Builder, outcome model.Outcome) {
	if outcome.Available && outcome.Metadata != nil {
		sb.WriteString(fmt.Sprintf("  [up]   %s\n", outcome.Instance.Title))
		sb.WriteString(fmt.Sprintf("         address: %s\n", outcome.Instance.OnionAddress))
		sb.WriteString(fmt.Sprintf("         version: %s\n", outcome.Metadata.Version))
		if len(outcome.Metadata.SupportedLanguages) > 0 {
			sb.WriteString(fmt.Sprintf("         locales: %s\n", strings.Join(outcome.Metadata.SupportedLanguages, ", ")))
		}
		if w.verbose {
			if outcome.Metadata.Fingerprint != "" {
				sb.WriteString(fmt.Sprintf("         gpg:     %s\n", outcome.Metadata.Fingerprint))
			}
			if outcome.Metadata.ServerOS != "" {
				sb.WriteString(fmt.Sprintf("         os:      %s\n", outcome.Metadata.ServerOS))
			}
		}
		return
	}

	sb.WriteString(fmt.Sprintf("  [down] %s\n", outcome.Instance.Title))
	sb.WriteString(fmt.Sprintf("         address: %s\n", outcome.Instance.OnionAddress))
	sb.WriteString(fmt.Sprintf("         failure: %s", outcome.Failure))
	if outcome.Error != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", outcome.Error))
	}
	sb.WriteString("\n")
}

// WriteLocales outputs the locale report grouped by locale code.
// Each locale is printed with its instance count and the sorted titles
// of the instances that support it:
//
//	fr (French) (2):
//	  Alpha
//	  Beta
func (w *PPWriter) WriteLocales(report *model.LocaleReport) (int, error) {
	var sb strings.Builder

	for _, code := range report.LocaleCodes() {
		titles := report.Titles(code)
		sb.WriteString(fmt.Sprintf("%s (%d):\n  %s\n\n", localeLabel(code), len(titles), strings.Join(titles, "\n  ")))
	}

	return w.output.Write([]byte(sb.String()))
}

// localeLabel returns the locale code annotated with its English display
// name when the code parses as a BCP 47 tag, e.g. "fr (French)".
// Unparseable codes are returned as-is so unknown or malformed locale
// strings from instance metadata still appear in the report.
func localeLabel(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}

	name := display.English.Languages().Name(tag)
	if name == "" || name == code {
		return code
	}

	return fmt.Sprintf("%s (%s)", code, name)
}
