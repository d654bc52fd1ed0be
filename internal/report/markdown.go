package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/sdstatus/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing, e.g. posting
// a scan summary to a wiki or an issue tracker.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the scan result in Markdown format.
func (w *MarkdownWriter) Write(result model.ScanResult) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("SecureDrop Instance Status")
	md.PlainText("")

	w.writeSummary(md, result)
	w.writeInstanceTable(md, result)

	return len(md.String()), md.Build()
}

// writeSummary writes the availability summary with a pie chart.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result model.ScanResult) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Status", "Count"},
		Rows: [][]string{
			{"🟢 Available", strconv.Itoa(result.AvailableCount())},
			{"🔴 Unavailable", strconv.Itoa(result.FailureCount())},
			{"**Total**", "**" + strconv.Itoa(result.Len()) + "**"},
		},
	})
	md.PlainText("")

	if result.Len() > 0 {
		w.writePieChart(md, result)
	}

	switch {
	case result.Len() == 0:
		md.Note("No instances were scanned.")
	case result.FailureCount() == 0:
		md.Tip("All scanned instances are reachable.")
	case result.AvailableCount() == 0:
		md.Caution("No instance responded. Check the Tor connection before trusting this result.")
	default:
		md.Warningf("%d instance(s) did not respond.", result.FailureCount())
	}
	md.PlainText("")
}

// writePieChart writes a mermaid pie chart of the availability split.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result model.ScanResult) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Instance Availability"),
		piechart.WithShowData(true),
	)

	if result.AvailableCount() > 0 {
		chart.LabelAndIntValue("Available", uint64(result.AvailableCount()))
	}
	for kind, count := range failureCounts(result) {
		chart.LabelAndIntValue(kind, uint64(count))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// failureCounts tallies failed outcomes by failure kind.
func failureCounts(result model.ScanResult) map[string]int {
	counts := make(map[string]int)
	for _, outcome := range result.Outcomes {
		if !outcome.Available {
			counts[outcome.Failure.String()]++
		}
	}
	return counts
}

// writeInstanceTable writes the per-instance status table.
func (w *MarkdownWriter) writeInstanceTable(md *markdown.Markdown, result model.ScanResult) {
	md.H2("Instances")
	md.PlainText("")

	if result.Len() == 0 {
		md.PlainText("No instances.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, result.Len())
	for _, outcome := range result.Outcomes {
		rows = append(rows, instanceRow(outcome))
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Address", "Status", "Version", "Locales"},
		Rows:   rows,
	})
	md.PlainText("")
}

// instanceRow formats a single outcome as a table row.
func instanceRow(outcome model.Outcome) []string {
	address := "`" + outcome.Instance.OnionAddress + "`"

	if outcome.Available && outcome.Metadata != nil {
		locales := strings.Join(outcome.Metadata.SupportedLanguages, ", ")
		if locales == "" {
			locales = "-"
		}
		return []string{
			outcome.Instance.Title,
			address,
			"🟢 up",
			outcome.Metadata.Version,
			locales,
		}
	}

	status := "🔴 " + outcome.Failure.String()
	return []string{outcome.Instance.Title, address, status, "-", "-"}
}

// WriteLocales outputs the locale report as a Markdown table.
func (w *MarkdownWriter) WriteLocales(report *model.LocaleReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("SecureDrop Localization Coverage")
	md.PlainText("")

	codes := report.LocaleCodes()
	if len(codes) == 0 {
		md.PlainText("No available instances reported supported locales.")
		md.PlainText("")
		return len(md.String()), md.Build()
	}

	rows := make([][]string, 0, len(codes))
	for _, code := range codes {
		titles := report.Titles(code)
		rows = append(rows, []string{
			localeLabel(code),
			strconv.Itoa(len(titles)),
			strings.Join(titles, ", "),
		})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Locale", "Instances", "Titles"},
		Rows:   rows,
	})
	md.PlainText("")

	return len(md.String()), md.Build()
}
