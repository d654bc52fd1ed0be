package aggregate

import (
	"sort"

	"github.com/nao1215/sdstatus/internal/model"
)

// LocaleReport builds the localization coverage report from a scan result:
// for each locale advertised by a reachable instance, the set of instance
// titles advertising it.
//
// Rules:
//   - only successful outcomes contribute; failures are skipped, never an
//     error (a partially failed scan still yields a correct report for the
//     instances that answered)
//   - locale codes are used exactly as served, case-sensitively
//   - titles are deduplicated per locale and sorted, so rendering is
//     stable regardless of scan completion order
//
// The instance title is the identity key. Two instances sharing a title
// collapse into one entry per locale, which matches how the report reads:
// it names organizations, not onion addresses.
func LocaleReport(result model.ScanResult) *model.LocaleReport {
	titleSets := make(map[string]map[string]struct{})

	for _, outcome := range result.Outcomes {
		if !outcome.Available || outcome.Metadata == nil {
			continue
		}
		for _, locale := range outcome.Metadata.SupportedLanguages {
			if titleSets[locale] == nil {
				titleSets[locale] = make(map[string]struct{})
			}
			titleSets[locale][outcome.Instance.Title] = struct{}{}
		}
	}

	report := model.NewLocaleReport()
	for locale, titles := range titleSets {
		sorted := make([]string, 0, len(titles))
		for title := range titles {
			sorted = append(sorted, title)
		}
		sort.Strings(sorted)
		report.Locales[locale] = sorted
	}

	return report
}
