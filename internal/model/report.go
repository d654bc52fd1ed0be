package model

import "sort"

// LocaleReport is the localization coverage report derived from a scan:
// for each locale code advertised by at least one reachable instance, the
// sorted set of instance titles advertising it.
//
// The report is built once by the aggregator and read-only afterwards.
// Locale codes are kept exactly as served (case-sensitive, no
// normalization) so that the report reflects what instances actually
// advertise.
type LocaleReport struct {
	// Locales maps a locale code to the deduplicated, sorted titles of
	// the instances that advertise it.
	Locales map[string][]string `json:"locales"`
}

// NewLocaleReport creates an empty report.
func NewLocaleReport() *LocaleReport {
	return &LocaleReport{
		Locales: make(map[string][]string),
	}
}

// LocaleCodes returns all locale codes in sorted order for stable rendering.
func (r *LocaleReport) LocaleCodes() []string {
	codes := make([]string, 0, len(r.Locales))
	for code := range r.Locales {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Titles returns the sorted titles advertising the given locale code,
// or nil if no reachable instance advertises it.
func (r *LocaleReport) Titles(code string) []string {
	return r.Locales[code]
}
