// Package model defines the core data structures shared across sdstatus.
//
// The types in this package describe one scan run end to end:
//   - Instance: a SecureDrop directory entry to probe
//   - Metadata: the document served by an instance's /metadata endpoint
//   - Outcome: the per-instance probe result (success or classified failure)
//   - ScanResult: the complete set of outcomes for one run
//   - LocaleReport: the localization coverage report derived from a ScanResult
//
// All types are plain values with JSON tags so that scan output can be
// persisted and re-read for later report generation without re-scanning.
// None of them are mutated after construction.
package model
