// Package aggregate folds a scan result into the localization coverage
// report. Aggregation is deterministic and single-threaded: the same
// scan result always produces the same report, and failed probes simply
// contribute nothing.
package aggregate
