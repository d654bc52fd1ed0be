package model

import (
	"encoding/json"
	"io"
	"os"
)

// ScanResult is the complete set of outcomes for one scan run, in the
// order the instances were dispatched (directory order). The invariant is
// completeness: one outcome per scanned instance, none missing, none
// duplicated, regardless of how many probes failed.
type ScanResult struct {
	// Outcomes holds one entry per scanned instance.
	Outcomes []Outcome
}

// Len returns the number of outcomes.
func (r ScanResult) Len() int {
	return len(r.Outcomes)
}

// AvailableCount returns the number of successful probes.
func (r ScanResult) AvailableCount() int {
	count := 0
	for _, outcome := range r.Outcomes {
		if outcome.Available {
			count++
		}
	}
	return count
}

// FailureCount returns the number of failed probes.
func (r ScanResult) FailureCount() int {
	return len(r.Outcomes) - r.AvailableCount()
}

// MarshalJSON encodes the result as a bare array of outcomes. This is the
// persisted scan format: it can be re-read later to build reports without
// re-scanning.
func (r ScanResult) MarshalJSON() ([]byte, error) {
	if r.Outcomes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.Outcomes)
}

// UnmarshalJSON decodes the bare outcome array written by MarshalJSON.
func (r *ScanResult) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &r.Outcomes)
}

// DecodeScanResult reads a persisted scan result from r.
func DecodeScanResult(r io.Reader) (ScanResult, error) {
	var result ScanResult
	if err := json.NewDecoder(r).Decode(&result); err != nil {
		return ScanResult{}, err
	}
	return result, nil
}

// LoadScanResult reads a persisted scan result from the file at path.
func LoadScanResult(path string) (ScanResult, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided input path is intentional
	if err != nil {
		return ScanResult{}, err
	}
	defer f.Close()

	return DecodeScanResult(f)
}
