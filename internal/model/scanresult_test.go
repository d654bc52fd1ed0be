package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestScanResultCounts tests the availability counters.
func TestScanResultCounts(t *testing.T) {
	t.Parallel()

	result := ScanResult{
		Outcomes: []Outcome{
			NewSuccessOutcome(Instance{Title: "Alpha"}, &Metadata{}),
			NewFailureOutcome(Instance{Title: "Beta"}, FailureTimeout, nil),
			NewSuccessOutcome(Instance{Title: "Gamma"}, &Metadata{}),
		},
	}

	if result.Len() != 3 {
		t.Errorf("expected Len 3, got %d", result.Len())
	}
	if result.AvailableCount() != 2 {
		t.Errorf("expected 2 available, got %d", result.AvailableCount())
	}
	if result.FailureCount() != 1 {
		t.Errorf("expected 1 failure, got %d", result.FailureCount())
	}
}

// TestScanResultMarshalJSON tests the persisted array format.
func TestScanResultMarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("empty result is an empty array", func(t *testing.T) {
		t.Parallel()

		data, err := json.Marshal(ScanResult{})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(data) != "[]" {
			t.Errorf("expected empty array, got %s", data)
		}
	})

	t.Run("outcomes serialize as a bare array", func(t *testing.T) {
		t.Parallel()

		result := ScanResult{
			Outcomes: []Outcome{
				NewFailureOutcome(Instance{Title: "Delta"}, FailureMalformed, nil),
			},
		}

		data, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if !strings.HasPrefix(string(data), "[") {
			t.Errorf("expected array output, got %s", data)
		}
	})
}

// TestLoadScanResult tests reading a persisted scan from a file.
func TestLoadScanResult(t *testing.T) {
	t.Parallel()

	t.Run("round trip through a file", func(t *testing.T) {
		t.Parallel()

		original := ScanResult{
			Outcomes: []Outcome{
				NewSuccessOutcome(
					Instance{Title: "Alpha", OnionAddress: "alpha.onion"},
					&Metadata{Version: "2.8.0", SupportedLanguages: []string{"en_US", "fr_FR"}},
				),
				NewFailureOutcome(Instance{Title: "Beta"}, FailureUnreachable, nil),
			},
		}

		data, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		path := filepath.Join(t.TempDir(), "scan.json")
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Fatalf("write: %v", err)
		}

		loaded, err := LoadScanResult(path)
		if err != nil {
			t.Fatalf("load: %v", err)
		}

		if loaded.Len() != original.Len() {
			t.Fatalf("expected %d outcomes, got %d", original.Len(), loaded.Len())
		}
		if loaded.Outcomes[0].Metadata == nil {
			t.Fatal("expected metadata on successful outcome")
		}
		if got := loaded.Outcomes[0].Metadata.SupportedLanguages; len(got) != 2 {
			t.Errorf("expected 2 languages, got %v", got)
		}
		if loaded.Outcomes[1].Failure != FailureUnreachable {
			t.Errorf("expected FailureUnreachable, got %v", loaded.Outcomes[1].Failure)
		}
	})

	t.Run("missing file returns error", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadScanResult(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("invalid JSON returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := LoadScanResult(path); err == nil {
			t.Error("expected error for invalid JSON")
		}
	})
}

// TestLocaleReport tests the report accessor helpers.
func TestLocaleReport(t *testing.T) {
	t.Parallel()

	report := NewLocaleReport()
	report.Locales["fr_FR"] = []string{"Alpha"}
	report.Locales["en_US"] = []string{"Alpha", "Beta"}

	codes := report.LocaleCodes()
	if len(codes) != 2 || codes[0] != "en_US" || codes[1] != "fr_FR" {
		t.Errorf("expected sorted codes [en_US fr_FR], got %v", codes)
	}

	if titles := report.Titles("en_US"); len(titles) != 2 {
		t.Errorf("expected 2 titles for en_US, got %v", titles)
	}
	if titles := report.Titles("de_DE"); titles != nil {
		t.Errorf("expected nil titles for absent locale, got %v", titles)
	}
}
