package aggregate

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/nao1215/sdstatus/internal/model"
)

// successOutcome is a small helper for building reachable instances.
func successOutcome(title string, locales ...string) model.Outcome {
	return model.NewSuccessOutcome(
		model.Instance{Title: title, OnionAddress: title + ".onion"},
		&model.Metadata{SupportedLanguages: locales},
	)
}

// TestLocaleReport tests report construction from mixed scan results.
func TestLocaleReport(t *testing.T) {
	t.Parallel()

	t.Run("failures are excluded but do not fail aggregation", func(t *testing.T) {
		t.Parallel()

		result := model.ScanResult{
			Outcomes: []model.Outcome{
				successOutcome("Alpha", "en", "fr"),
				successOutcome("Beta", "en"),
				model.NewFailureOutcome(
					model.Instance{Title: "Gamma", OnionAddress: "gamma.onion"},
					model.FailureUnreachable,
					errors.New("down"),
				),
			},
		}

		report := LocaleReport(result)

		expected := map[string][]string{
			"en": {"Alpha", "Beta"},
			"fr": {"Alpha"},
		}
		if !reflect.DeepEqual(report.Locales, expected) {
			t.Errorf("got %v, expected %v", report.Locales, expected)
		}
	})

	t.Run("empty scan yields empty report", func(t *testing.T) {
		t.Parallel()

		report := LocaleReport(model.ScanResult{})
		if len(report.Locales) != 0 {
			t.Errorf("expected empty report, got %v", report.Locales)
		}
	})

	t.Run("all failures yield empty report", func(t *testing.T) {
		t.Parallel()

		result := model.ScanResult{
			Outcomes: []model.Outcome{
				model.NewFailureOutcome(model.Instance{Title: "A"}, model.FailureTimeout, nil),
				model.NewFailureOutcome(model.Instance{Title: "B"}, model.FailureHTTPError, nil),
			},
		}

		report := LocaleReport(result)
		if len(report.Locales) != 0 {
			t.Errorf("expected empty report, got %v", report.Locales)
		}
	})

	t.Run("duplicate locales in one instance count once", func(t *testing.T) {
		t.Parallel()

		result := model.ScanResult{
			Outcomes: []model.Outcome{
				successOutcome("Alpha", "en", "en", "en"),
			},
		}

		report := LocaleReport(result)
		if got := report.Locales["en"]; len(got) != 1 || got[0] != "Alpha" {
			t.Errorf("expected [Alpha], got %v", got)
		}
	})

	t.Run("shared titles collapse into one entry", func(t *testing.T) {
		t.Parallel()

		// Two distinct instances with the same organization title.
		result := model.ScanResult{
			Outcomes: []model.Outcome{
				model.NewSuccessOutcome(
					model.Instance{Title: "Twin", OnionAddress: "first.onion"},
					&model.Metadata{SupportedLanguages: []string{"en"}},
				),
				model.NewSuccessOutcome(
					model.Instance{Title: "Twin", OnionAddress: "second.onion"},
					&model.Metadata{SupportedLanguages: []string{"en"}},
				),
			},
		}

		report := LocaleReport(result)
		if got := report.Locales["en"]; len(got) != 1 {
			t.Errorf("expected one title for shared name, got %v", got)
		}
	})

	t.Run("locale codes are case-sensitive", func(t *testing.T) {
		t.Parallel()

		result := model.ScanResult{
			Outcomes: []model.Outcome{
				successOutcome("Alpha", "en_US", "EN_US"),
			},
		}

		report := LocaleReport(result)
		if len(report.Locales) != 2 {
			t.Errorf("expected en_US and EN_US as distinct keys, got %v", report.Locales)
		}
	})

	t.Run("titles are sorted within each locale", func(t *testing.T) {
		t.Parallel()

		result := model.ScanResult{
			Outcomes: []model.Outcome{
				successOutcome("Zulu", "en"),
				successOutcome("Alpha", "en"),
				successOutcome("Mike", "en"),
			},
		}

		report := LocaleReport(result)
		expected := []string{"Alpha", "Mike", "Zulu"}
		if !reflect.DeepEqual(report.Locales["en"], expected) {
			t.Errorf("expected sorted titles %v, got %v", expected, report.Locales["en"])
		}
	})

	t.Run("persisted scan aggregates identically", func(t *testing.T) {
		t.Parallel()

		result := model.ScanResult{
			Outcomes: []model.Outcome{
				successOutcome("Alpha", "en", "fr"),
				successOutcome("Beta", "en"),
				model.NewFailureOutcome(
					model.Instance{Title: "Gamma", OnionAddress: "gamma.onion"},
					model.FailureTimeout,
					errors.New("deadline exceeded"),
				),
			},
		}

		data, err := json.Marshal(result)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}

		var reloaded model.ScanResult
		if err := json.Unmarshal(data, &reloaded); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}

		direct := LocaleReport(result)
		viaDisk := LocaleReport(reloaded)

		if !reflect.DeepEqual(direct.Locales, viaDisk.Locales) {
			t.Errorf("reloaded scan aggregates differently: %v vs %v", direct.Locales, viaDisk.Locales)
		}
	})

	t.Run("aggregation is idempotent", func(t *testing.T) {
		t.Parallel()

		result := model.ScanResult{
			Outcomes: []model.Outcome{
				successOutcome("Alpha", "en", "fr", "de"),
				successOutcome("Beta", "fr"),
				model.NewFailureOutcome(model.Instance{Title: "Gamma"}, model.FailureMalformed, nil),
			},
		}

		first := LocaleReport(result)
		second := LocaleReport(result)

		if !reflect.DeepEqual(first.Locales, second.Locales) {
			t.Errorf("aggregation not idempotent: %v vs %v", first.Locales, second.Locales)
		}
	})
}
