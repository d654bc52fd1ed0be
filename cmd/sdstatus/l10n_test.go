package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/nao1215/sdstatus/internal/model"
)

// scanOutputJSON is the JSON output of a scan with two available
// instances and one timed-out instance.
const scanOutputJSON = `[
  {
    "instance": {"title": "Alpha", "onion_address": "alpha.onion"},
    "available": true,
    "metadata": {
      "sd_version": "2.8.0",
      "server_os": "",
      "gpg_fpr": "",
      "v3_source_url": "",
      "supported_languages": ["en", "fr"]
    }
  },
  {
    "instance": {"title": "Beta", "onion_address": "beta.onion"},
    "available": true,
    "metadata": {
      "sd_version": "2.7.0",
      "server_os": "",
      "gpg_fpr": "",
      "v3_source_url": "",
      "supported_languages": ["en"]
    }
  },
  {
    "instance": {"title": "Gamma", "onion_address": "gamma.onion"},
    "available": false,
    "metadata": null,
    "failure": "timeout",
    "error": "context deadline exceeded"
  }
]`

func writeScanOutput(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte(scanOutputJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestL10nCmd(t *testing.T) {
	t.Parallel()

	input := writeScanOutput(t)
	output := filepath.Join(t.TempDir(), "report.txt")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"l10n", input, "--output", output})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	got := string(data)
	want := "en (English) (2):\n  Alpha\n  Beta\n\nfr (French) (1):\n  Alpha\n\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestL10nCmdJSONFormat(t *testing.T) {
	t.Parallel()

	input := writeScanOutput(t)
	output := filepath.Join(t.TempDir(), "report.json")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"l10n", input, "--format", "json", "--output", output})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := `{"en":["Alpha","Beta"],"fr":["Alpha"]}`
	if got := strings.TrimSpace(string(data)); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestL10nCmdLatestFromDB(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedScanDB(t, dir, sampleScanResult())
	output := filepath.Join(t.TempDir(), "report.txt")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"l10n", "--latest", "--db-dir", dir, "--output", output})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	got := string(data)
	want := "en (English) (1):\n  Alpha\n\nfr (French) (1):\n  Alpha\n\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestL10nCmdByID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	ids := seedScanDB(t, dir, sampleScanResult(), model.ScanResult{
		Outcomes: []model.Outcome{
			model.NewSuccessOutcome(
				model.Instance{Title: "Beta", OnionAddress: "beta.onion"},
				&model.Metadata{Version: "2.7.0", SupportedLanguages: []string{"de"}},
			),
		},
	})
	output := filepath.Join(t.TempDir(), "report.txt")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"l10n", "--id", strconv.FormatInt(ids[0], 10), "--db-dir", dir, "--output", output})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	// The first run, not the newer one.
	got := string(data)
	want := "en (English) (1):\n  Alpha\n\nfr (French) (1):\n  Alpha\n\n"
	if got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestL10nCmdUnknownID(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	seedScanDB(t, dir, sampleScanResult())

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"l10n", "--id", "999", "--db-dir", dir})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for unknown scan ID")
	}
}

func TestL10nCmdIDConflictsWithLatest(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"l10n", "--latest", "--id", "1"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error when --latest is combined with --id")
	}
}

func TestL10nCmdNoInput(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"l10n"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error when no input is given")
	}
}

func TestL10nCmdLatestConflictsWithFile(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"l10n", "--latest", "results.json"})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error when --latest is combined with a file")
	}
}

func TestL10nCmdMissingInputFile(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"l10n", filepath.Join(t.TempDir(), "nope.json")})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing input file")
	}
}

func TestL10nCmdMalformedInput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	cmd := NewRootCmd()
	cmd.SetArgs([]string{"l10n", path})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for malformed input")
	}
}
