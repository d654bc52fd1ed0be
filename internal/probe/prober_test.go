package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/sdstatus/internal/model"
)

// metadataJSON is a representative /metadata response body.
const metadataJSON = `{
	"sd_version": "2.8.0",
	"server_os": "24.04",
	"gpg_fpr": "0102030405060708090A0B0C0D0E0F1011121314",
	"v3_source_url": "http://sourceinterface.onion",
	"supported_languages": ["en_US", "fr_FR", "de_DE"]
}`

// testInstance builds an instance pointing at the given test server.
// The prober constructs "http://<address>/metadata", so we hand it the
// server's host:port as the address.
func testInstance(t *testing.T, serverURL string) model.Instance {
	t.Helper()

	u, err := url.Parse(serverURL)
	if err != nil {
		t.Fatalf("parse server URL: %v", err)
	}
	return model.Instance{Title: "Test Instance", OnionAddress: u.Host}
}

// TestProberProbe tests probe outcomes against mock metadata endpoints.
func TestProberProbe(t *testing.T) {
	t.Parallel()

	t.Run("successful probe decodes metadata", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/metadata" {
				t.Errorf("expected path /metadata, got %s", r.URL.Path)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(metadataJSON))
		}))
		defer server.Close()

		prober := NewProber(server.Client())
		outcome := prober.Probe(context.Background(), testInstance(t, server.URL))

		if !outcome.Available {
			t.Fatalf("expected success, got failure %v: %s", outcome.Failure, outcome.Error)
		}
		if outcome.Metadata.Version != "2.8.0" {
			t.Errorf("expected version 2.8.0, got %q", outcome.Metadata.Version)
		}
		if len(outcome.Metadata.SupportedLanguages) != 3 {
			t.Errorf("expected 3 languages, got %v", outcome.Metadata.SupportedLanguages)
		}
		if outcome.Instance.Title != "Test Instance" {
			t.Errorf("expected instance carried into outcome, got %q", outcome.Instance.Title)
		}
	})

	t.Run("non-2xx status is FailureHTTPError", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		prober := NewProber(server.Client())
		outcome := prober.Probe(context.Background(), testInstance(t, server.URL))

		if outcome.Available {
			t.Fatal("expected failure outcome")
		}
		if outcome.Failure != model.FailureHTTPError {
			t.Errorf("expected FailureHTTPError, got %v", outcome.Failure)
		}
		if !strings.Contains(outcome.Error, "500") {
			t.Errorf("expected status in diagnostic, got %q", outcome.Error)
		}
	})

	t.Run("undecodable body is FailureMalformed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html>This is not JSON</html>"))
		}))
		defer server.Close()

		prober := NewProber(server.Client())
		outcome := prober.Probe(context.Background(), testInstance(t, server.URL))

		if outcome.Failure != model.FailureMalformed {
			t.Errorf("expected FailureMalformed, got %v", outcome.Failure)
		}
	})

	t.Run("connection failure is FailureUnreachable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		address := testInstance(t, server.URL)
		server.Close() // closed before use

		prober := NewProber(http.DefaultClient)
		outcome := prober.Probe(context.Background(), address)

		if outcome.Failure != model.FailureUnreachable {
			t.Errorf("expected FailureUnreachable, got %v", outcome.Failure)
		}
		if outcome.Metadata != nil {
			t.Error("expected nil metadata on failure")
		}
	})

	t.Run("slow endpoint is FailureTimeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(5 * time.Second):
			case <-r.Context().Done():
			}
		}))
		defer server.Close()

		client := server.Client()
		client.Timeout = 50 * time.Millisecond

		prober := NewProber(client)
		outcome := prober.Probe(context.Background(), testInstance(t, server.URL))

		if outcome.Failure != model.FailureTimeout {
			t.Errorf("expected FailureTimeout, got %v (error: %s)", outcome.Failure, outcome.Error)
		}
	})

	t.Run("expired context is FailureTimeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(5 * time.Second):
			case <-r.Context().Done():
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		prober := NewProber(server.Client())
		outcome := prober.Probe(ctx, testInstance(t, server.URL))

		if outcome.Failure != model.FailureTimeout {
			t.Errorf("expected FailureTimeout, got %v (error: %s)", outcome.Failure, outcome.Error)
		}
	})

	t.Run("oversized body truncates to malformed rather than failing the run", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(metadataJSON))
		}))
		defer server.Close()

		// A 10-byte limit cuts the JSON mid-document.
		prober := NewProber(server.Client(), WithMaxBodySize(10))
		outcome := prober.Probe(context.Background(), testInstance(t, server.URL))

		if outcome.Failure != model.FailureMalformed {
			t.Errorf("expected FailureMalformed for truncated body, got %v", outcome.Failure)
		}
	})
}
