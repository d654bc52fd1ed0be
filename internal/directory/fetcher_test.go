package directory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestFetcherFetch tests directory fetching against a mock directory server.
func TestFetcherFetch(t *testing.T) {
	t.Parallel()

	t.Run("decodes instances in response order", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[
				{"title": "Alpha", "onion_address": "alpha.onion", "landing_page_url": "https://alpha.example.com"},
				{"title": "Beta", "onion_address": "beta.onion"}
			]`))
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)
		instances, err := fetcher.Fetch(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(instances) != 2 {
			t.Fatalf("expected 2 instances, got %d", len(instances))
		}
		if instances[0].Title != "Alpha" || instances[1].Title != "Beta" {
			t.Errorf("expected response order [Alpha Beta], got [%s %s]",
				instances[0].Title, instances[1].Title)
		}
		if instances[0].LandingPageURL != "https://alpha.example.com" {
			t.Errorf("unexpected landing page URL: %q", instances[0].LandingPageURL)
		}
	})

	t.Run("empty directory yields empty list", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)
		instances, err := fetcher.Fetch(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(instances) != 0 {
			t.Errorf("expected no instances, got %d", len(instances))
		}
	})

	t.Run("non-2xx status returns ErrUnavailable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)
		_, err := fetcher.Fetch(context.Background())
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("unreachable endpoint returns ErrUnavailable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
		server.Close() // closed before use

		fetcher := NewFetcher(http.DefaultClient, server.URL)
		_, err := fetcher.Fetch(context.Background())
		if !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable, got %v", err)
		}
	})

	t.Run("invalid JSON returns ErrMalformed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"not": "an array"`))
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)
		_, err := fetcher.Fetch(context.Background())
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("wrong JSON shape returns ErrMalformed", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"title": "not a list"}`))
		}))
		defer server.Close()

		fetcher := NewFetcher(server.Client(), server.URL)
		_, err := fetcher.Fetch(context.Background())
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fetcher := NewFetcher(server.Client(), server.URL)
		if _, err := fetcher.Fetch(ctx); !errors.Is(err, ErrUnavailable) {
			t.Errorf("expected ErrUnavailable for cancelled context, got %v", err)
		}
	})
}
