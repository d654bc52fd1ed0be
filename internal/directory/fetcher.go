package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nao1215/sdstatus/internal/model"
)

// Directory fetch errors. Both are fatal for a scan run: without the
// instance list there is nothing to do.
var (
	// ErrUnavailable is returned when the directory endpoint could not be
	// reached or answered with a non-2xx status.
	ErrUnavailable = errors.New("securedrop directory unavailable")

	// ErrMalformed is returned when the directory response does not decode
	// into the expected instance list.
	ErrMalformed = errors.New("securedrop directory response malformed")
)

// defaultMaxBodySize limits the directory response size. The real
// directory is a few hundred kilobytes; 5MB leaves generous headroom
// while preventing memory exhaustion from a misbehaving endpoint.
const defaultMaxBodySize = 5 * 1024 * 1024

// Fetcher retrieves the instance list from the SecureDrop directory.
//
// Design decision: the fetcher takes a pre-configured *http.Client rather
// than building one, so the same Tor-routed client is shared with the
// prober and tests can inject an httptest client.
type Fetcher struct {
	// client is the HTTP client, routed through Tor in production.
	client *http.Client

	// url is the directory endpoint.
	url string

	// maxBodySize limits how much of the response body is read.
	maxBodySize int64
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithMaxBodySize overrides the response size limit.
func WithMaxBodySize(size int64) FetcherOption {
	return func(f *Fetcher) {
		f.maxBodySize = size
	}
}

// NewFetcher creates a Fetcher for the given directory URL.
func NewFetcher(client *http.Client, url string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:      client,
		url:         url,
		maxBodySize: defaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs one GET against the directory endpoint and returns the
// instances in response order. No retries: a failed directory fetch aborts
// the whole run, so retrying belongs to the operator, not this code.
func (f *Fetcher) Fetch(ctx context.Context) ([]model.Instance, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var instances []model.Instance
	if err := json.Unmarshal(body, &instances); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return instances, nil
}
