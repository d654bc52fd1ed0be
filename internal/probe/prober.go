package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"github.com/nao1215/sdstatus/internal/model"
	"github.com/nao1215/sdstatus/internal/tor"
)

// defaultMaxBodySize limits the metadata response size. Metadata documents
// are under a kilobyte; 1MB is already absurdly generous.
const defaultMaxBodySize = 1 * 1024 * 1024

// Prober fetches and decodes the /metadata document of a single instance.
//
// A Prober is safe for concurrent use: it holds only the shared HTTP
// client (itself concurrency-safe) and immutable configuration, and
// Probe reads nothing but its arguments.
type Prober struct {
	// client is the HTTP client, routed through Tor in production.
	client *http.Client

	// maxBodySize limits how much of the response body is read.
	maxBodySize int64
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithMaxBodySize overrides the response size limit.
func WithMaxBodySize(size int64) ProberOption {
	return func(p *Prober) {
		p.maxBodySize = size
	}
}

// NewProber creates a Prober using the given HTTP client.
// The client's timeout is the per-probe timeout.
func NewProber(client *http.Client, opts ...ProberOption) *Prober {
	p := &Prober{
		client:      client,
		maxBodySize: defaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Probe issues exactly one GET against the instance's metadata endpoint
// and returns a tagged outcome. It never returns an error and never
// panics: transport failures, timeouts, bad statuses, and undecodable
// bodies all become failure outcomes.
func (p *Prober) Probe(ctx context.Context, instance model.Instance) model.Outcome {
	url := tor.MetadataURL(instance.OnionAddress)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.NewFailureOutcome(instance, model.FailureUnreachable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return model.NewFailureOutcome(instance, classifyTransportError(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.NewFailureOutcome(instance, model.FailureHTTPError,
			fmt.Errorf("metadata endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBodySize))
	if err != nil {
		return model.NewFailureOutcome(instance, classifyTransportError(err), err)
	}

	var metadata model.Metadata
	if err := json.Unmarshal(body, &metadata); err != nil {
		return model.NewFailureOutcome(instance, model.FailureMalformed, err)
	}

	return model.NewSuccessOutcome(instance, &metadata)
}

// classifyTransportError distinguishes timeouts from other transport
// failures. http.Client wraps timeouts in url.Error with Timeout() true;
// context deadlines surface as context.DeadlineExceeded.
func classifyTransportError(err error) model.FailureKind {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.FailureTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.FailureTimeout
	}

	return model.FailureUnreachable
}
