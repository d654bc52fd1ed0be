package scanner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/sdstatus/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the default ceiling on in-flight probes.
// Each probe occupies a Tor circuit; eight keeps the local Tor daemon
// comfortable while still scanning a full directory in a few minutes.
const DefaultConcurrency = 8

// Prober is the per-instance probe the scanner fans out.
// Implementations must be safe for concurrent use and must never panic:
// every call yields an outcome, success or failure.
type Prober interface {
	Probe(ctx context.Context, instance model.Instance) model.Outcome
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, instance model.Instance) model.Outcome

// Probe implements Prober.
func (f ProberFunc) Probe(ctx context.Context, instance model.Instance) model.Outcome {
	return f(ctx, instance)
}

// Scanner runs a Prober over a list of instances under a concurrency
// ceiling and produces a complete ScanResult.
//
// Design decision: we use errgroup.SetLimit rather than a hand-rolled
// semaphore or worker pool. The limit is the counting permit: a probe
// goroutine cannot start until a slot frees up, and the slot is released
// on every exit path because goroutine termination is the release.
type Scanner struct {
	// prober performs the individual probes.
	prober Prober

	// concurrency is the maximum number of in-flight probes.
	concurrency int

	// logger is used for per-probe progress and failure logging.
	logger *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithConcurrency sets the maximum number of concurrent probes.
// Values below one are ignored, keeping the default.
func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithLogger sets a custom logger for the scanner.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// New creates a Scanner that fans out the given prober.
func New(prober Prober, opts ...Option) *Scanner {
	s := &Scanner{
		prober:      prober,
		concurrency: DefaultConcurrency,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s
}

// Scan probes all instances and returns one outcome per instance, in
// input order. The result is complete by construction: each goroutine
// owns exactly one slot of a pre-allocated slice, so no outcome can be
// lost, duplicated, or misordered no matter how probes interleave.
//
// Probe failures never abort the scan; they are recorded as failure
// outcomes and logged. Duplicate instances are probed independently.
// Zero instances returns an empty result without any network activity.
//
// There is no overall scan deadline here. Each probe is bounded by the
// HTTP client's timeout, so total wall time is bounded by
// ceil(N/concurrency) x per-probe timeout; callers wanting a global
// limit can cancel ctx.
func (s *Scanner) Scan(ctx context.Context, instances []model.Instance) model.ScanResult {
	if len(instances) == 0 {
		return model.ScanResult{Outcomes: []model.Outcome{}}
	}

	s.logger.Info("starting scan",
		"instances", len(instances),
		"concurrency", s.concurrency,
	)
	startTime := time.Now()

	outcomes := make([]model.Outcome, len(instances))
	var mu sync.Mutex

	// Plain errgroup without WithContext: a probe failure is data, not an
	// error, so nothing may cancel sibling probes mid-scan.
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, instance := range instances {
		g.Go(func() error {
			s.logger.Debug("probing instance",
				"title", instance.Title,
				"address", instance.OnionAddress,
				"index", i+1,
				"total", len(instances),
			)

			outcome := s.prober.Probe(ctx, instance)

			mu.Lock()
			outcomes[i] = outcome
			mu.Unlock()

			if !outcome.Available {
				s.logger.Warn("probe failed",
					"title", instance.Title,
					"address", instance.OnionAddress,
					"kind", outcome.Failure.String(),
					"error", outcome.Error,
				)
			}

			return nil
		})
	}

	// Every goroutine returns nil, so Wait here is purely the completion
	// barrier: it returns once all len(instances) outcomes are in place.
	_ = g.Wait() //nolint:errcheck // goroutines never return errors

	result := model.ScanResult{Outcomes: outcomes}

	s.logger.Info("scan complete",
		"instances", len(instances),
		"available", result.AvailableCount(),
		"failed", result.FailureCount(),
		"elapsed", time.Since(startTime),
	)

	return result
}
