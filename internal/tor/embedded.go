package tor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/tornago"
)

// Embedded manages an embedded Tor daemon using tornago. It lets sdstatus
// work out of the box without an external Tor installation: the daemon is
// started before the scan and stopped when the command exits.
//
// Note: starting the embedded daemon takes 1-3 minutes because Tor has to
// download directory information and build initial circuits.
type Embedded struct {
	// process is the running Tor daemon process.
	process *tornago.TorProcess

	// socksAddr is the SOCKS5 proxy address, set after a successful start.
	socksAddr string

	// controlAddr is the control port address, set after a successful start.
	controlAddr string

	// startupTimeout is the maximum time to wait for Tor to bootstrap.
	startupTimeout time.Duration
}

// EmbeddedOption configures an Embedded instance.
type EmbeddedOption func(*Embedded)

// WithStartupTimeout sets the maximum time to wait for Tor to bootstrap.
func WithStartupTimeout(timeout time.Duration) EmbeddedOption {
	return func(e *Embedded) {
		e.startupTimeout = timeout
	}
}

// NewEmbedded creates a new embedded Tor manager.
// Call Start to actually launch the Tor daemon.
func NewEmbedded(opts ...EmbeddedOption) *Embedded {
	e := &Embedded{
		startupTimeout: 3 * time.Minute,
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Start launches the embedded Tor daemon and waits for it to bootstrap.
// Returns an error if Tor fails to start within the startup timeout.
func (e *Embedded) Start(ctx context.Context) error {
	// ":0" lets the OS assign available ports automatically, so multiple
	// sdstatus invocations don't fight over fixed ports.
	launchCfg, err := tornago.NewTorLaunchConfig(
		tornago.WithTorSocksAddr(":0"),
		tornago.WithTorControlAddr(":0"),
		tornago.WithTorStartupTimeout(e.startupTimeout),
	)
	if err != nil {
		return fmt.Errorf("failed to create Tor launch config: %w", err)
	}

	// Blocks until Tor is fully bootstrapped or the timeout expires.
	process, err := tornago.StartTorDaemon(launchCfg)
	if err != nil {
		return fmt.Errorf("failed to start embedded Tor daemon: %w", err)
	}

	select {
	case <-ctx.Done():
		_ = process.Stop() //nolint:errcheck // Best effort cleanup
		return ctx.Err()
	default:
	}

	e.process = process
	e.socksAddr = process.SocksAddr()
	e.controlAddr = process.ControlAddr()

	return nil
}

// Stop gracefully shuts down the embedded Tor daemon.
// Safe to call multiple times or on an unstarted instance.
func (e *Embedded) Stop() error {
	if e.process == nil {
		return nil
	}

	err := e.process.Stop()
	e.process = nil
	return err
}

// SocksAddr returns the SOCKS5 proxy address of the running Tor daemon,
// or an empty string if Tor is not running.
func (e *Embedded) SocksAddr() string {
	return e.socksAddr
}

// ControlAddr returns the control port address of the running Tor daemon,
// or an empty string if Tor is not running.
func (e *Embedded) ControlAddr() string {
	return e.controlAddr
}

// IsRunning reports whether the embedded Tor daemon is currently running.
func (e *Embedded) IsRunning() bool {
	return e.process != nil
}

// NewClient creates a Tor client using the embedded daemon's SOCKS proxy.
// Returns an error if the daemon is not running.
func (e *Embedded) NewClient(timeout time.Duration) (*Client, error) {
	if !e.IsRunning() {
		return nil, errors.New("embedded Tor daemon is not running")
	}

	return NewClient(e.socksAddr, timeout)
}
