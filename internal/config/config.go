package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen based on typical Tor network characteristics
// and the behavior of the hosted SecureDrop directory.
const (
	// DefaultDirectoryURL is the SecureDrop directory API endpoint served
	// as a Tor hidden service. The same data is available on the clearnet
	// at https://securedrop.org/api/v1/directory/, but sdstatus fetches
	// through Tor so the whole scan stays inside the Tor network.
	DefaultDirectoryURL = "http://sdolvtfhatvsysc6l34d65ymdwxcujausv7k5jk4cy5ttzhjoi6fzvyd.onion/api/v1/directory/"

	// DefaultProxyAddress is the standard Tor SOCKS5 proxy address.
	// Port 9050 is the default for the Tor daemon's SOCKS port.
	// We use 127.0.0.1 instead of localhost to avoid DNS resolution overhead
	// and potential issues with IPv6 resolution on some systems.
	DefaultProxyAddress = "127.0.0.1:9050"

	// DefaultTimeout is set to 30 seconds because a SecureDrop instance
	// that cannot serve /metadata within that window is effectively down
	// for sources. Tor adds latency, but metadata responses are tiny.
	DefaultTimeout = 30 * time.Second

	// DefaultConcurrency of 8 concurrent probes balances scan time against
	// circuit pressure on the local Tor daemon. The directory lists on the
	// order of 50-100 instances, so a full scan completes in a few minutes.
	DefaultConcurrency = 8

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap. 3 minutes is typically sufficient for most
	// network conditions, but may need to be increased for slow connections.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultFormat is the human-readable pretty-print output format.
	DefaultFormat = FormatPP

	// AppName is the application name used for XDG directory paths.
	AppName = "sdstatus"
)

// Output format names accepted by the --format flag.
const (
	// FormatJSON outputs scan results as a JSON array of outcomes.
	// This format round-trips through the l10n subcommand.
	FormatJSON = "json"

	// FormatPP outputs a human-readable pretty-printed report.
	FormatPP = "pp"

	// FormatMarkdown outputs a GitHub Flavored Markdown report with
	// availability and metadata tables.
	FormatMarkdown = "markdown"
)

// Config holds all configuration options for sdstatus.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// DirectoryURL is the URL of the SecureDrop directory API.
	// The scan subcommand fetches the instance list from this endpoint.
	DirectoryURL string

	// ProxyAddress is the address of the Tor SOCKS5 proxy in "host:port"
	// format. Only used when UseExternalTor is true; otherwise the embedded
	// Tor daemon picks its own port.
	ProxyAddress string

	// UseExternalTor disables the embedded Tor daemon and uses an external
	// proxy at ProxyAddress. When false (default), sdstatus automatically
	// starts an embedded Tor daemon.
	//
	// Note: The embedded Tor daemon takes 1-3 minutes to bootstrap and
	// connect to the Tor network on first start.
	UseExternalTor bool

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon to start and bootstrap. Only used when UseExternalTor is false.
	TorStartupTimeout time.Duration

	// Timeout is the per-request timeout for the directory fetch and for
	// each metadata probe. This applies to individual requests, not the
	// overall scan duration.
	Timeout time.Duration

	// Concurrency is the maximum number of simultaneous metadata probes.
	// Higher values shorten the scan but put more circuit pressure on the
	// Tor daemon.
	Concurrency int

	// Format selects the report output: FormatJSON, FormatPP, or
	// FormatMarkdown.
	Format string

	// OutputFile is the output file path for the report.
	// When empty, the report is written to stdout.
	OutputFile string

	// SaveToDB indicates whether to save scan results to the local
	// history database under DBDir.
	SaveToDB bool

	// DBDir is the directory path for the scan history database.
	// Defaults to the XDG data directory (~/.local/share/sdstatus on Linux).
	DBDir string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .sdstatus in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Targets is an optional list of onion addresses to scan instead of
	// the directory listing. When empty, the directory is fetched.
	Targets []string
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, the
// directory URL). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		DirectoryURL:      DefaultDirectoryURL,
		ProxyAddress:      DefaultProxyAddress,
		TorStartupTimeout: DefaultTorStartupTimeout,
		Timeout:           DefaultTimeout,
		Concurrency:       DefaultConcurrency,
		Format:            DefaultFormat,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for sdstatus.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/sdstatus
// On macOS: ~/Library/Application Support/sdstatus
// On Windows: %LOCALAPPDATA%\sdstatus
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sdstatus.
// This follows the XDG Base Directory Specification.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// The directory URL is the only way to discover instances unless
	// explicit targets are given
	if c.DirectoryURL == "" && len(c.Targets) == 0 {
		return ErrNoDirectoryURL
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// Concurrency must be positive; zero would mean no probing
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}

	switch c.Format {
	case FormatJSON, FormatPP, FormatMarkdown:
	default:
		return ErrInvalidFormat
	}

	if !c.UseExternalTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}

	return nil
}
