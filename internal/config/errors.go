package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages. Using errors.New() here rather than fmt.Errorf()
// because we don't need to include dynamic values in these messages.
var (
	// ErrNoDirectoryURL is returned when the directory URL is empty and
	// no explicit targets are given. Without either there is nothing to scan.
	ErrNoDirectoryURL = errors.New("no directory URL: provide --directory or explicit onion addresses")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate connection failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	// A concurrency of zero would mean no probes run at all.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidFormat is returned when the output format is not one of
	// "json", "pp", or "markdown".
	ErrInvalidFormat = errors.New(`invalid format: must be "json", "pp", or "markdown"`)

	// ErrInvalidTorStartupTimeout is returned when the embedded Tor startup
	// timeout is not positive. Only checked when the embedded daemon is used.
	ErrInvalidTorStartupTimeout = errors.New("invalid tor startup timeout: must be positive")
)
