// Package log provides structured logging for sdstatus on top of the
// standard slog package.
//
// The RedactHandler masks attribute values that look like credentials
// (cookies, authorization headers, tokens) before they reach the
// underlying handler. sdstatus itself sends no credentials, but onion
// endpoints answer with arbitrary headers and operators paste arbitrary
// proxy URLs, so log lines are sanitized even in verbose mode where logs
// are most likely to be shared in bug reports.
package log
