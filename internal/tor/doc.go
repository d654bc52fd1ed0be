// Package tor provides Tor network connectivity for sdstatus.
//
// All metadata probes go through the Tor network because SecureDrop source
// interfaces are v3 onion services. The package offers two ways to get
// there: an external SOCKS5 proxy (a Tor daemon the user already runs) or
// an embedded Tor daemon managed through the tornago library.
//
// The package also validates v3 onion addresses, including the checksum
// defined by the Tor rendezvous specification, so that typos in directory
// entries or command line arguments are caught before any network activity.
//
// The package is designed to be used with dependency injection - create a
// Client and pass its HTTP client to components that need Tor connectivity
// rather than using global state.
package tor
