// Package database provides SQLite-based persistence for scan history.
// Each scan run is stored as a JSON snapshot so the l10n subcommand can
// report on a previous scan without re-probing the network.
package database
