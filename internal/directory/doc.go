// Package directory fetches the list of SecureDrop instances from the
// SecureDrop directory API.
//
// The directory is the single source of scan targets when sdstatus runs
// with --directory. One GET request returns a JSON array of instances;
// the order of that array is preserved and becomes the canonical input
// order for the scan. Directory failures are fatal for the run - with no
// instance list there is nothing to scan or aggregate.
package directory
