// Package probe performs the per-instance metadata probe.
//
// A probe is one HTTP GET of an instance's /metadata endpoint through Tor,
// decoded into a model.Metadata document. The prober never returns an
// error: every call produces a model.Outcome, tagged with a failure kind
// (unreachable, timeout, malformed, http_error) when the probe fails.
// That contract is what lets the scanner run probes concurrently without
// any failure handling at the orchestration layer.
package probe
