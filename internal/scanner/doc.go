// Package scanner orchestrates concurrent metadata probes.
//
// The Scanner runs one probe per instance with a fixed concurrency
// ceiling and collects exactly one outcome per instance, whatever happens
// to individual probes. This is the only component in sdstatus with real
// concurrency coordination: the directory fetcher, prober, and aggregator
// are all sequential.
package scanner
