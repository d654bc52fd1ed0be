package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// FailureKind classifies why a probe failed.
//
// Design decision: failures are modeled as a plain enum value rather than
// wrapped error values because outcomes cross a concurrency boundary and are
// persisted to disk. An enum survives JSON round-trips and comparison with
// ==, which a generic error value does not.
type FailureKind int

const (
	// FailureNone means the probe succeeded.
	FailureNone FailureKind = iota

	// FailureUnreachable means the connection through Tor could not be
	// established (circuit failure, service offline, SOCKS error).
	FailureUnreachable

	// FailureTimeout means the request exceeded the per-probe timeout.
	FailureTimeout

	// FailureMalformed means a response was received but did not decode
	// into the expected metadata schema.
	FailureMalformed

	// FailureHTTPError means the instance answered with a non-2xx status.
	FailureHTTPError
)

// failureKindNames maps each kind to its persisted string form.
var failureKindNames = map[FailureKind]string{
	FailureNone:        "",
	FailureUnreachable: "unreachable",
	FailureTimeout:     "timeout",
	FailureMalformed:   "malformed",
	FailureHTTPError:   "http_error",
}

// String returns the persisted string form of the failure kind.
func (k FailureKind) String() string {
	if name, ok := failureKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// MarshalJSON encodes the failure kind as its string form so that persisted
// scan output remains readable and stable across versions.
func (k FailureKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// ErrUnknownFailureKind is returned when decoding an unrecognized failure kind.
var ErrUnknownFailureKind = errors.New("unknown failure kind")

// UnmarshalJSON decodes the string form written by MarshalJSON.
func (k *FailureKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for kind, name := range failureKindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownFailureKind, s)
}

// Outcome is the result of probing a single instance. Exactly one Outcome
// exists per scanned instance, whether the probe succeeded or failed.
//
// Design decision: success and failure are distinguished by the Available
// flag plus a nil-or-not Metadata pointer rather than a nullable field on an
// always-present record. This keeps "scanned but failed" unambiguous in both
// the in-memory representation and the persisted JSON.
type Outcome struct {
	// Instance is the directory entry this outcome belongs to.
	Instance Instance `json:"instance"`

	// Available reports whether the probe succeeded.
	Available bool `json:"available"`

	// Metadata holds the decoded metadata document. Nil when Available
	// is false.
	Metadata *Metadata `json:"metadata"`

	// Failure classifies the failure. FailureNone when Available is true.
	Failure FailureKind `json:"failure,omitempty"`

	// Error is the diagnostic message for a failed probe. Informational
	// only; programmatic handling should use Failure.
	Error string `json:"error,omitempty"`
}

// NewSuccessOutcome creates the outcome for a successful probe.
func NewSuccessOutcome(instance Instance, metadata *Metadata) Outcome {
	return Outcome{
		Instance:  instance,
		Available: true,
		Metadata:  metadata,
	}
}

// NewFailureOutcome creates the outcome for a failed probe.
// The error may be nil when only the kind is known.
func NewFailureOutcome(instance Instance, kind FailureKind, err error) Outcome {
	outcome := Outcome{
		Instance: instance,
		Failure:  kind,
	}
	if err != nil {
		outcome.Error = err.Error()
	}
	return outcome
}
