// Package models defines data types for the health audit ledger.
package models

import "time"

// GenesisDigest is the well-known previous_digest of the first chain entry.
// It matches the 64-zero SHA-256 placeholder used by existing WellAlly
// archives, so exports remain verifiable across deployments.
const GenesisDigest = "0000000000000000000000000000000000000000000000000000000000000000"

// Entry is an immutable record of one action against a sensitive resource.
// Entries are created only by the ledger's append path and are never
// mutated afterwards.
type Entry struct {
	Sequence       uint64         `json:"sequence"`
	Timestamp      time.Time      `json:"timestamp"`
	Actor          string         `json:"actor"`
	Action         string         `json:"action"`
	ResourceType   string         `json:"resource_type"`
	ResourceID     string         `json:"resource_id"`
	Details        map[string]any `json:"details,omitempty"`
	PreviousDigest string         `json:"previous_digest"`
	Digest         string         `json:"digest"`
}

// Candidate carries the caller-supplied fields of an entry before the
// ledger assigns sequence, timestamp and digests.
type Candidate struct {
	Actor        string         `json:"actor"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details,omitempty"`
}

// Validate checks the required identity fields. Details are validated
// separately during canonicalization.
func (c Candidate) Validate() error {
	if c.Actor == "" {
		return ErrMissingActor
	}
	if c.Action == "" {
		return ErrMissingAction
	}
	if c.ResourceType == "" {
		return ErrMissingResourceType
	}
	if c.ResourceID == "" {
		return ErrMissingResourceID
	}
	return nil
}

// LedgerStats is a point-in-time summary of the chain head.
type LedgerStats struct {
	EntryCount    int        `json:"entry_count"`
	LastSequence  *uint64    `json:"last_sequence,omitempty"`
	LastDigest    string     `json:"last_digest"`
	LastTimestamp *time.Time `json:"last_timestamp,omitempty"`
}

// IntegrityFailure classifies why chain verification failed.
type IntegrityFailure string

const (
	FailureHashMismatch IntegrityFailure = "hash_mismatch"
	FailureBrokenLink   IntegrityFailure = "broken_link"
	FailureOutOfOrder   IntegrityFailure = "out_of_order"
)

// VerificationReport is the result of walking the hash chain.
// When Valid is false, FailedSequence identifies the first offending entry.
// Integrity failures are reported, never repaired; re-chaining past a break
// would destroy the evidentiary value of the failure.
type VerificationReport struct {
	Valid          bool             `json:"valid"`
	CheckedCount   int              `json:"checked_count"`
	FailedSequence uint64           `json:"failed_sequence,omitempty"`
	Reason         IntegrityFailure `json:"reason,omitempty"`
}

// AuditQueryOpts holds filters for querying the ledger. All set filters are
// combined with logical AND; results are returned in ascending sequence
// order (chronological).
type AuditQueryOpts struct {
	Actor        string
	ResourceType string
	ResourceID   string
	Action       string
	Since        *time.Time
	Until        *time.Time
	Limit        int
	Offset       int
}
