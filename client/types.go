package client

import "time"

// Entry is a sealed record in the audit chain.
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

// AppendRequest is the payload for the generic append endpoint.
type AppendRequest struct {
	Actor        string         `json:"actor"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details,omitempty"`
}

// ModificationRequest is the payload for recording a write-style action.
type ModificationRequest struct {
	Actor        string         `json:"actor"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Changes      map[string]any `json:"changes,omitempty"`
}

// ConsentRequest is the payload for recording a consent grant or revocation.
type ConsentRequest struct {
	Actor     string `json:"actor"`
	Action    string `json:"action"`
	ConsentID string `json:"consent_id"`
	Reason    string `json:"reason,omitempty"`
}

// QueryOptions filters a ledger query. All set filters combine with AND.
type QueryOptions struct {
	Actor        string
	ResourceType string
	ResourceID   string
	Action       string
	Since        *time.Time
	Until        *time.Time
	Limit        int
	Offset       int
}

// VerificationReport is the result of a chain verification run.
type VerificationReport struct {
	Valid          bool   `json:"valid"`
	CheckedCount   int    `json:"checked_count"`
	FailedSequence uint64 `json:"failed_sequence,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// VerifyOptions selects a chain suffix to verify. The zero value verifies
// the whole chain from genesis.
type VerifyOptions struct {
	FromSequence   uint64
	PreviousDigest string
}

// Export is the portable export envelope.
type Export struct {
	SchemaVersion    int       `json:"schema_version"`
	CanonicalVersion int       `json:"canonical_version"`
	ExportID         string    `json:"export_id"`
	ExportedAt       time.Time `json:"exported_at"`
	Genesis          string    `json:"genesis"`
	EntryCount       int       `json:"entry_count"`
	LastDigest       string    `json:"last_digest"`
	Entries          []Entry   `json:"entries"`
}

// HealthResponse is returned by the liveness endpoint.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Archive       string  `json:"archive"`
	SchemaVersion int     `json:"schema_version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyResponse is returned by the readiness endpoint.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// StatsResponse is returned by the stats endpoint.
type StatsResponse struct {
	EntryCount    int     `json:"entry_count"`
	LastSequence  *uint64 `json:"last_sequence,omitempty"`
	LastDigest    string  `json:"last_digest"`
	LastTimestamp *string `json:"last_timestamp,omitempty"`
	FeedClients   int     `json:"feed_clients"`
}
