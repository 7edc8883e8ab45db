package models

import "time"

// ExportSchemaVersion identifies the export envelope layout. Changes to the
// envelope must be additive only: exports are long-term compliance
// artifacts consumed by external verification tools.
const ExportSchemaVersion = 1

// ExportFormat is the top-level structure of a ledger export: the full
// ordered entry sequence plus enough context (genesis, canonicalization
// version) for an independent verifier to replay the chain.
type ExportFormat struct {
	SchemaVersion    int       `json:"schema_version"`
	CanonicalVersion int       `json:"canonical_version"`
	ExportID         string    `json:"export_id"`
	ExportedAt       time.Time `json:"exported_at"`
	Genesis          string    `json:"genesis"`
	EntryCount       int       `json:"entry_count"`
	LastDigest       string    `json:"last_digest"`
	Entries          []Entry   `json:"entries"`
}
