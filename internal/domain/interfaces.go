// Package domain defines the canonical service interfaces shared across API
// layers (REST, WebSocket, client). Consumers should depend on these
// interfaces rather than re-declaring equivalent ones.
package domain

import (
	"context"

	"github.com/wellally/healthaudit/internal/models"
)

// LedgerWriter defines the append operations. Every write seals a new
// entry into the hash chain; nothing is ever updated or deleted.
type LedgerWriter interface {
	// Append seals a fully caller-specified candidate.
	Append(ctx context.Context, c models.Candidate) (models.Entry, error)

	// LogAccess records a read-style action (view, download, export)
	// against a resource.
	LogAccess(ctx context.Context, actor, action, resourceType, resourceID string, details map[string]any) (models.Entry, error)

	// LogModification records a write-style action (create, update,
	// delete); the action is also stamped into the details under
	// modification_type.
	LogModification(ctx context.Context, actor, action, resourceType, resourceID string, changes map[string]any) (models.Entry, error)

	// LogConsentChange records a consent grant or revocation, with an
	// optional human-readable reason.
	LogConsentChange(ctx context.Context, actor, action, consentID, reason string) (models.Entry, error)
}

// LedgerReader defines the query operations.
type LedgerReader interface {
	GetEntry(ctx context.Context, sequence uint64) (models.Entry, error)
	Query(ctx context.Context, opts models.AuditQueryOpts) ([]models.Entry, bool, error)
	GetResourceHistory(ctx context.Context, resourceType, resourceID string) ([]models.Entry, error)
	GetActorActivity(ctx context.Context, actor string) ([]models.Entry, error)
	Stats(ctx context.Context) (models.LedgerStats, error)
}

// LedgerVerifier walks the hash chain. A zero fromSequence with an empty
// previousDigest verifies the whole chain from genesis.
type LedgerVerifier interface {
	Verify(ctx context.Context, fromSequence uint64, previousDigest string) (models.VerificationReport, error)
}

// LedgerExporter produces the portable export envelope.
type LedgerExporter interface {
	Export(ctx context.Context) (models.ExportFormat, error)
}

// LedgerService is the full audit ledger surface.
type LedgerService interface {
	LedgerWriter
	LedgerReader
	LedgerVerifier
	LedgerExporter
}

// EntryObserver is notified after an entry has been sealed into the
// chain. Observers must not block; slow consumers buffer internally.
type EntryObserver interface {
	EntryAppended(e models.Entry)
}

// Archiver mirrors sealed entries into durable storage. The archive is a
// replica for restart recovery, not an authority: the in-memory chain
// remains the source of truth.
type Archiver interface {
	InsertEntry(ctx context.Context, e models.Entry) error
}
