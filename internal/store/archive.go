package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/wellally/healthaudit/internal/domain"
	"github.com/wellally/healthaudit/internal/models"
)

// ArchiveStore provides data access for the audit_entries table.
type ArchiveStore struct {
	Base
}

// Compile-time check: *ArchiveStore must satisfy domain.Archiver.
var _ domain.Archiver = (*ArchiveStore)(nil)

// NewArchiveStore creates an ArchiveStore.
func NewArchiveStore(base Base) *ArchiveStore {
	return &ArchiveStore{Base: base}
}

// InsertEntry mirrors a sealed chain entry. Inserts are idempotent on
// sequence: replaying an entry that is already archived is a no-op, so
// the startup reconcile can safely re-send the tail of the chain.
func (s *ArchiveStore) InsertEntry(ctx context.Context, e models.Entry) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var detailsJSON []byte
	if e.Details != nil {
		var err error
		detailsJSON, err = json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("marshaling entry details: %w", err)
		}
	}

	_, err := s.Pool.Exec(ctx, `
		INSERT INTO audit_entries
			(sequence, ts, actor, action, resource_type, resource_id, details, previous_digest, digest)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (sequence) DO NOTHING`,
		e.Sequence, e.Timestamp, e.Actor, e.Action, e.ResourceType, e.ResourceID,
		detailsJSON, e.PreviousDigest, e.Digest,
	)
	if err != nil {
		return fmt.Errorf("inserting archive entry: %w", err)
	}

	return nil
}

// LoadAll returns every archived entry in ascending sequence order, for
// reloading the chain at startup.
func (s *ArchiveStore) LoadAll(ctx context.Context) ([]models.Entry, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := s.Pool.Query(ctx, `
		SELECT sequence, ts, actor, action, resource_type, resource_id, details, previous_digest, digest
		FROM audit_entries
		ORDER BY sequence ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying archive: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		var detailsJSON []byte

		if err := rows.Scan(&e.Sequence, &e.Timestamp, &e.Actor, &e.Action,
			&e.ResourceType, &e.ResourceID, &detailsJSON, &e.PreviousDigest, &e.Digest); err != nil {
			return nil, fmt.Errorf("scanning archive entry: %w", err)
		}
		if detailsJSON != nil {
			e.Details, err = decodeDetails(detailsJSON)
			if err != nil {
				return nil, fmt.Errorf("decoding details for sequence %d: %w", e.Sequence, err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading archive rows: %w", err)
	}

	return entries, nil
}

// Count returns the number of archived entries.
func (s *ArchiveStore) Count(ctx context.Context) (int, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var count int
	if err := s.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM audit_entries").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting archive entries: %w", err)
	}

	return count, nil
}

// decodeDetails unmarshals stored details preserving numeric text via
// json.Number, so digests recomputed from reloaded entries match the
// originals even for integers beyond float64 precision.
func decodeDetails(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var details map[string]any
	if err := dec.Decode(&details); err != nil {
		return nil, err
	}

	return details, nil
}
