// Package service implements the audit ledger facade on top of the chain
// core, plus the background worker that mirrors entries to the archive.
package service

import (
	"context"
	"errors"
	"maps"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/wellally/healthaudit/internal/chain"
	"github.com/wellally/healthaudit/internal/domain"
	"github.com/wellally/healthaudit/internal/metrics"
	"github.com/wellally/healthaudit/internal/models"
)

// Compile-time check: *Ledger must satisfy domain.LedgerService.
var _ domain.LedgerService = (*Ledger)(nil)

// Ledger wraps the chain store with validation, structured logging,
// metrics and append fan-out to observers (archive worker, live feed).
type Ledger struct {
	store     *chain.Store
	log       *logrus.Logger
	observers []domain.EntryObserver
}

// NewLedger creates a Ledger. Observers are notified synchronously after
// each successful append, in registration order.
func NewLedger(store *chain.Store, log *logrus.Logger, observers ...domain.EntryObserver) *Ledger {
	return &Ledger{store: store, log: log, observers: observers}
}

// Append validates and seals a candidate entry.
func (l *Ledger) Append(_ context.Context, c models.Candidate) (models.Entry, error) {
	if err := c.Validate(); err != nil {
		metrics.AppendRejectsTotal.WithLabelValues("validation").Inc()
		return models.Entry{}, err
	}

	e, err := l.store.Append(c)
	if err != nil {
		metrics.AppendRejectsTotal.WithLabelValues(rejectReason(err)).Inc()
		l.log.WithError(err).WithFields(logrus.Fields{
			"actor":  c.Actor,
			"action": c.Action,
		}).Warn("ledger.append rejected")
		return models.Entry{}, err
	}

	metrics.AppendsTotal.WithLabelValues(e.Action).Inc()
	metrics.ChainLength.Set(float64(l.store.Len()))

	l.log.WithFields(logrus.Fields{
		"sequence":      e.Sequence,
		"actor":         e.Actor,
		"action":        e.Action,
		"resource_type": e.ResourceType,
		"resource_id":   e.ResourceID,
	}).Info("ledger.append")

	for _, o := range l.observers {
		o.EntryAppended(e)
	}
	return e, nil
}

// LogAccess records a read-style action (view, download, export).
func (l *Ledger) LogAccess(
	ctx context.Context, actor, action, resourceType, resourceID string, details map[string]any,
) (models.Entry, error) {
	return l.Append(ctx, models.Candidate{
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	})
}

// LogModification records a write-style action. The action is also
// stamped into the details under modification_type; the caller's map is
// copied, not mutated.
func (l *Ledger) LogModification(
	ctx context.Context, actor, action, resourceType, resourceID string, changes map[string]any,
) (models.Entry, error) {
	details := make(map[string]any, len(changes)+1)
	maps.Copy(details, changes)
	details["modification_type"] = action

	return l.Append(ctx, models.Candidate{
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
	})
}

// LogConsentChange records a consent grant or revocation against the
// well-known Consent resource type.
func (l *Ledger) LogConsentChange(
	ctx context.Context, actor, action, consentID, reason string,
) (models.Entry, error) {
	var details map[string]any
	if reason != "" {
		details = map[string]any{"reason": reason}
	}

	return l.Append(ctx, models.Candidate{
		Actor:        actor,
		Action:       action,
		ResourceType: "Consent",
		ResourceID:   consentID,
		Details:      details,
	})
}

// GetEntry returns a single entry by sequence.
func (l *Ledger) GetEntry(_ context.Context, sequence uint64) (models.Entry, error) {
	return l.store.Get(sequence)
}

// Query returns entries matching the filters, plus a has-more flag.
func (l *Ledger) Query(_ context.Context, opts models.AuditQueryOpts) ([]models.Entry, bool, error) {
	entries, hasMore := l.store.Query(opts)
	return entries, hasMore, nil
}

// GetResourceHistory returns every entry touching one resource, oldest first.
func (l *Ledger) GetResourceHistory(ctx context.Context, resourceType, resourceID string) ([]models.Entry, error) {
	entries, _, err := l.Query(ctx, models.AuditQueryOpts{
		ResourceType: resourceType,
		ResourceID:   resourceID,
	})
	return entries, err
}

// GetActorActivity returns every entry recorded for one actor, oldest first.
func (l *Ledger) GetActorActivity(ctx context.Context, actor string) ([]models.Entry, error) {
	entries, _, err := l.Query(ctx, models.AuditQueryOpts{Actor: actor})
	return entries, err
}

// Stats summarizes the chain head.
func (l *Ledger) Stats(_ context.Context) (models.LedgerStats, error) {
	stats := models.LedgerStats{
		EntryCount: l.store.Len(),
		LastDigest: l.store.LastDigest(),
	}
	if stats.EntryCount > 0 {
		last, err := l.store.Get(uint64(stats.EntryCount - 1))
		if err != nil {
			return models.LedgerStats{}, err
		}
		stats.LastSequence = &last.Sequence
		stats.LastTimestamp = &last.Timestamp
	}
	return stats, nil
}

// Verify walks the chain from fromSequence, anchored at previousDigest
// (empty means genesis). The result is logged and counted but never acted
// on: a broken chain is evidence, not a condition to repair.
func (l *Ledger) Verify(ctx context.Context, fromSequence uint64, previousDigest string) (models.VerificationReport, error) {
	report, err := l.store.Verify(ctx, chain.VerifyOptions{
		FromSequence:   fromSequence,
		PreviousDigest: previousDigest,
	})
	if err != nil {
		return models.VerificationReport{}, err
	}

	if report.Valid {
		metrics.VerifyRunsTotal.WithLabelValues("valid").Inc()
		l.log.WithField("checked", report.CheckedCount).Info("ledger.verify passed")
	} else {
		metrics.VerifyRunsTotal.WithLabelValues("invalid").Inc()
		l.log.WithFields(logrus.Fields{
			"checked":         report.CheckedCount,
			"failed_sequence": report.FailedSequence,
			"reason":          report.Reason,
		}).Error("ledger.verify failed: chain integrity violated")
	}
	return report, nil
}

// Export snapshots the full chain into the portable envelope.
func (l *Ledger) Export(_ context.Context) (models.ExportFormat, error) {
	entries := l.store.Snapshot(0, 0)

	export := models.ExportFormat{
		SchemaVersion:    models.ExportSchemaVersion,
		CanonicalVersion: chain.CanonicalVersion,
		ExportID:         uuid.NewString(),
		ExportedAt:       chain.RealClock{}.Now(),
		Genesis:          models.GenesisDigest,
		EntryCount:       len(entries),
		LastDigest:       models.GenesisDigest,
		Entries:          entries,
	}
	if n := len(entries); n > 0 {
		export.LastDigest = entries[n-1].Digest
	}

	l.log.WithFields(logrus.Fields{
		"export_id": export.ExportID,
		"entries":   export.EntryCount,
	}).Info("ledger.export")
	return export, nil
}

// Restore loads archived entries into an empty chain and verifies the
// result before accepting it. Used at startup; a failed verification
// leaves the process refusing to serve rather than serving a forged
// chain.
func (l *Ledger) Restore(ctx context.Context, entries []models.Entry) error {
	if err := l.store.Restore(entries); err != nil {
		return err
	}

	report, err := l.Verify(ctx, 0, "")
	if err != nil {
		return err
	}
	if !report.Valid {
		return &IntegrityError{Report: report}
	}

	metrics.ChainLength.Set(float64(l.store.Len()))
	l.log.WithField("entries", len(entries)).Info("ledger.restore complete")
	return nil
}

// IntegrityError carries a failed verification report as an error.
type IntegrityError struct {
	Report models.VerificationReport
}

func (e *IntegrityError) Error() string {
	return "chain integrity violated: " + string(e.Report.Reason)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, models.ErrClockRegression):
		return "clock_regression"
	case errors.Is(err, models.ErrSerialization):
		return "serialization"
	default:
		return "other"
	}
}
