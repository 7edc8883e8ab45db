package api_test

import (
	"context"

	"github.com/wellally/healthaudit/internal/models"
)

// mockLedger implements domain.LedgerService for testing. Each function
// field covers one operation; unset fields panic to catch unexpected calls.
type mockLedger struct {
	appendFn        func(ctx context.Context, c models.Candidate) (models.Entry, error)
	logAccessFn     func(ctx context.Context, actor, action, resourceType, resourceID string, details map[string]any) (models.Entry, error)
	logModifyFn     func(ctx context.Context, actor, action, resourceType, resourceID string, changes map[string]any) (models.Entry, error)
	logConsentFn    func(ctx context.Context, actor, action, consentID, reason string) (models.Entry, error)
	getEntryFn      func(ctx context.Context, sequence uint64) (models.Entry, error)
	queryFn         func(ctx context.Context, opts models.AuditQueryOpts) ([]models.Entry, bool, error)
	resourceHistFn  func(ctx context.Context, resourceType, resourceID string) ([]models.Entry, error)
	actorActivityFn func(ctx context.Context, actor string) ([]models.Entry, error)
	statsFn         func(ctx context.Context) (models.LedgerStats, error)
	verifyFn        func(ctx context.Context, fromSequence uint64, previousDigest string) (models.VerificationReport, error)
	exportFn        func(ctx context.Context) (models.ExportFormat, error)
}

func (m *mockLedger) Append(ctx context.Context, c models.Candidate) (models.Entry, error) {
	return m.appendFn(ctx, c)
}

func (m *mockLedger) LogAccess(ctx context.Context, actor, action, resourceType, resourceID string, details map[string]any) (models.Entry, error) {
	return m.logAccessFn(ctx, actor, action, resourceType, resourceID, details)
}

func (m *mockLedger) LogModification(ctx context.Context, actor, action, resourceType, resourceID string, changes map[string]any) (models.Entry, error) {
	return m.logModifyFn(ctx, actor, action, resourceType, resourceID, changes)
}

func (m *mockLedger) LogConsentChange(ctx context.Context, actor, action, consentID, reason string) (models.Entry, error) {
	return m.logConsentFn(ctx, actor, action, consentID, reason)
}

func (m *mockLedger) GetEntry(ctx context.Context, sequence uint64) (models.Entry, error) {
	return m.getEntryFn(ctx, sequence)
}

func (m *mockLedger) Query(ctx context.Context, opts models.AuditQueryOpts) ([]models.Entry, bool, error) {
	return m.queryFn(ctx, opts)
}

func (m *mockLedger) GetResourceHistory(ctx context.Context, resourceType, resourceID string) ([]models.Entry, error) {
	return m.resourceHistFn(ctx, resourceType, resourceID)
}

func (m *mockLedger) GetActorActivity(ctx context.Context, actor string) ([]models.Entry, error) {
	return m.actorActivityFn(ctx, actor)
}

func (m *mockLedger) Stats(ctx context.Context) (models.LedgerStats, error) {
	return m.statsFn(ctx)
}

func (m *mockLedger) Verify(ctx context.Context, fromSequence uint64, previousDigest string) (models.VerificationReport, error) {
	return m.verifyFn(ctx, fromSequence, previousDigest)
}

func (m *mockLedger) Export(ctx context.Context) (models.ExportFormat, error) {
	return m.exportFn(ctx)
}
