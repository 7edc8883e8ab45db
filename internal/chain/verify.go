package chain

import (
	"context"

	"github.com/wellally/healthaudit/internal/models"
)

// VerifyOptions selects the chain range to check. The zero value verifies
// the whole chain from genesis. For incremental re-verification of a large
// log, set FromSequence to the first unchecked entry and PreviousDigest to
// the digest recorded at the last checkpoint.
type VerifyOptions struct {
	FromSequence   uint64
	PreviousDigest string
}

// Verify proves or disproves that the stored range is exactly what an
// honest single-writer append process would have produced. It is
// read-only, runs in O(n) over the checked range, and checks ctx between
// entries so operators can bound very large verifications. An empty range
// is trivially valid.
func (s *Store) Verify(ctx context.Context, opts VerifyOptions) (models.VerificationReport, error) {
	return VerifyEntries(ctx, s.Snapshot(opts.FromSequence, 0), opts.PreviousDigest)
}

// VerifyEntries walks an ascending entry slice (a store snapshot or a
// parsed export file), recomputing digests against previousDigest; an
// empty previousDigest means genesis. External tooling uses this to check
// an archive without loading it into a Store.
//
// The walk never mutates state and never "heals" a break: the first
// offending sequence is reported and the walk stops there.
func VerifyEntries(ctx context.Context, entries []models.Entry, previousDigest string) (models.VerificationReport, error) {
	expected := previousDigest
	if expected == "" {
		expected = models.GenesisDigest
	}

	report := models.VerificationReport{Valid: true}
	var prevSeq uint64

	for i, e := range entries {
		if err := ctx.Err(); err != nil {
			return models.VerificationReport{}, err
		}

		if e.PreviousDigest != expected {
			return failedReport(report.CheckedCount, e.Sequence, models.FailureBrokenLink), nil
		}

		recomputed, err := digestEntry(e)
		if err != nil || recomputed != e.Digest {
			return failedReport(report.CheckedCount, e.Sequence, models.FailureHashMismatch), nil
		}

		if i > 0 && e.Sequence != prevSeq+1 {
			return failedReport(report.CheckedCount, e.Sequence, models.FailureOutOfOrder), nil
		}

		expected = e.Digest
		prevSeq = e.Sequence
		report.CheckedCount++
	}

	return report, nil
}

func failedReport(checked int, seq uint64, reason models.IntegrityFailure) models.VerificationReport {
	return models.VerificationReport{
		Valid:          false,
		CheckedCount:   checked,
		FailedSequence: seq,
		Reason:         reason,
	}
}
