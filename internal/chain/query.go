package chain

import (
	"sort"

	"github.com/wellally/healthaudit/internal/models"
)

// Query filters the chain by the AND of all set fields in opts and returns
// matches in ascending sequence order, paginated by Offset/Limit. The
// second return value reports whether more matches exist past the returned
// page.
//
// Exact-match filters ride the secondary indices (posting lists are
// intersected cheapest-first); a resource type without an ID has no index
// and degrades to a scan filter, as does the timestamp range. When no
// index applies at all, the timestamp range is narrowed by bisection,
// which is sound because timestamps are monotone non-decreasing.
func (s *Store) Query(opts models.AuditQueryOpts) ([]models.Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	candidates, indexed := s.candidateSeqs(opts)

	matched := make([]models.Entry, 0, min(len(candidates), pageCap(opts.Limit)))
	skipped := 0
	hasMore := false

	for _, seq := range candidates {
		e := s.entries[seq]
		if !entryMatches(e, opts, indexed) {
			continue
		}
		if skipped < opts.Offset {
			skipped++
			continue
		}
		if opts.Limit > 0 && len(matched) == opts.Limit {
			hasMore = true
			break
		}
		matched = append(matched, e)
	}

	return matched, hasMore
}

// candidateSeqs picks the narrowest sequence set the indices can offer.
// The second return reports whether any index filter was applied, so the
// scan step knows which predicates are already satisfied.
func (s *Store) candidateSeqs(opts models.AuditQueryOpts) ([]uint64, bool) {
	var lists [][]uint64

	if opts.Actor != "" {
		lists = append(lists, s.idx.byActor[opts.Actor])
	}
	if opts.Action != "" {
		lists = append(lists, s.idx.byAction[opts.Action])
	}
	if opts.ResourceType != "" && opts.ResourceID != "" {
		lists = append(lists, s.idx.byResource[resourceKey(opts.ResourceType, opts.ResourceID)])
	}

	if len(lists) == 0 {
		return s.timeWindowSeqs(opts), false
	}

	sort.Slice(lists, func(i, j int) bool { return len(lists[i]) < len(lists[j]) })
	out := lists[0]
	for _, l := range lists[1:] {
		if len(out) == 0 {
			break
		}
		out = intersect(out, l)
	}
	return out, true
}

// timeWindowSeqs returns all sequences whose timestamps could fall inside
// the requested range, found by bisecting the timestamp column.
func (s *Store) timeWindowSeqs(opts models.AuditQueryOpts) []uint64 {
	lo, hi := 0, len(s.entries)
	if opts.Since != nil {
		lo = sort.Search(len(s.entries), func(i int) bool {
			return !s.entries[i].Timestamp.Before(*opts.Since)
		})
	}
	if opts.Until != nil {
		hi = sort.Search(len(s.entries), func(i int) bool {
			return s.entries[i].Timestamp.After(*opts.Until)
		})
	}

	if lo >= hi {
		return nil
	}
	out := make([]uint64, 0, hi-lo)
	for i := lo; i < hi; i++ {
		out = append(out, uint64(i))
	}
	return out
}

// entryMatches applies the predicates the candidate step could not. When
// indexed is true the exact-match index predicates already hold, except
// resource type on its own, which is never indexed.
func entryMatches(e models.Entry, opts models.AuditQueryOpts, indexed bool) bool {
	if !indexed {
		if opts.Actor != "" && e.Actor != opts.Actor {
			return false
		}
		if opts.Action != "" && e.Action != opts.Action {
			return false
		}
	}
	if opts.ResourceType != "" && e.ResourceType != opts.ResourceType {
		return false
	}
	if opts.ResourceID != "" && e.ResourceID != opts.ResourceID {
		return false
	}
	if opts.Since != nil && e.Timestamp.Before(*opts.Since) {
		return false
	}
	if opts.Until != nil && e.Timestamp.After(*opts.Until) {
		return false
	}
	return true
}

// pageCap bounds the pre-allocation for a result page.
func pageCap(limit int) int {
	if limit > 0 {
		return limit
	}
	return 64
}
