// Package chain implements the tamper-evident core of the health audit
// ledger: an append-only, hash-chained entry store with secondary indices,
// a chain verifier and a query engine.
//
// Each entry's digest covers the previous entry's digest, so altering,
// reordering or deleting any stored entry is detectable by re-walking the
// chain. The store is the single owner of entry data; indices hold only
// sequence numbers.
package chain

import (
	"fmt"
	"sync"

	"github.com/wellally/healthaudit/internal/models"
)

// Store is the append-only entry arena plus the last-digest cursor.
//
// Append is the only mutating operation and is serialized by the mutex:
// the read-last-digest / compute / advance-cursor sequence is a
// read-modify-write race, and two concurrent appends observing the same
// previous digest would fork the chain. Readers take the lock only long
// enough to snapshot.
type Store struct {
	mu      sync.RWMutex
	entries []models.Entry
	last    string
	idx     *index
	clock   Clock
}

// NewStore creates an empty Store. A nil clock defaults to the system
// clock.
func NewStore(clock Clock) *Store {
	if clock == nil {
		clock = RealClock{}
	}
	return &Store{
		last:  models.GenesisDigest,
		idx:   newIndex(),
		clock: clock,
	}
}

// Append seals a candidate into the chain: assigns the next sequence,
// stamps the timestamp, links the previous digest, computes this entry's
// digest and advances the cursor. It either completes fully or leaves the
// store untouched.
func (s *Store) Append(c models.Candidate) (models.Entry, error) {
	// Canonicalize before taking the lock so a serialization failure can
	// never partially advance the cursor.
	details, err := canonicalDetails(c.Details)
	if err != nil {
		return models.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now().UTC()
	if n := len(s.entries); n > 0 && now.Before(s.entries[n-1].Timestamp) {
		return models.Entry{}, fmt.Errorf("%w: now=%s previous=%s",
			models.ErrClockRegression, now.Format(timestampLayout),
			s.entries[n-1].Timestamp.Format(timestampLayout))
	}

	e := models.Entry{
		Sequence:       uint64(len(s.entries)),
		Timestamp:      now,
		Actor:          c.Actor,
		Action:         c.Action,
		ResourceType:   c.ResourceType,
		ResourceID:     c.ResourceID,
		Details:        c.Details,
		PreviousDigest: s.last,
	}
	e.Digest = computeDigest(e, details)

	s.entries = append(s.entries, e)
	s.last = e.Digest
	s.idx.add(e)

	return e, nil
}

// Get returns the entry at the given sequence.
func (s *Store) Get(seq uint64) (models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if seq >= uint64(len(s.entries)) {
		return models.Entry{}, models.ErrEntryNotFound
	}
	return s.entries[seq], nil
}

// Len returns the number of chained entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// LastDigest returns the digest of the most recent entry, or the genesis
// digest for an empty chain.
func (s *Store) LastDigest() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Snapshot copies entries in [from, to) in ascending sequence order. A
// `to` of 0 or beyond the chain means "through the end". The copy is
// immutable from the caller's perspective; a fresh call re-scans from the
// requested start.
func (s *Store) Snapshot(from, to uint64) []models.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := uint64(len(s.entries))
	if to == 0 || to > n {
		to = n
	}
	if from >= to {
		return nil
	}

	out := make([]models.Entry, to-from)
	copy(out, s.entries[from:to])
	return out
}

// Restore replaces the store's contents with entries loaded from an
// archive, rebuilding indices and the cursor by full rescan. Entries must
// be in ascending sequence order. Restore trusts its input no further than
// the cursor arithmetic requires; the caller is expected to verify the
// chain afterwards.
func (s *Store) Restore(entries []models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) != 0 {
		return fmt.Errorf("restore into non-empty chain (%d entries)", len(s.entries))
	}

	for i, e := range entries {
		if e.Sequence != uint64(i) {
			return fmt.Errorf("restore: entry at position %d has sequence %d", i, e.Sequence)
		}
	}

	s.entries = make([]models.Entry, len(entries))
	copy(s.entries, entries)

	s.last = models.GenesisDigest
	if n := len(s.entries); n > 0 {
		s.last = s.entries[n-1].Digest
	}

	s.idx = newIndex()
	for _, e := range s.entries {
		s.idx.add(e)
	}

	return nil
}
