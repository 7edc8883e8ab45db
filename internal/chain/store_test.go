package chain

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wellally/healthaudit/internal/models"
)

// stepClock advances by a millisecond per reading, so every appended entry
// gets a distinct, strictly increasing timestamp.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func newStepClock() *stepClock {
	return &stepClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Millisecond)
	return c.t
}

// listClock replays a fixed series of readings.
type listClock struct {
	mu    sync.Mutex
	times []time.Time
	i     int
}

func (c *listClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.times[c.i]
	if c.i < len(c.times)-1 {
		c.i++
	}
	return t
}

func mustAppend(t *testing.T, s *Store, c models.Candidate) models.Entry {
	t.Helper()
	e, err := s.Append(c)
	if err != nil {
		t.Fatalf("Append(%s %s %s/%s): %v", c.Actor, c.Action, c.ResourceType, c.ResourceID, err)
	}
	return e
}

func TestAppendLinksChain(t *testing.T) {
	s := NewStore(newStepClock())

	first := mustAppend(t, s, models.Candidate{
		Actor: "dr_smith", Action: "view", ResourceType: "Patient", ResourceID: "p1",
	})
	second := mustAppend(t, s, models.Candidate{
		Actor: "nurse_jones", Action: "view", ResourceType: "Patient", ResourceID: "p1",
	})
	third := mustAppend(t, s, models.Candidate{
		Actor: "dr_smith", Action: "update", ResourceType: "Patient", ResourceID: "p2",
		Details: map[string]any{"field": "allergies"},
	})

	if first.Sequence != 0 || second.Sequence != 1 || third.Sequence != 2 {
		t.Fatalf("sequences = %d, %d, %d, want 0, 1, 2",
			first.Sequence, second.Sequence, third.Sequence)
	}
	if first.PreviousDigest != models.GenesisDigest {
		t.Errorf("first entry previous_digest = %q, want genesis", first.PreviousDigest)
	}
	if second.PreviousDigest != first.Digest {
		t.Errorf("second entry previous_digest = %q, want %q", second.PreviousDigest, first.Digest)
	}
	if third.PreviousDigest != second.Digest {
		t.Errorf("third entry previous_digest = %q, want %q", third.PreviousDigest, second.Digest)
	}
	if got := s.LastDigest(); got != third.Digest {
		t.Errorf("LastDigest = %q, want %q", got, third.Digest)
	}
	if second.Timestamp.Before(first.Timestamp) || third.Timestamp.Before(second.Timestamp) {
		t.Error("timestamps not monotone non-decreasing")
	}
}

func TestAppendSerializationError(t *testing.T) {
	s := NewStore(newStepClock())
	mustAppend(t, s, models.Candidate{
		Actor: "dr_smith", Action: "view", ResourceType: "Patient", ResourceID: "p1",
	})
	before := s.LastDigest()

	_, err := s.Append(models.Candidate{
		Actor: "dr_smith", Action: "view", ResourceType: "Patient", ResourceID: "p1",
		Details: map[string]any{"ch": make(chan int)},
	})
	if !errors.Is(err, models.ErrSerialization) {
		t.Fatalf("Append with unserializable details: err = %v, want ErrSerialization", err)
	}

	if s.Len() != 1 {
		t.Errorf("Len after failed append = %d, want 1", s.Len())
	}
	if got := s.LastDigest(); got != before {
		t.Errorf("LastDigest moved after failed append: %q -> %q", before, got)
	}
}

func TestAppendClockRegression(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := &listClock{times: []time.Time{base, base.Add(-time.Second)}}
	s := NewStore(clock)

	mustAppend(t, s, models.Candidate{
		Actor: "dr_smith", Action: "view", ResourceType: "Patient", ResourceID: "p1",
	})

	_, err := s.Append(models.Candidate{
		Actor: "dr_smith", Action: "view", ResourceType: "Patient", ResourceID: "p1",
	})
	if !errors.Is(err, models.ErrClockRegression) {
		t.Fatalf("Append with regressed clock: err = %v, want ErrClockRegression", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len after rejected append = %d, want 1", s.Len())
	}
}

func TestAppendEqualTimestampAllowed(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := &listClock{times: []time.Time{base, base}}
	s := NewStore(clock)

	mustAppend(t, s, models.Candidate{
		Actor: "a", Action: "view", ResourceType: "Patient", ResourceID: "p1",
	})
	e := mustAppend(t, s, models.Candidate{
		Actor: "a", Action: "view", ResourceType: "Patient", ResourceID: "p1",
	})
	if !e.Timestamp.Equal(base) {
		t.Errorf("second timestamp = %v, want %v", e.Timestamp, base)
	}
}

func TestConcurrentAppends(t *testing.T) {
	s := NewStore(nil)

	const workers, perWorker = 4, 25
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, err := s.Append(models.Candidate{
					Actor:        "actor",
					Action:       "view",
					ResourceType: "Patient",
					ResourceID:   "p1",
					Details:      map[string]any{"worker": w, "i": i},
				})
				if err != nil {
					t.Errorf("concurrent Append: %v", err)
				}
			}
		}(w)
	}
	wg.Wait()

	if s.Len() != workers*perWorker {
		t.Fatalf("Len = %d, want %d", s.Len(), workers*perWorker)
	}

	seen := make(map[uint64]bool)
	for _, e := range s.Snapshot(0, 0) {
		seen[e.Sequence] = true
	}
	for seq := uint64(0); seq < uint64(workers*perWorker); seq++ {
		if !seen[seq] {
			t.Errorf("sequence %d missing", seq)
		}
	}

	report, err := s.Verify(context.Background(), VerifyOptions{})
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !report.Valid {
		t.Errorf("chain invalid after concurrent appends: %+v", report)
	}
}

func TestGetNotFound(t *testing.T) {
	s := NewStore(newStepClock())
	mustAppend(t, s, models.Candidate{
		Actor: "a", Action: "view", ResourceType: "Patient", ResourceID: "p1",
	})

	if _, err := s.Get(0); err != nil {
		t.Errorf("Get(0): %v", err)
	}
	if _, err := s.Get(1); !errors.Is(err, models.ErrEntryNotFound) {
		t.Errorf("Get(1): err = %v, want ErrEntryNotFound", err)
	}
}

func TestSnapshotBounds(t *testing.T) {
	s := NewStore(newStepClock())
	for i := 0; i < 5; i++ {
		mustAppend(t, s, models.Candidate{
			Actor: "a", Action: "view", ResourceType: "Patient", ResourceID: "p1",
			Details: map[string]any{"i": i},
		})
	}

	if got := s.Snapshot(1, 3); len(got) != 2 || got[0].Sequence != 1 || got[1].Sequence != 2 {
		t.Errorf("Snapshot(1,3) = %d entries, want sequences 1,2", len(got))
	}
	if got := s.Snapshot(3, 0); len(got) != 2 {
		t.Errorf("Snapshot(3,0) = %d entries, want 2", len(got))
	}
	if got := s.Snapshot(10, 0); got != nil {
		t.Errorf("Snapshot past end = %v, want nil", got)
	}
}

func TestRestore(t *testing.T) {
	src := NewStore(newStepClock())
	for i := 0; i < 10; i++ {
		mustAppend(t, src, models.Candidate{
			Actor: "a", Action: "view", ResourceType: "Patient", ResourceID: "p1",
			Details: map[string]any{"i": i},
		})
	}
	entries := src.Snapshot(0, 0)

	dst := NewStore(nil)
	if err := dst.Restore(entries); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if dst.Len() != src.Len() {
		t.Errorf("restored Len = %d, want %d", dst.Len(), src.Len())
	}
	if dst.LastDigest() != src.LastDigest() {
		t.Errorf("restored LastDigest = %q, want %q", dst.LastDigest(), src.LastDigest())
	}

	report, err := dst.Verify(context.Background(), VerifyOptions{})
	if err != nil {
		t.Fatalf("Verify restored chain: %v", err)
	}
	if !report.Valid || report.CheckedCount != 10 {
		t.Errorf("restored chain report = %+v, want valid with 10 checked", report)
	}

	// Queries must work against the rebuilt index.
	got, _ := dst.Query(models.AuditQueryOpts{Actor: "a"})
	if len(got) != 10 {
		t.Errorf("Query after restore = %d entries, want 10", len(got))
	}
}

func TestRestoreRejectsNonEmpty(t *testing.T) {
	s := NewStore(newStepClock())
	mustAppend(t, s, models.Candidate{
		Actor: "a", Action: "view", ResourceType: "Patient", ResourceID: "p1",
	})

	if err := s.Restore(nil); err == nil {
		t.Fatal("Restore into non-empty store succeeded, want error")
	}
}

func TestRestoreRejectsSequenceGap(t *testing.T) {
	src := NewStore(newStepClock())
	for i := 0; i < 3; i++ {
		mustAppend(t, src, models.Candidate{
			Actor: "a", Action: "view", ResourceType: "Patient", ResourceID: "p1",
		})
	}
	entries := src.Snapshot(0, 0)
	entries = append(entries[:1], entries[2:]...)

	dst := NewStore(nil)
	if err := dst.Restore(entries); err == nil {
		t.Fatal("Restore with sequence gap succeeded, want error")
	}
}
