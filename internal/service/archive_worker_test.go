package service

import (
	"context"
	"testing"
	"time"

	"github.com/wellally/healthaudit/internal/models"
)

func TestArchiveWorker_MirrorsEntry(t *testing.T) {
	archiver := &mockArchiver{}
	aw := NewArchiveWorker(archiver, quietLogger(), 10)

	ctx, cancel := context.WithCancel(context.Background())
	go aw.Run(ctx)

	aw.EntryAppended(models.Entry{Sequence: 0, Actor: "dr_smith", Action: "view"})

	time.Sleep(50 * time.Millisecond)
	cancel()

	calls := archiver.getCalls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 archive write, got %d", len(calls))
	}
	if calls[0].Actor != "dr_smith" {
		t.Errorf("actor = %q, want dr_smith", calls[0].Actor)
	}
}

func TestArchiveWorker_DropsWhenFull(t *testing.T) {
	archiver := &mockArchiver{}

	// Queue size 2, don't start the worker so it can't drain.
	aw := NewArchiveWorker(archiver, quietLogger(), 2)

	aw.EntryAppended(models.Entry{Sequence: 0})
	aw.EntryAppended(models.Entry{Sequence: 1})

	// This one should be dropped without blocking.
	done := make(chan struct{})
	go func() {
		aw.EntryAppended(models.Entry{Sequence: 2})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("EntryAppended blocked when queue was full")
	}

	if len(aw.jobs) != 2 {
		t.Errorf("queue len = %d, want 2", len(aw.jobs))
	}
}

func TestArchiveWorker_StopDrains(t *testing.T) {
	archiver := &mockArchiver{}
	aw := NewArchiveWorker(archiver, quietLogger(), 100)

	// Enqueue before starting.
	for i := 0; i < 5; i++ {
		aw.EntryAppended(models.Entry{Sequence: uint64(i)})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		aw.Run(ctx)
		close(done)
	}()

	// Let the worker start, then cancel to trigger drain.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run didn't return after cancel")
	}

	if calls := archiver.getCalls(); len(calls) != 5 {
		t.Errorf("expected 5 drained archive writes, got %d", len(calls))
	}
}
