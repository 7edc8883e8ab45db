package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/wellally/healthaudit/internal/domain"
	"github.com/wellally/healthaudit/internal/metrics"
	"github.com/wellally/healthaudit/internal/models"
)

// ArchiveWorker mirrors sealed entries to durable storage via a single
// worker goroutine. The chain has already accepted the entry by the time
// it reaches the queue, so archiving is best-effort: a full queue drops
// the mirror write rather than blocking the append path, and the gap is
// healed by the next startup reconcile.
type ArchiveWorker struct {
	archiver domain.Archiver
	log      *logrus.Logger
	jobs     chan models.Entry
}

// Compile-time check: the worker is a ledger observer.
var _ domain.EntryObserver = (*ArchiveWorker)(nil)

// NewArchiveWorker creates an ArchiveWorker with the given queue capacity.
func NewArchiveWorker(archiver domain.Archiver, log *logrus.Logger, queueSize int) *ArchiveWorker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &ArchiveWorker{
		archiver: archiver,
		log:      log,
		jobs:     make(chan models.Entry, queueSize),
	}
}

// EntryAppended queues an entry for archiving. Non-blocking; drops the
// entry if the queue is full.
func (w *ArchiveWorker) EntryAppended(e models.Entry) {
	select {
	case w.jobs <- e:
		metrics.ArchiveQueueDepth.Set(float64(len(w.jobs)))
	default:
		w.log.WithField("sequence", e.Sequence).Warn("archive queue full, dropping mirror write")
	}
}

// Run processes entries until the context is cancelled, then drains
// remaining entries.
func (w *ArchiveWorker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case e := <-w.jobs:
			w.process(e)
		}
	}
}

func (w *ArchiveWorker) drain() {
	for {
		select {
		case e := <-w.jobs:
			w.process(e)
		default:
			return
		}
	}
}

func (w *ArchiveWorker) process(e models.Entry) {
	metrics.ArchiveQueueDepth.Set(float64(len(w.jobs)))
	if err := w.archiver.InsertEntry(context.Background(), e); err != nil {
		w.log.WithError(err).WithField("sequence", e.Sequence).Warn("archive mirror write failed")
	}
}
