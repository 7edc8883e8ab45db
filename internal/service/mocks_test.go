package service

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/wellally/healthaudit/internal/chain"
	"github.com/wellally/healthaudit/internal/domain"
	"github.com/wellally/healthaudit/internal/models"
)

// mockArchiver records InsertEntry calls for assertions.
type mockArchiver struct {
	mu    sync.Mutex
	calls []models.Entry
	err   error
}

func (m *mockArchiver) InsertEntry(_ context.Context, e models.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, e)
	return nil
}

func (m *mockArchiver) getCalls() []models.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Entry, len(m.calls))
	copy(out, m.calls)
	return out
}

// mockObserver records EntryAppended notifications.
type mockObserver struct {
	mu      sync.Mutex
	entries []models.Entry
}

func (m *mockObserver) EntryAppended(e models.Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
}

func (m *mockObserver) getEntries() []models.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Entry, len(m.entries))
	copy(out, m.entries)
	return out
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func newTestLedger(observers ...domain.EntryObserver) *Ledger {
	return NewLedger(chain.NewStore(nil), quietLogger(), observers...)
}
