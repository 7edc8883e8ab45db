// Package store provides data access for the audit ledger's Postgres
// archive.
//
// The archive is a durable mirror of the in-memory chain, used to reload
// it across restarts. It is never the authority: rows are written after
// the chain has sealed an entry, and everything loaded from it is
// re-verified against the hash chain before serving.
package store

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/wellally/healthaudit/internal/dbpool"
)

const defaultQueryTimeout = 30 * time.Second

// Base contains shared dependencies for stores.
type Base struct {
	Pool *dbpool.Pool
	Log  *logrus.Logger
}

// withTimeout creates a context with the default query timeout.
func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, defaultQueryTimeout)
}
