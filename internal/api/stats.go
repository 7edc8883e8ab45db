package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wellally/healthaudit/internal/domain"
	"github.com/wellally/healthaudit/internal/ws"
)

// StatsHandler serves the ledger statistics endpoint.
type StatsHandler struct {
	ledger domain.LedgerReader
	hub    *ws.Hub
	log    *logrus.Logger
}

// NewStatsHandler creates a StatsHandler.
func NewStatsHandler(ledger domain.LedgerReader, hub *ws.Hub, log *logrus.Logger) *StatsHandler {
	return &StatsHandler{ledger: ledger, hub: hub, log: log}
}

// statsResponse is the JSON payload returned by the stats endpoint.
type statsResponse struct {
	EntryCount    int     `json:"entry_count"`
	LastSequence  *uint64 `json:"last_sequence,omitempty"`
	LastDigest    string  `json:"last_digest"`
	LastTimestamp *string `json:"last_timestamp,omitempty"`
	FeedClients   int     `json:"feed_clients"`
}

// GetStats handles GET /api/v1/stats.
func (h *StatsHandler) GetStats(c *gin.Context) {
	stats, err := h.ledger.Stats(c.Request.Context())
	if err != nil {
		h.log.WithError(err).Error("failed to read ledger stats")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to read ledger stats")
		return
	}

	resp := statsResponse{
		EntryCount:   stats.EntryCount,
		LastSequence: stats.LastSequence,
		LastDigest:   stats.LastDigest,
	}
	if stats.LastTimestamp != nil {
		ts := stats.LastTimestamp.Format(time.RFC3339Nano)
		resp.LastTimestamp = &ts
	}
	if h.hub != nil {
		resp.FeedClients = h.hub.ClientCount()
	}

	c.JSON(http.StatusOK, resp)
}
