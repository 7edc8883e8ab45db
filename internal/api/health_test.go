package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wellally/healthaudit/internal/api"
	"github.com/wellally/healthaudit/internal/models"
)

func TestLiveness_MemoryOnly(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(nil, testLogger(), "test-v1")

	r := gin.New()
	r.GET("/health", h.Liveness)

	w := doRequest(r, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}
	if body["version"] != "test-v1" {
		t.Errorf("expected version 'test-v1', got %v", body["version"])
	}
	if body["archive"] != "not_configured" {
		t.Errorf("expected archive 'not_configured', got %v", body["archive"])
	}
}

func TestReadiness_MemoryOnlyAlwaysReady(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(nil, testLogger(), "test-v1")

	r := gin.New()
	r.GET("/ready", h.Readiness)

	w := doRequest(r, http.MethodGet, "/ready", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Status != "ready" {
		t.Errorf("expected ready, got %q", body.Status)
	}
	if body.Checks["archive"] != "not_configured" {
		t.Errorf("expected archive not_configured, got %q", body.Checks["archive"])
	}
}

func TestGetStats(t *testing.T) {
	t.Parallel()

	seq := uint64(41)
	ledger := &mockLedger{
		statsFn: func(_ context.Context) (models.LedgerStats, error) {
			return models.LedgerStats{
				EntryCount:   42,
				LastSequence: &seq,
				LastDigest:   "dd00000000000000000000000000000000000000000000000000000000000000",
			}, nil
		},
	}

	h := api.NewStatsHandler(ledger, nil, testLogger())
	r := gin.New()
	r.GET("/stats", h.GetStats)

	w := doRequest(r, http.MethodGet, "/stats", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["entry_count"] != float64(42) {
		t.Errorf("entry_count = %v, want 42", body["entry_count"])
	}
	if body["last_sequence"] != float64(41) {
		t.Errorf("last_sequence = %v, want 41", body["last_sequence"])
	}
}
