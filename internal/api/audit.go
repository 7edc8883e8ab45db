package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wellally/healthaudit/internal/domain"
	"github.com/wellally/healthaudit/internal/models"
)

// defaultQueryLimit is the page size when the client does not specify one.
const defaultQueryLimit = 50

// AuditHandler serves the read side of the ledger: filtered queries,
// single-entry lookups, and per-resource / per-actor views.
type AuditHandler struct {
	ledger domain.LedgerReader
	log    *logrus.Logger
}

// NewAuditHandler creates an AuditHandler.
func NewAuditHandler(ledger domain.LedgerReader, log *logrus.Logger) *AuditHandler {
	return &AuditHandler{ledger: ledger, log: log}
}

// Query handles GET /api/v1/entries.
func (h *AuditHandler) Query(c *gin.Context) {
	opts := models.AuditQueryOpts{
		Actor:        c.Query("actor"),
		ResourceType: c.Query("resource_type"),
		ResourceID:   c.Query("resource_id"),
		Action:       c.Query("action"),
		Limit:        parseLimit(c.Query("limit"), defaultQueryLimit),
		Offset:       parseOffset(c.Query("offset")),
	}

	since, err := parseTimeParam(c.Query("since"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "since: "+err.Error())
		return
	}
	opts.Since = since

	until, err := parseTimeParam(c.Query("until"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "until: "+err.Error())
		return
	}
	opts.Until = until

	entries, hasMore, err := h.ledger.Query(c.Request.Context(), opts)
	if err != nil {
		h.log.WithError(err).Error("failed to query ledger")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to query ledger")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     entries,
		"has_more": hasMore,
	})
}

// Get handles GET /api/v1/entries/:sequence.
func (h *AuditHandler) Get(c *gin.Context) {
	seq, err := parseSequence(c.Param("sequence"))
	if err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
		return
	}

	entry, err := h.ledger.GetEntry(c.Request.Context(), seq)
	if err != nil {
		if errors.Is(err, models.ErrEntryNotFound) {
			respondError(c, http.StatusNotFound, ErrCodeNotFound, "entry not found")
			return
		}
		h.log.WithError(err).Error("failed to get entry")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to get entry")
		return
	}

	c.JSON(http.StatusOK, entry)
}

// ResourceHistory handles GET /api/v1/resources/:type/:id/history.
func (h *AuditHandler) ResourceHistory(c *gin.Context) {
	resourceType := c.Param("type")
	resourceID := c.Param("id")

	if err := validatePathID(resourceType); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "type: "+err.Error())
		return
	}
	if err := validatePathID(resourceID); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "id: "+err.Error())
		return
	}

	entries, err := h.ledger.GetResourceHistory(c.Request.Context(), resourceType, resourceID)
	if err != nil {
		h.log.WithError(err).Error("failed to get resource history")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to get resource history")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"resource_type": resourceType,
		"resource_id":   resourceID,
		"data":          entries,
	})
}

// ActorActivity handles GET /api/v1/actors/:actor/activity.
func (h *AuditHandler) ActorActivity(c *gin.Context) {
	actor := c.Param("actor")
	if err := validatePathID(actor); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "actor: "+err.Error())
		return
	}

	entries, err := h.ledger.GetActorActivity(c.Request.Context(), actor)
	if err != nil {
		h.log.WithError(err).Error("failed to get actor activity")
		respondError(c, http.StatusInternalServerError, ErrCodeInternalError, "failed to get actor activity")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"actor": actor,
		"data":  entries,
	})
}
