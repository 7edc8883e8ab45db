package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/wellally/healthaudit/internal/domain"
	"github.com/wellally/healthaudit/internal/models"
)

// EntryHandler serves the append endpoints. Every request that succeeds
// seals a new entry into the hash chain.
type EntryHandler struct {
	ledger domain.LedgerWriter
	log    *logrus.Logger
}

// NewEntryHandler creates an EntryHandler.
func NewEntryHandler(ledger domain.LedgerWriter, log *logrus.Logger) *EntryHandler {
	return &EntryHandler{ledger: ledger, log: log}
}

// appendRequest is the body for the generic append endpoint.
type appendRequest struct {
	Actor        string         `json:"actor" binding:"required"`
	Action       string         `json:"action" binding:"required"`
	ResourceType string         `json:"resource_type" binding:"required"`
	ResourceID   string         `json:"resource_id" binding:"required"`
	Details      map[string]any `json:"details"`
}

// accessRequest is the body for recording a read-style action.
type accessRequest struct {
	Actor        string         `json:"actor" binding:"required"`
	Action       string         `json:"action" binding:"required"`
	ResourceType string         `json:"resource_type" binding:"required"`
	ResourceID   string         `json:"resource_id" binding:"required"`
	Details      map[string]any `json:"details"`
}

// modificationRequest is the body for recording a write-style action.
type modificationRequest struct {
	Actor        string         `json:"actor" binding:"required"`
	Action       string         `json:"action" binding:"required"`
	ResourceType string         `json:"resource_type" binding:"required"`
	ResourceID   string         `json:"resource_id" binding:"required"`
	Changes      map[string]any `json:"changes"`
}

// consentRequest is the body for recording a consent grant or revocation.
type consentRequest struct {
	Actor     string `json:"actor" binding:"required"`
	Action    string `json:"action" binding:"required"`
	ConsentID string `json:"consent_id" binding:"required"`
	Reason    string `json:"reason"`
}

// Append handles POST /api/v1/entries.
func (h *EntryHandler) Append(c *gin.Context) {
	var req appendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	entry, err := h.ledger.Append(c.Request.Context(), models.Candidate{
		Actor:        req.Actor,
		Action:       req.Action,
		ResourceType: req.ResourceType,
		ResourceID:   req.ResourceID,
		Details:      req.Details,
	})
	if err != nil {
		respondAppendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// LogAccess handles POST /api/v1/entries/access.
func (h *EntryHandler) LogAccess(c *gin.Context) {
	var req accessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	entry, err := h.ledger.LogAccess(c.Request.Context(),
		req.Actor, req.Action, req.ResourceType, req.ResourceID, req.Details)
	if err != nil {
		respondAppendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// LogModification handles POST /api/v1/entries/modification.
func (h *EntryHandler) LogModification(c *gin.Context) {
	var req modificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	entry, err := h.ledger.LogModification(c.Request.Context(),
		req.Actor, req.Action, req.ResourceType, req.ResourceID, req.Changes)
	if err != nil {
		respondAppendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// LogConsent handles POST /api/v1/entries/consent.
func (h *EntryHandler) LogConsent(c *gin.Context) {
	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid request body: "+err.Error())
		return
	}

	entry, err := h.ledger.LogConsentChange(c.Request.Context(),
		req.Actor, req.Action, req.ConsentID, req.Reason)
	if err != nil {
		respondAppendError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}
