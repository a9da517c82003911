package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wareeye/internal/model"
)

type labelRequest struct {
	Barcode           string `json:"barcode" binding:"required"`
	DestinationCodeID int64  `json:"destination_code_id" binding:"required"`
	Status            string `json:"status" binding:"omitempty,oneof=pending shipped"`
}

// ListLabels handles GET /api/olpn-labels.
func (h *Handler) ListLabels(c *gin.Context) {
	labels, err := h.store.ListLabels(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, labels)
}

// GetLabel handles GET /api/olpn-labels/:id.
func (h *Handler) GetLabel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	label, err := h.store.GetLabel(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

// CreateLabel handles POST /api/olpn-labels. New labels start pending unless
// a status is given.
func (h *Handler) CreateLabel(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	label := &model.OLPNLabel{
		Barcode:           strings.TrimSpace(req.Barcode),
		DestinationCodeID: req.DestinationCodeID,
		Status:            req.Status,
	}
	if !requireText(c, "barcode", label.Barcode) {
		return
	}
	if err := h.store.CreateLabel(c.Request.Context(), label); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, label)
}

// UpdateLabel handles PUT /api/olpn-labels/:id. An omitted status keeps the
// current one.
func (h *Handler) UpdateLabel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	label := &model.OLPNLabel{
		ID:                id,
		Barcode:           strings.TrimSpace(req.Barcode),
		DestinationCodeID: req.DestinationCodeID,
		Status:            req.Status,
	}
	if !requireText(c, "barcode", label.Barcode) {
		return
	}
	if err := h.store.UpdateLabel(c.Request.Context(), label); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

// DeleteLabel handles DELETE /api/olpn-labels/:id.
func (h *Handler) DeleteLabel(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteLabel(c.Request.Context(), id); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
