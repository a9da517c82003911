package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"wareeye/internal/parse"
	"wareeye/internal/store"
)

var errMissingTimestamp = errors.New(`missing field "timestamp"`)

// ListScans handles GET /api/scans.
func (h *Handler) ListScans(c *gin.Context) {
	filter := store.ScanFilter{
		Barcode:    c.Query("barcode"),
		Area:       c.Query("area"),
		CameraName: c.Query("camera_name"),
		Page:       1,
	}
	if raw := c.Query("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page"})
			return
		}
		filter.Page = page
	}
	for param, dst := range map[string]**time.Time{"start_date": &filter.Start, "end_date": &filter.End} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		ts, err := parse.ParseTimestamp(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
			return
		}
		*dst = &ts
	}

	page, err := h.store.ListScans(c.Request.Context(), filter)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// UpdateScan handles PUT /api/scans/:id. Unlike ingestion, a timestamp is required.
func (h *Handler) UpdateScan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	scan, err := req.toScan()
	if err == nil && scan.Timestamp.IsZero() {
		err = errMissingTimestamp
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}

	scan.ID = id
	if err := h.store.UpdateScan(c.Request.Context(), scan); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, scan)
}

// DeleteScan handles DELETE /api/scans/:id.
func (h *Handler) DeleteScan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteScan(c.Request.Context(), id); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
