package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wareeye/internal/model"
)

type cameraRequest struct {
	Name      string `json:"name" binding:"required"`
	Zone      string `json:"zone"`
	IPAddress string `json:"ip_address" binding:"required"`
	Password  string `json:"password"`
}

// ListCameras handles GET /api/cameras.
func (h *Handler) ListCameras(c *gin.Context) {
	cameras, err := h.store.ListCameras(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, cameras)
}

// CreateCamera handles POST /api/cameras.
func (h *Handler) CreateCamera(c *gin.Context) {
	var req cameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	camera := &model.Camera{Name: req.Name, Zone: req.Zone, IPAddress: req.IPAddress, Password: req.Password}
	if err := h.store.CreateCamera(c.Request.Context(), camera); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, camera)
}

// UpdateCamera handles PUT /api/cameras/:id.
func (h *Handler) UpdateCamera(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req cameraRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	camera := &model.Camera{ID: id, Name: req.Name, Zone: req.Zone, IPAddress: req.IPAddress, Password: req.Password}
	if err := h.store.UpdateCamera(c.Request.Context(), camera); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, camera)
}

// DeleteCamera handles DELETE /api/cameras/:id.
func (h *Handler) DeleteCamera(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteCamera(c.Request.Context(), id); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleScanning handles POST /api/cameras/:id/scanning.
func (h *Handler) ToggleScanning(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	scanning, err := h.store.ToggleScanning(c.Request.Context(), id)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "scanning": scanning})
}
