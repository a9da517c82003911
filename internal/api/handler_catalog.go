package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"wareeye/internal/model"
)

type destinationCodeRequest struct {
	Code string `json:"code" binding:"required,max=8"`
	Name string `json:"name" binding:"required,max=64"`
}

// ListDestinationCodes handles GET /api/destination-codes.
func (h *Handler) ListDestinationCodes(c *gin.Context) {
	codes, err := h.store.ListDestinationCodes(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, codes)
}

// CreateDestinationCode handles POST /api/destination-codes.
func (h *Handler) CreateDestinationCode(c *gin.Context) {
	var req destinationCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	code := &model.DestinationCode{Code: strings.TrimSpace(req.Code), Name: strings.TrimSpace(req.Name)}
	if !requireText(c, "code", code.Code) || !requireText(c, "name", code.Name) {
		return
	}
	if err := h.store.CreateDestinationCode(c.Request.Context(), code); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, code)
}

// UpdateDestinationCode handles PUT /api/destination-codes/:id.
func (h *Handler) UpdateDestinationCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req destinationCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	code := &model.DestinationCode{ID: id, Code: strings.TrimSpace(req.Code), Name: strings.TrimSpace(req.Name)}
	if !requireText(c, "code", code.Code) || !requireText(c, "name", code.Name) {
		return
	}
	if err := h.store.UpdateDestinationCode(c.Request.Context(), code); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, code)
}

// DeleteDestinationCode handles DELETE /api/destination-codes/:id.
func (h *Handler) DeleteDestinationCode(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteDestinationCode(c.Request.Context(), id); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type dockDoorRequest struct {
	Name              string  `json:"name" binding:"required"`
	DestinationCodeID int64   `json:"destination_code_id" binding:"required"`
	Description       *string `json:"description"`
	IsActive          *bool   `json:"is_active"`
}

func (r *dockDoorRequest) toDockDoor(id int64) *model.DockDoor {
	door := &model.DockDoor{
		ID:                id,
		Name:              strings.TrimSpace(r.Name),
		DestinationCodeID: r.DestinationCodeID,
		Description:       r.Description,
		IsActive:          true,
	}
	if r.IsActive != nil {
		door.IsActive = *r.IsActive
	}
	return door
}

// ListDockDoors handles GET /api/dock-doors.
func (h *Handler) ListDockDoors(c *gin.Context) {
	doors, err := h.store.ListDockDoors(c.Request.Context())
	if err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, doors)
}

// CreateDockDoor handles POST /api/dock-doors.
func (h *Handler) CreateDockDoor(c *gin.Context) {
	var req dockDoorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	door := req.toDockDoor(0)
	if !requireText(c, "name", door.Name) {
		return
	}
	if err := h.store.CreateDockDoor(c.Request.Context(), door); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, door)
}

// UpdateDockDoor handles PUT /api/dock-doors/:id.
func (h *Handler) UpdateDockDoor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dockDoorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	door := req.toDockDoor(id)
	if !requireText(c, "name", door.Name) {
		return
	}
	if err := h.store.UpdateDockDoor(c.Request.Context(), door); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, door)
}

// DeleteDockDoor handles DELETE /api/dock-doors/:id.
func (h *Handler) DeleteDockDoor(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteDockDoor(c.Request.Context(), id); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
