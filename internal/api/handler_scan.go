package api

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"wareeye/internal/model"
	"wareeye/internal/mw"
	"wareeye/internal/notification"
	"wareeye/internal/parse"
)

// scanRequest uses pointers so an absent field can be told apart from an
// empty one.
type scanRequest struct {
	CameraName *string `json:"camera_name"`
	Area       *string `json:"area"`
	CameraType *string `json:"camera_type"`
	ClientIP   *string `json:"client_ip"`
	CameraURL  *string `json:"camera_url"`
	Barcode    *string `json:"barcode"`
	Timestamp  *string `json:"timestamp"`
}

// toScan validates the request. The timestamp is left zero when absent.
func (r *scanRequest) toScan() (*model.Scan, error) {
	fields := []struct {
		name  string
		value *string
	}{
		{"camera_name", r.CameraName},
		{"area", r.Area},
		{"camera_type", r.CameraType},
		{"client_ip", r.ClientIP},
		{"camera_url", r.CameraURL},
		{"barcode", r.Barcode},
	}
	for _, f := range fields {
		if f.value == nil {
			return nil, fmt.Errorf("missing field %q", f.name)
		}
	}
	if *r.Barcode == "" {
		return nil, fmt.Errorf("barcode must not be empty")
	}

	scan := &model.Scan{
		CameraName: *r.CameraName,
		Area:       *r.Area,
		CameraType: *r.CameraType,
		ClientIP:   *r.ClientIP,
		CameraURL:  *r.CameraURL,
		Barcode:    *r.Barcode,
	}
	if r.Timestamp != nil && *r.Timestamp != "" {
		ts, err := parse.ParseTimestamp(*r.Timestamp)
		if err != nil {
			return nil, err
		}
		scan.Timestamp = ts
	}
	return scan, nil
}

// IngestScan handles POST /api/scan.
func (h *Handler) IngestScan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}
	scan, err := req.toScan()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload: " + err.Error()})
		return
	}

	result, err := h.store.IngestScan(c.Request.Context(), scan, h.rule)
	if err != nil {
		log.Printf("[%s] failed to ingest scan %q from %q: %v", mw.GetRequestID(c), scan.Barcode, scan.CameraName, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store scan"})
		return
	}

	resp := gin.H{"status": "success", "id": result.ScanID}
	if result.Checked {
		resp["valid"] = result.Valid
		log.Printf("[%s] dock check: label=%q area=%q valid=%t shipped=%t reason=%q",
			mw.GetRequestID(c), scan.Barcode, scan.Area, result.Valid, result.Transitioned, result.Reason)
		h.alertDock(scan, result.DockDoor, result.Valid, result.Transitioned, result.Reason)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) alertDock(scan *model.Scan, dock *model.DockDoor, valid, transitioned bool, reason string) {
	if h.alerts == nil || dock == nil {
		return
	}
	// Repeat scans of a shipped label are not news.
	if valid && !transitioned {
		return
	}
	h.alerts.Dispatch(notification.DockEvent{
		DockDoorID:   dock.ID,
		DockDoorName: dock.Name,
		Barcode:      scan.Barcode,
		Valid:        valid,
		Transitioned: transitioned,
		Reason:       reason,
	})
}
