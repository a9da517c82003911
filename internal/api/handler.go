package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"wareeye/internal/notification"
	"wareeye/internal/store"
	"wareeye/internal/validation"
)

// AlertDispatcher queues dock-door alerts without blocking the request.
type AlertDispatcher interface {
	Dispatch(event notification.DockEvent) bool
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store   store.Store
	rule    *validation.Rule
	alerts  AlertDispatcher
	webpush *webpush.Options
}

// NewHandler creates a new API handler. alerts may be nil when push delivery
// is not configured.
func NewHandler(s store.Store, rule *validation.Rule, alerts AlertDispatcher, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		store:   s,
		rule:    rule,
		alerts:  alerts,
		webpush: webpushOptions,
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
		return 0, false
	}
	return id, true
}

// requireText answers 400 when a trimmed required field is empty. Binding
// only rejects absent values, not whitespace.
func requireText(c *gin.Context, field, value string) bool {
	if value == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": field + " must not be empty"})
		return false
	}
	return true
}

// writeStoreError maps store sentinels onto HTTP statuses.
func writeStoreError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, store.ErrInvalidReference):
		status = http.StatusBadRequest
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
