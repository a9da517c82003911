package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"wareeye/config"
	"wareeye/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.ServerConfig, handler *Handler) *gin.Engine {
	r := gin.Default()
	r.Use(mw.RequestID())

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// Cached GET listings; any successful write flushes the cache.
	cacheStore := cache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
	caching := mw.Cache(cacheStore, cfg.CacheTTL)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Scanners post frequently from one address; they are not rate limited.
	r.POST("/api/scan", caching, handler.IngestScan)

	api := r.Group("/api")
	api.Use(rateLimiter, caching)
	{
		api.GET("/scans", handler.ListScans)
		api.PUT("/scans/:id", handler.UpdateScan)
		api.DELETE("/scans/:id", handler.DeleteScan)

		api.GET("/destination-codes", handler.ListDestinationCodes)
		api.POST("/destination-codes", handler.CreateDestinationCode)
		api.PUT("/destination-codes/:id", handler.UpdateDestinationCode)
		api.DELETE("/destination-codes/:id", handler.DeleteDestinationCode)

		api.GET("/dock-doors", handler.ListDockDoors)
		api.POST("/dock-doors", handler.CreateDockDoor)
		api.PUT("/dock-doors/:id", handler.UpdateDockDoor)
		api.DELETE("/dock-doors/:id", handler.DeleteDockDoor)

		api.GET("/olpn-labels", handler.ListLabels)
		api.GET("/olpn-labels/:id", handler.GetLabel)
		api.POST("/olpn-labels", handler.CreateLabel)
		api.PUT("/olpn-labels/:id", handler.UpdateLabel)
		api.DELETE("/olpn-labels/:id", handler.DeleteLabel)

		api.GET("/cameras", handler.ListCameras)
		api.POST("/cameras", handler.CreateCamera)
		api.PUT("/cameras/:id", handler.UpdateCamera)
		api.DELETE("/cameras/:id", handler.DeleteCamera)
		api.POST("/cameras/:id/scanning", handler.ToggleScanning)
	}

	// Subscription state is per browser and must never be served from cache.
	push := r.Group("/api")
	push.Use(rateLimiter)
	{
		push.GET("/subscriptions", handler.GetSubscription)
		push.PUT("/subscriptions", handler.PutSubscription)
		push.DELETE("/subscriptions", handler.DeleteSubscription)
		push.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
