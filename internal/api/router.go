package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"farmflow-backend/config"
	"farmflow-backend/internal/metrics"
	"farmflow-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, responseCache mw.ResponseCache, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), mw.Metrics())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"*"},
		MaxAge:          12 * time.Hour,
	}))

	r.GET("/", h.Root)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))

	api := r.Group("/")
	api.Use(mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	api.Use(mw.InvalidateOnWrite(responseCache))
	{
		caching := mw.Cache(responseCache, cfg.CacheTTL)

		api.GET("/machines", caching, h.ListMachines)
		api.GET("/machines/:machine_id", caching, h.GetMachine)
		api.GET("/machines/:machine_id/prechecks", caching, h.ListPreChecks)
		api.POST("/machines/:machine_id/maintenance", h.RecordMaintenance)
		api.POST("/precheck", h.SavePreCheck)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
