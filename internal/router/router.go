package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/festpass/ticketing/internal/config"
	"github.com/festpass/ticketing/internal/handler"
	"github.com/festpass/ticketing/internal/middleware"
)

// RegisterRoutes registers the operational endpoints: a liveness probe and
// the Prometheus scrape target.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterPublic registers the unauthenticated catalog endpoints. Responses
// are cached in Redis and rate limited per client IP when a client is
// available.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, cacheCfg config.CacheConfig, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	cached := middleware.NewRedisCache(cacheCfg, rdb)
	limited := middleware.NewTokenBucket(rlCfg, rdb)
	e.GET("/v1/events", b.ListEvents, limited, cached)
	e.GET("/v1/events/:id", b.GetEvent, limited, cached)
	e.GET("/v1/events/:id/availability", b.Availability, limited, cached)
}

// RegisterPurchases registers the buyer-facing checkout endpoint behind
// bearer auth and the token-bucket limiter.
func RegisterPurchases(e *echo.Echo, p *handler.PurchaseHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group("/v1/purchases")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.NewTokenBucket(rlCfg, rdb))
	g.POST("", p.Purchase)
}

// RegisterManagement registers the organizer endpoints: batch provisioning
// and the mass status update. Both require a manager or admin role on top
// of bearer auth; company membership is enforced per request by the
// services themselves.
func RegisterManagement(e *echo.Echo, p *handler.ProvisionHandler, s *handler.StatusHandler, jwtSecret string) {
	g := e.Group("/v1/wristbands")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("MANAGER", "ADMIN"))
	g.POST("/batch", p.BatchProvision)
	g.POST("/status", s.MassUpdate)
}
