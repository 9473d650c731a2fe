package http

import (
	"time"

	"rpsls_wager/internal/config"
	"rpsls_wager/internal/http/handlers"
	"rpsls_wager/internal/http/middleware"
	"rpsls_wager/internal/service"
	"rpsls_wager/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the services the HTTP surface is built on.
type Deps struct {
	Games  *service.GameService
	Audit  *service.AuditService
	Hub    *ws.Hub
	Health *handlers.HealthHandler
	Config *config.Config
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	h := handlers.NewHandler(d.Games, d.Audit)
	cfg := d.Config

	r.Use(middleware.RequestID(), middleware.Metrics())

	// Health checks (no rate limiting)
	r.GET("/health", d.Health.Health)
	r.GET("/healthz", d.Health.Liveness)
	r.GET("/readyz", d.Health.Readiness)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))
	registerAPIRoutes(v1, h, cfg.GameRateLimit, cfg.GameRateWindow)

	r.GET("/ws", ws.HandleWS(d.Hub, cfg.AllowedOrigin))
}

func registerAPIRoutes(api *gin.RouterGroup, h *handlers.Handler, gameRateLimit int, gameRateWindow time.Duration) {
	api.GET("/rules", h.Rules)

	// Account
	account := api.Group("/account", middleware.JWT())
	{
		account.GET("", h.Account)
		account.POST("/deposit", h.Deposit)
	}

	// Game rate limiter middleware (per party, not per IP)
	gameRL := middleware.GameRateLimit(gameRateLimit, gameRateWindow)

	games := api.Group("/games")
	{
		games.POST("", middleware.JWT(), gameRL, h.CreateGame)
		games.GET("", middleware.JWT(), h.ListGames)
		games.GET("/:id", h.GetGame)
		games.GET("/:id/ledger", h.GameLedger)
		games.GET("/:id/audit", h.GameAudit)
		games.POST("/:id/join", middleware.JWT(), gameRL, h.JoinGame)
		games.POST("/:id/reveal", middleware.JWT(), gameRL, h.RevealGame)
		games.POST("/:id/timeout", middleware.JWT(), h.ClaimTimeout)
	}
}
