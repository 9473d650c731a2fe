package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"rpsls_wager/internal/config"
	"rpsls_wager/internal/db"
	httpServer "rpsls_wager/internal/http"
	"rpsls_wager/internal/http/handlers"
	"rpsls_wager/internal/http/middleware"
	"rpsls_wager/internal/logger"
	"rpsls_wager/internal/repository"
	"rpsls_wager/internal/scheduler"
	"rpsls_wager/internal/service"
	"rpsls_wager/internal/store"
	"rpsls_wager/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if err := service.InitJWT(cfg.JWTSecret); err != nil {
		logger.Fatal("jwt init failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		games     store.Store
		auditRepo service.AuditRepository
		backend   string
		checks    = map[string]handlers.Pinger{}
	)
	if cfg.DatabaseURL != "" {
		pool := db.Connect(ctx, cfg.DatabaseURL)
		defer pool.Close()
		games = repository.NewGameStore(pool)
		auditRepo = repository.NewAuditRepository(pool)
		checks["database"] = pool
		backend = "postgres"
	} else {
		logger.Warn("DATABASE_URL not set, games and balances live in memory only")
		games = store.NewMemoryStore()
		auditRepo = store.NewMemoryAuditLog()
		backend = "memory"
	}

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer middleware.CloseRedis()
	if middleware.RedisEnabled() {
		checks["redis"] = handlers.PingFunc(middleware.RedisPing)
	}

	hub := ws.NewHub()
	audit := service.NewAuditService(auditRepo)
	gameService := service.NewGameService(games, audit, hub, service.GameLimits{
		MinStake:       cfg.MinStake,
		MaxStake:       cfg.MaxStake,
		DefaultTimeout: cfg.DefaultTimeout,
		MinTimeout:     cfg.MinTimeout,
		MaxTimeout:     cfg.MaxTimeout,
	})

	sweeper := scheduler.NewSweeper(gameService, hub)
	if err := sweeper.Start(cfg.SweepSpec); err != nil {
		logger.Fatal("invalid SWEEP_SPEC", "spec", cfg.SweepSpec, "error", err)
	}
	defer sweeper.Stop()

	r := gin.New()
	r.Use(gin.Recovery())

	// CORS for a frontend served from another origin
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (cfg.AllowedOrigin == "" || origin == cfg.AllowedOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	httpServer.RegisterRoutes(r, httpServer.Deps{
		Games:  gameService,
		Audit:  audit,
		Hub:    hub,
		Health: handlers.NewHealthHandler(cfg.Version, backend, checks),
		Config: cfg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "store", backend, "version", cfg.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
