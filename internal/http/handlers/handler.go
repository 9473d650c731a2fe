package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"rpsls_wager/internal/game"
	"rpsls_wager/internal/http/middleware"
	"rpsls_wager/internal/logger"
	"rpsls_wager/internal/service"
	"rpsls_wager/internal/store"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Games *service.GameService
	Audit *service.AuditService
}

func NewHandler(games *service.GameService, audit *service.AuditService) *Handler {
	return &Handler{Games: games, Audit: audit}
}

// getParty returns the authenticated party set by middleware.JWT.
func getParty(c *gin.Context) (game.Party, bool) {
	p := c.GetString(middleware.PartyKey)
	if p == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return "", false
	}
	return game.Party(p), true
}

func queryLimit(c *gin.Context, def int) int {
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// statusFor maps store and protocol errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInsufficientFunds):
		return http.StatusPaymentRequired
	case errors.Is(err, store.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict
	}
	switch game.KindOf(err) {
	case game.KindValidation:
		return http.StatusBadRequest
	case game.KindAuthorization:
		return http.StatusForbidden
	case game.KindState:
		return http.StatusConflict
	case game.KindResource:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.FromContext(c.Request.Context()).Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	body := gin.H{"error": err.Error()}
	if kind := game.KindOf(err); kind != game.KindUnknown {
		body["kind"] = kind
	}
	c.JSON(status, body)
}
