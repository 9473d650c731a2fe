package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type DepositRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}

// Account returns the caller's balance and recent activity.
func (h *Handler) Account(c *gin.Context) {
	party, ok := getParty(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	balance, err := h.Games.Balance(ctx, party)
	if err != nil {
		respondError(c, err)
		return
	}
	logs, err := h.Audit.GetPartyAuditLogs(ctx, party, queryLimit(c, 20))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"party":    party,
		"balance":  balance,
		"activity": logs,
	})
}

// Deposit credits the caller's balance. It stands in for a wallet deposit flow.
func (h *Handler) Deposit(c *gin.Context) {
	party, ok := getParty(c)
	if !ok {
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	balance, err := h.Games.Deposit(c.Request.Context(), party, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"party": party, "balance": balance})
}
