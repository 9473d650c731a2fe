package handlers

import (
	"net/http"

	"rpsls_wager/internal/game"

	"github.com/gin-gonic/gin"
)

type moveRule struct {
	Code    uint8       `json:"code"`
	Move    game.Move   `json:"move"`
	Defeats []game.Move `json:"defeats"`
}

// Rules publishes the dominance table and the host's game limits.
func (h *Handler) Rules(c *gin.Context) {
	rules := make([]moveRule, 0, len(game.Moves))
	for _, m := range game.Moves {
		rules = append(rules, moveRule{Code: m.Code(), Move: m, Defeats: m.Defeats()})
	}

	limits := h.Games.GetLimits()
	c.JSON(http.StatusOK, gin.H{
		"moves":       rules,
		"commitment":  "keccak256(uint8 move_code || uint256 secret)",
		"min_stake":   limits.MinStake,
		"max_stake":   limits.MaxStake,
		"timeout":     int64(limits.DefaultTimeout.Seconds()),
		"min_timeout": int64(limits.MinTimeout.Seconds()),
		"max_timeout": int64(limits.MaxTimeout.Seconds()),
	})
}
