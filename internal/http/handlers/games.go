package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"

	"rpsls_wager/internal/game"
	"rpsls_wager/internal/service"

	"github.com/gin-gonic/gin"
)

// moveInput accepts a move as a name ("spock") or a code, quoted or not.
type moveInput string

func (m *moveInput) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*m = moveInput(s)
		return nil
	}
	*m = moveInput(b)
	return nil
}

func (m moveInput) parse() (game.Move, error) {
	mv, err := game.ParseMove(string(m))
	if err != nil || !mv.IsValidNonNull() {
		return game.Null, game.ErrInvalidMove
	}
	return mv, nil
}

type CreateGameRequest struct {
	SecondMover    string `json:"second_mover" binding:"required"`
	Commitment     string `json:"commitment" binding:"required"`
	Stake          int64  `json:"stake" binding:"required"`
	TimeoutSeconds int64  `json:"timeout_seconds"`
}

type JoinRequest struct {
	Move  moveInput `json:"move" binding:"required"`
	Stake int64     `json:"stake" binding:"required"`
}

type RevealRequest struct {
	Move   moveInput `json:"move" binding:"required"`
	Secret string    `json:"secret" binding:"required"`
}

// CreateGame opens a game with the caller as first mover.
func (h *Handler) CreateGame(c *gin.Context) {
	party, ok := getParty(c)
	if !ok {
		return
	}

	var req CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	commitment, err := game.ParseCommitment(req.Commitment)
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.Games.Create(c.Request.Context(), party, service.CreateParams{
		SecondMover:    game.Party(req.SecondMover),
		Commitment:     commitment,
		Stake:          req.Stake,
		TimeoutSeconds: req.TimeoutSeconds,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ListGames returns the caller's games, or every unsettled game with ?open=true.
func (h *Handler) ListGames(c *gin.Context) {
	party, ok := getParty(c)
	if !ok {
		return
	}

	var (
		views []*service.GameView
		err   error
	)
	if c.Query("open") == "true" {
		views, err = h.Games.ListOpen(c.Request.Context(), queryLimit(c, 50))
	} else {
		views, err = h.Games.List(c.Request.Context(), party, queryLimit(c, 50))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": views})
}

func (h *Handler) GetGame(c *gin.Context) {
	view, err := h.Games.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) GameLedger(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.Games.Get(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	entries, err := h.Games.Ledger(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": id, "entries": entries})
}

func (h *Handler) GameAudit(c *gin.Context) {
	logs, err := h.Audit.GetGameAuditLogs(c.Request.Context(), c.Param("id"), queryLimit(c, 100))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game_id": c.Param("id"), "logs": logs})
}

// JoinGame records the second mover's move and escrows their stake.
func (h *Handler) JoinGame(c *gin.Context) {
	party, ok := getParty(c)
	if !ok {
		return
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	move, err := req.Move.parse()
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.Games.Join(c.Request.Context(), c.Param("id"), party, move, req.Stake)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// RevealGame opens the caller's commitment and settles the game.
func (h *Handler) RevealGame(c *gin.Context) {
	party, ok := getParty(c)
	if !ok {
		return
	}

	var req RevealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	move, err := req.Move.parse()
	if err != nil {
		respondError(c, err)
		return
	}
	secret, err := game.ParseSecret(req.Secret)
	if err != nil {
		respondError(c, err)
		return
	}

	res, err := h.Games.Reveal(c.Request.Context(), c.Param("id"), party, move, secret)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ClaimTimeout settles a stalled game in the caller's favour.
func (h *Handler) ClaimTimeout(c *gin.Context) {
	party, ok := getParty(c)
	if !ok {
		return
	}

	view, instr, err := h.Games.ClaimTimeout(c.Request.Context(), c.Param("id"), party)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": view, "instructions": instr})
}
