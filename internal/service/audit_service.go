package service

import (
	"context"

	"rpsls_wager/internal/domain"
	"rpsls_wager/internal/game"
	"rpsls_wager/internal/logger"
)

// AuditRepository persists audit entries. Both the pgx repository and the
// in-memory log satisfy it.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByParty(ctx context.Context, party string, limit int) ([]*domain.AuditLog, error)
	GetByGame(ctx context.Context, gameID string, limit int) ([]*domain.AuditLog, error)
}

// AuditService handles audit logging
type AuditService struct {
	repo AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(repo AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Log creates a new audit log entry. Failures are logged, never returned:
// an audit write must not undo a committed settlement.
func (s *AuditService) Log(ctx context.Context, party game.Party, gameID, action, category string, details map[string]interface{}) {
	log := &domain.AuditLog{
		Party:    string(party),
		GameID:   gameID,
		Action:   action,
		Category: category,
		Details:  details,
	}

	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", action, "party", party, "game_id", gameID)
	}
}

// LogGame logs a state-advancing game call.
func (s *AuditService) LogGame(ctx context.Context, party game.Party, gameID, action string, details map[string]interface{}) {
	s.Log(ctx, party, gameID, action, domain.AuditCategoryGame, details)
}

// LogMismatch records a reveal that did not open the commitment.
func (s *AuditService) LogMismatch(ctx context.Context, party game.Party, gameID string, move game.Move) {
	details := map[string]interface{}{
		"claimed_move": move.String(),
	}
	s.Log(ctx, party, gameID, domain.AuditActionCommitmentMismatch, domain.AuditCategoryDispute, details)
}

// LogDeposit logs a deposit action
func (s *AuditService) LogDeposit(ctx context.Context, party game.Party, amount, balance int64) {
	details := map[string]interface{}{
		"amount":  amount,
		"balance": balance,
	}
	s.Log(ctx, party, "", domain.AuditActionDeposit, domain.AuditCategoryBalance, details)
}

// LogTokenIssued logs a bearer token minted for a party.
func (s *AuditService) LogTokenIssued(ctx context.Context, party game.Party, ip, userAgent string) {
	log := &domain.AuditLog{
		Party:     string(party),
		Action:    domain.AuditActionTokenIssued,
		Category:  domain.AuditCategoryAuth,
		IP:        ip,
		UserAgent: userAgent,
	}
	if err := s.repo.Create(ctx, log); err != nil {
		logger.Error("failed to create audit log", "error", err, "action", log.Action, "party", party)
	}
}

// GetPartyAuditLogs returns audit logs for a party, newest first.
func (s *AuditService) GetPartyAuditLogs(ctx context.Context, party game.Party, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByParty(ctx, string(party), limit)
}

// GetGameAuditLogs returns audit logs for a game, newest first.
func (s *AuditService) GetGameAuditLogs(ctx context.Context, gameID string, limit int) ([]*domain.AuditLog, error) {
	return s.repo.GetByGame(ctx, gameID, limit)
}
