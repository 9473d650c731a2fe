package service

import (
	"context"
	"errors"
	"testing"

	"rpsls_wager/internal/domain"
	"rpsls_wager/internal/game"
	"rpsls_wager/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingAuditRepo struct{ store.MemoryAuditLog }

func (*failingAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	return errors.New("disk full")
}

func TestAuditServiceCategories(t *testing.T) {
	ctx := context.Background()
	repo := store.NewMemoryAuditLog()
	audit := NewAuditService(repo)

	audit.LogTokenIssued(ctx, "alice", "10.0.0.1", "cli")
	audit.LogDeposit(ctx, "alice", 50, 150)
	audit.LogMismatch(ctx, "alice", "g1", game.Spock)

	logs, err := audit.GetPartyAuditLogs(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, logs, 3)

	byAction := map[string]*domain.AuditLog{}
	for _, l := range logs {
		byAction[l.Action] = l
	}
	require.Contains(t, byAction, domain.AuditActionTokenIssued)
	assert.Equal(t, domain.AuditCategoryAuth, byAction[domain.AuditActionTokenIssued].Category)
	assert.Equal(t, "10.0.0.1", byAction[domain.AuditActionTokenIssued].IP)
	assert.Equal(t, domain.AuditCategoryBalance, byAction[domain.AuditActionDeposit].Category)

	mismatch := byAction[domain.AuditActionCommitmentMismatch]
	require.NotNil(t, mismatch)
	assert.Equal(t, domain.AuditCategoryDispute, mismatch.Category)
	assert.Equal(t, "spock", mismatch.Details["claimed_move"])

	gameLogs, err := audit.GetGameAuditLogs(ctx, "g1", 10)
	require.NoError(t, err)
	assert.Len(t, gameLogs, 1)
}

func TestAuditWriteFailureIsSwallowed(t *testing.T) {
	audit := NewAuditService(&failingAuditRepo{})
	assert.NotPanics(t, func() {
		audit.LogGame(context.Background(), "bob", "g2", domain.AuditActionGameJoin, nil)
	})
}
