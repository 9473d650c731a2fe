package store

import (
	"context"
	"sync"
	"time"

	"rpsls_wager/internal/domain"
)

// MemoryAuditLog is an in-process audit log used alongside the memory store.
type MemoryAuditLog struct {
	mu   sync.RWMutex
	seq  int64
	logs []*domain.AuditLog
}

func NewMemoryAuditLog() *MemoryAuditLog {
	return &MemoryAuditLog{}
}

func (a *MemoryAuditLog) Create(ctx context.Context, log *domain.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seq++
	cp := *log
	cp.ID = a.seq
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	a.logs = append(a.logs, &cp)
	return nil
}

func (a *MemoryAuditLog) GetByParty(ctx context.Context, party string, limit int) ([]*domain.AuditLog, error) {
	return a.filter(limit, func(l *domain.AuditLog) bool { return l.Party == party }), nil
}

func (a *MemoryAuditLog) GetByGame(ctx context.Context, gameID string, limit int) ([]*domain.AuditLog, error) {
	return a.filter(limit, func(l *domain.AuditLog) bool { return l.GameID == gameID }), nil
}

// filter returns matches newest first.
func (a *MemoryAuditLog) filter(limit int, keep func(*domain.AuditLog) bool) []*domain.AuditLog {
	if limit <= 0 {
		limit = 100
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	var res []*domain.AuditLog
	for i := len(a.logs) - 1; i >= 0 && len(res) < limit; i-- {
		if keep(a.logs[i]) {
			cp := *a.logs[i]
			res = append(res, &cp)
		}
	}
	return res
}
