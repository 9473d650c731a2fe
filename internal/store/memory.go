package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"rpsls_wager/internal/domain"
	"rpsls_wager/internal/game"
)

// memory keeps everything in process. State is lost on restart; it backs
// development runs without DATABASE_URL and the service tests.
type memory struct {
	mu       sync.Mutex // guards every map below
	games    map[string]*Game
	balances map[game.Party]int64
	entries  map[string][]*domain.LedgerEntry
	entrySeq int64

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex // per-game single-writer locks
}

// NewMemoryStore constructs an empty in-memory Store.
func NewMemoryStore() Store {
	return &memory{
		games:    make(map[string]*Game),
		balances: make(map[game.Party]int64),
		entries:  make(map[string][]*domain.LedgerEntry),
		locks:    make(map[string]*sync.Mutex),
	}
}

func (m *memory) gameLock(id string) *sync.Mutex {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	l, ok := m.locks[id]
	if !ok {
		l = &sync.Mutex{}
		m.locks[id] = l
	}
	return l
}

func (m *memory) Insert(ctx context.Context, id string, st game.State, instr []game.Instruction, now time.Time) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.games[id]; ok {
		return nil, ErrDuplicate
	}
	escrowed, err := m.applyLocked(id, 0, st.Wager, instr, now)
	if err != nil {
		return nil, err
	}
	g := &Game{ID: id, State: st, Escrowed: escrowed, CreatedAt: now, UpdatedAt: now}
	m.games[id] = g
	return copyGame(g), nil
}

func (m *memory) Get(ctx context.Context, id string) (*Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyGame(g), nil
}

func (m *memory) Mutate(ctx context.Context, id string, now time.Time, fn MutateFunc) (*Game, []game.Instruction, error) {
	l := m.gameLock(id)
	l.Lock()
	defer l.Unlock()

	current, err := m.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	inst, err := game.Restore(current.State)
	if err != nil {
		return nil, nil, err
	}
	instr, err := fn(inst)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	escrowed, err := m.applyLocked(id, current.Escrowed, current.State.Wager, instr, now)
	if err != nil {
		return nil, nil, err
	}
	g := m.games[id]
	g.State = inst.State()
	g.Escrowed = escrowed
	g.UpdatedAt = now
	return copyGame(g), instr, nil
}

// applyLocked validates every instruction before touching any balance.
func (m *memory) applyLocked(id string, escrowed, wager int64, instr []game.Instruction, now time.Time) (int64, error) {
	final, err := CheckEscrow(escrowed, wager, instr)
	if err != nil {
		return 0, err
	}
	debits := make(map[game.Party]int64)
	for _, in := range instr {
		if in.Kind == game.Escrow {
			debits[in.Party] += in.Amount
		}
	}
	for p, amount := range debits {
		if m.balances[p] < amount {
			return 0, ErrInsufficientFunds
		}
	}

	for _, in := range instr {
		if in.Kind == game.Escrow {
			m.balances[in.Party] -= in.Amount
		} else {
			m.balances[in.Party] += in.Amount
		}
		m.entrySeq++
		m.entries[id] = append(m.entries[id], &domain.LedgerEntry{
			ID:        m.entrySeq,
			GameID:    id,
			Party:     string(in.Party),
			Kind:      string(in.Kind),
			Amount:    in.Amount,
			CreatedAt: now,
		})
	}
	return final, nil
}

func (m *memory) ListByParty(ctx context.Context, party game.Party, limit int) ([]*Game, error) {
	return m.list(limit, func(g *Game) bool {
		return g.State.FirstMover == party || g.State.SecondMover == party
	}, newestFirst), nil
}

func (m *memory) ListOpen(ctx context.Context, limit int) ([]*Game, error) {
	return m.list(limit, func(g *Game) bool {
		return g.State.Phase() != game.Settled
	}, idleFirst), nil
}

func newestFirst(a, b *Game) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID < b.ID
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func idleFirst(a, b *Game) bool {
	if a.State.LastActionAt.Equal(b.State.LastActionAt) {
		return a.ID < b.ID
	}
	return a.State.LastActionAt.Before(b.State.LastActionAt)
}

func (m *memory) list(limit int, keep func(*Game) bool, less func(a, b *Game) bool) []*Game {
	if limit <= 0 {
		limit = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []*Game
	for _, g := range m.games {
		if keep(g) {
			res = append(res, copyGame(g))
		}
	}
	sort.Slice(res, func(i, j int) bool { return less(res[i], res[j]) })
	if len(res) > limit {
		res = res[:limit]
	}
	return res
}

func (m *memory) Ledger(ctx context.Context, id string) ([]*domain.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[id]; !ok {
		return nil, ErrNotFound
	}
	res := make([]*domain.LedgerEntry, 0, len(m.entries[id]))
	for _, e := range m.entries[id] {
		cp := *e
		res = append(res, &cp)
	}
	return res, nil
}

func (m *memory) Balance(ctx context.Context, party game.Party) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[party], nil
}

func (m *memory) Deposit(ctx context.Context, party game.Party, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[party] += amount
	return m.balances[party], nil
}

func copyGame(g *Game) *Game {
	cp := *g
	if g.State.Settlement != nil {
		s := *g.State.Settlement
		cp.State.Settlement = &s
	}
	return &cp
}
