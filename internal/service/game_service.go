package service

import (
	"context"
	"errors"
	"math"
	"time"

	"rpsls_wager/internal/domain"
	"rpsls_wager/internal/game"
	"rpsls_wager/internal/logger"
	"rpsls_wager/internal/store"

	"github.com/google/uuid"
)

var (
	ErrStakeTooLow       = &game.Error{Code: "stake below minimum", Kind: game.KindValidation}
	ErrStakeTooHigh      = &game.Error{Code: "stake exceeds maximum", Kind: game.KindValidation}
	ErrTimeoutOutOfRange = &game.Error{Code: "timeout out of range", Kind: game.KindValidation}
)

// GameLimits bounds what a first mover may open a game with.
type GameLimits struct {
	MinStake       int64
	MaxStake       int64
	DefaultTimeout time.Duration
	MinTimeout     time.Duration
	MaxTimeout     time.Duration
}

// DefaultLimits is used when the host is not configured otherwise.
var DefaultLimits = GameLimits{
	MinStake:       1,
	MaxStake:       1_000_000_000,
	DefaultTimeout: game.DefaultTimeout,
	MinTimeout:     30 * time.Second,
	MaxTimeout:     24 * time.Hour,
}

// Notifier receives an event after every committed transition.
type Notifier interface {
	Publish(ev domain.GameEvent)
}

type nopNotifier struct{}

func (nopNotifier) Publish(domain.GameEvent) {}

// CreateParams are the first mover's inputs to open a game.
type CreateParams struct {
	SecondMover    game.Party
	Commitment     game.Commitment
	Stake          int64
	TimeoutSeconds int64
}

// RevealResult is returned to the first mover after a successful reveal.
type RevealResult struct {
	Outcome      game.Outcome       `json:"outcome"`
	Instructions []game.Instruction `json:"instructions"`
	Game         *GameView          `json:"game"`
}

// GameService drives game instances against a store. Every transition is
// committed together with its settlement instructions.
type GameService struct {
	store    store.Store
	audit    *AuditService
	notifier Notifier
	limits   GameLimits
	now      func() time.Time
}

// NewGameService creates a new game service. A nil notifier drops events.
func NewGameService(st store.Store, audit *AuditService, notifier Notifier, limits GameLimits) *GameService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &GameService{
		store:    st,
		audit:    audit,
		notifier: notifier,
		limits:   limits,
		now:      time.Now,
	}
}

// SetClock replaces the time source. Tests use it to step past deadlines.
func (s *GameService) SetClock(now func() time.Time) {
	s.now = now
}

// GetLimits returns the configured game limits.
func (s *GameService) GetLimits() GameLimits {
	return s.limits
}

// ValidateStake checks if a stake is within allowed limits
func (s *GameService) ValidateStake(stake int64) error {
	if stake <= 0 {
		return game.ErrInvalidStake
	}
	if stake < s.limits.MinStake {
		return ErrStakeTooLow
	}
	if s.limits.MaxStake > 0 && stake > s.limits.MaxStake {
		return ErrStakeTooHigh
	}
	return nil
}

func (s *GameService) timeoutFor(seconds int64) (time.Duration, error) {
	if seconds == 0 {
		if s.limits.DefaultTimeout > 0 {
			return s.limits.DefaultTimeout, nil
		}
		return game.DefaultTimeout, nil
	}
	if seconds < 0 {
		return 0, game.ErrInvalidTimeout
	}
	if s.limits.MaxTimeout > 0 && seconds > int64(s.limits.MaxTimeout/time.Second) {
		return 0, ErrTimeoutOutOfRange
	}
	if seconds > int64(math.MaxInt64/time.Second) {
		return 0, ErrTimeoutOutOfRange
	}
	d := time.Duration(seconds) * time.Second
	if d < s.limits.MinTimeout || (s.limits.MaxTimeout > 0 && d > s.limits.MaxTimeout) {
		return 0, ErrTimeoutOutOfRange
	}
	return d, nil
}

// Create opens a game for caller and escrows their stake.
func (s *GameService) Create(ctx context.Context, caller game.Party, p CreateParams) (*GameView, error) {
	if err := s.ValidateStake(p.Stake); err != nil {
		return nil, s.fail("create", "", caller, err)
	}
	timeout, err := s.timeoutFor(p.TimeoutSeconds)
	if err != nil {
		return nil, s.fail("create", "", caller, err)
	}

	now := s.now()
	inst, instr, err := game.Create(caller, p.Commitment, p.Stake, timeout, p.SecondMover, now)
	if err != nil {
		return nil, s.fail("create", "", caller, err)
	}

	id := uuid.NewString()
	g, err := s.store.Insert(ctx, id, inst.State(), instr, now)
	if err != nil {
		return nil, s.fail("create", id, caller, err)
	}
	view, err := newView(g, now)
	if err != nil {
		return nil, err
	}

	gamesCreated.Inc()
	logger.Info("game created", "game_id", id, "first_mover", caller, "second_mover", p.SecondMover, "stake", p.Stake)
	s.audit.LogGame(ctx, caller, id, domain.AuditActionGameCreate, map[string]interface{}{
		"second_mover": string(p.SecondMover),
		"stake":        p.Stake,
		"commitment":   p.Commitment.Hex(),
		"timeout":      int64(timeout / time.Second),
	})
	s.publish(domain.EventGameCreated, view, nil)
	return view, nil
}

// Join records the second mover's move and escrows their matching stake.
func (s *GameService) Join(ctx context.Context, id string, caller game.Party, m game.Move, paidStake int64) (*GameView, error) {
	now := s.now()
	g, _, err := s.store.Mutate(ctx, id, now, func(inst *game.Instance) ([]game.Instruction, error) {
		return inst.Join(caller, m, paidStake, now)
	})
	if err != nil {
		return nil, s.fail("join", id, caller, err)
	}
	view, err := newView(g, now)
	if err != nil {
		return nil, err
	}

	logger.Info("game joined", "game_id", id, "second_mover", caller, "move", m)
	s.audit.LogGame(ctx, caller, id, domain.AuditActionGameJoin, map[string]interface{}{
		"move":  m.String(),
		"stake": paidStake,
	})
	s.publish(domain.EventGameJoined, view, map[string]interface{}{"second_move": m.String()})
	return view, nil
}

// Reveal opens the first mover's commitment and settles the game.
func (s *GameService) Reveal(ctx context.Context, id string, caller game.Party, m game.Move, secret game.Secret) (*RevealResult, error) {
	now := s.now()
	var outcome game.Outcome
	g, instr, err := s.store.Mutate(ctx, id, now, func(inst *game.Instance) ([]game.Instruction, error) {
		o, instr, err := inst.Reveal(caller, m, secret, now)
		outcome = o
		return instr, err
	})
	if err != nil {
		if errors.Is(err, game.ErrCommitmentMismatch) {
			commitmentMismatches.Inc()
			logger.Warn("commitment mismatch", "game_id", id, "party", caller, "claimed_move", m)
			s.audit.LogMismatch(ctx, caller, id, m)
		}
		return nil, s.fail("reveal", id, caller, err)
	}
	view, err := newView(g, now)
	if err != nil {
		return nil, err
	}

	s.settled(ctx, view, caller, domain.AuditActionGameReveal, instr)
	return &RevealResult{Outcome: outcome, Instructions: instr, Game: view}, nil
}

// SecondMoverTimeout claims the pot for the second mover after the first
// mover failed to reveal in time.
func (s *GameService) SecondMoverTimeout(ctx context.Context, id string, caller game.Party) (*GameView, []game.Instruction, error) {
	return s.claim(ctx, "second_mover_timeout", id, caller, func(inst *game.Instance, now time.Time) ([]game.Instruction, error) {
		return inst.SecondMoverTimeoutClaim(caller, now)
	})
}

// FirstMoverTimeout refunds the first mover when nobody joined in time.
func (s *GameService) FirstMoverTimeout(ctx context.Context, id string, caller game.Party) (*GameView, []game.Instruction, error) {
	return s.claim(ctx, "first_mover_timeout", id, caller, func(inst *game.Instance, now time.Time) ([]game.Instruction, error) {
		return inst.FirstMoverTimeoutClaim(caller, now)
	})
}

// ClaimTimeout settles by whichever timeout path the game's phase allows.
func (s *GameService) ClaimTimeout(ctx context.Context, id string, caller game.Party) (*GameView, []game.Instruction, error) {
	return s.claim(ctx, "timeout", id, caller, func(inst *game.Instance, now time.Time) ([]game.Instruction, error) {
		switch inst.Phase() {
		case game.AwaitingSecondMove:
			return inst.FirstMoverTimeoutClaim(caller, now)
		case game.AwaitingReveal:
			return inst.SecondMoverTimeoutClaim(caller, now)
		default:
			return nil, game.ErrInvalidPhase
		}
	})
}

func (s *GameService) claim(ctx context.Context, op, id string, caller game.Party, fn func(*game.Instance, time.Time) ([]game.Instruction, error)) (*GameView, []game.Instruction, error) {
	now := s.now()
	g, instr, err := s.store.Mutate(ctx, id, now, func(inst *game.Instance) ([]game.Instruction, error) {
		return fn(inst, now)
	})
	if err != nil {
		return nil, nil, s.fail(op, id, caller, err)
	}
	view, err := newView(g, now)
	if err != nil {
		return nil, nil, err
	}

	s.settled(ctx, view, caller, domain.AuditActionGameTimeout, instr)
	return view, instr, nil
}

func (s *GameService) settled(ctx context.Context, view *GameView, caller game.Party, action string, instr []game.Instruction) {
	st := view.Settlement
	if st == nil {
		return
	}
	gamesSettled.WithLabelValues(string(st.Path), st.Outcome.String()).Inc()
	logger.Info("game settled", "game_id", view.ID, "path", st.Path, "outcome", st.Outcome, "winner", st.Winner)

	s.audit.LogGame(ctx, caller, view.ID, action, map[string]interface{}{
		"path":         string(st.Path),
		"outcome":      st.Outcome.String(),
		"winner":       string(st.Winner),
		"instructions": instr,
	})
	s.publish(domain.EventGameSettled, view, map[string]interface{}{
		"path":       string(st.Path),
		"outcome":    st.Outcome.String(),
		"winner":     string(st.Winner),
		"first_move": view.FirstMove.String(),
	})
}

// fail records a rejected operation and returns err unchanged.
func (s *GameService) fail(op, id string, caller game.Party, err error) error {
	kind := game.KindOf(err)
	if errors.Is(err, store.ErrNotFound) {
		kind = "not_found"
	} else if errors.Is(err, store.ErrInsufficientFunds) {
		kind = "insufficient_funds"
	}
	transitionErrors.WithLabelValues(op, string(kind)).Inc()
	logger.Debug("game operation rejected", "op", op, "game_id", id, "party", caller, "error", err)
	return err
}

func (s *GameService) publish(typ string, view *GameView, details map[string]interface{}) {
	s.notifier.Publish(domain.GameEvent{
		Type:     typ,
		GameID:   view.ID,
		Phase:    view.Phase.String(),
		Parties:  view.Parties(),
		Details:  details,
		Deadline: view.Deadline,
		At:       view.UpdatedAt,
	})
}

// Get returns the current view of a game.
func (s *GameService) Get(ctx context.Context, id string) (*GameView, error) {
	g, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return newView(g, s.now())
}

// List returns the games party takes part in, newest first.
func (s *GameService) List(ctx context.Context, party game.Party, limit int) ([]*GameView, error) {
	games, err := s.store.ListByParty(ctx, party, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.views(games)
}

// ListOpen returns unsettled games, longest idle first.
func (s *GameService) ListOpen(ctx context.Context, limit int) ([]*GameView, error) {
	games, err := s.store.ListOpen(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.views(games)
}

func (s *GameService) views(games []*store.Game) ([]*GameView, error) {
	now := s.now()
	out := make([]*GameView, 0, len(games))
	for _, g := range games {
		v, err := newView(g, now)
		if err != nil {
			logger.Error("skipping corrupt game", "game_id", g.ID, "error", err)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// Ledger returns the executed instructions of a game in order.
func (s *GameService) Ledger(ctx context.Context, id string) ([]*domain.LedgerEntry, error) {
	return s.store.Ledger(ctx, id)
}

// Balance returns a party's spendable balance.
func (s *GameService) Balance(ctx context.Context, party game.Party) (int64, error) {
	return s.store.Balance(ctx, party)
}

// Deposit credits a party's balance and returns the new balance.
func (s *GameService) Deposit(ctx context.Context, party game.Party, amount int64) (int64, error) {
	bal, err := s.store.Deposit(ctx, party, amount)
	if err != nil {
		return 0, err
	}
	logger.Info("deposit", "party", party, "amount", amount, "balance", bal)
	s.audit.LogDeposit(ctx, party, amount, bal)
	return bal, nil
}

// Now returns the service clock's current instant.
func (s *GameService) Now() time.Time {
	return s.now()
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 50
	}
	return limit
}

// ClaimableGames returns unsettled games whose timeout has elapsed.
func (s *GameService) ClaimableGames(ctx context.Context, limit int) ([]*GameView, error) {
	games, err := s.store.ListOpen(ctx, limit)
	if err != nil {
		return nil, err
	}
	views, err := s.views(games)
	if err != nil {
		return nil, err
	}
	out := views[:0]
	for _, v := range views {
		if v.Claimable {
			out = append(out, v)
		}
	}
	return out, nil
}
