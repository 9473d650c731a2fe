// Package scheduler runs background jobs that watch games for stalled parties.
package scheduler

import (
	"context"
	"sync"
	"time"

	"rpsls_wager/internal/domain"
	"rpsls_wager/internal/logger"
	"rpsls_wager/internal/service"

	"github.com/robfig/cron/v3"
)

const sweepBatch = 500

// ClaimableSource lists games whose timeout has elapsed.
type ClaimableSource interface {
	ClaimableGames(ctx context.Context, limit int) ([]*service.GameView, error)
	Now() time.Time
}

// Sweeper announces timeout claims as they become available. It only
// publishes events: settling stays with the claimant.
type Sweeper struct {
	src      ClaimableSource
	notifier service.Notifier
	cron     *cron.Cron

	mu        sync.Mutex
	announced map[string]time.Time
}

func NewSweeper(src ClaimableSource, notifier service.Notifier) *Sweeper {
	l := cronLogger{}
	return &Sweeper{
		src:       src,
		notifier:  notifier,
		cron:      cron.New(cron.WithLogger(l), cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l))),
		announced: make(map[string]time.Time),
	}
}

// Start schedules Sweep on spec (standard cron syntax or "@every 30s").
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return err
	}
	s.cron.Start()
	logger.Info("timeout sweeper started", "spec", spec)
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// Sweep publishes timeout_claimable once per game and last action, and
// returns how many events it sent.
func (s *Sweeper) Sweep(ctx context.Context) int {
	views, err := s.src.ClaimableGames(ctx, sweepBatch)
	if err != nil {
		logger.Error("timeout sweep failed", "error", err)
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(views))
	sent := 0
	for _, v := range views {
		seen[v.ID] = struct{}{}
		if last, ok := s.announced[v.ID]; ok && last.Equal(v.LastActionAt) {
			continue
		}
		s.announced[v.ID] = v.LastActionAt
		s.notifier.Publish(domain.GameEvent{
			Type:     domain.EventTimeoutClaimable,
			GameID:   v.ID,
			Phase:    v.Phase.String(),
			Parties:  v.Parties(),
			Details:  map[string]interface{}{"claimant": string(v.Claimant)},
			Deadline: v.Deadline,
			At:       s.src.Now(),
		})
		sent++
	}

	// Settled or no longer claimable games drop out of the set.
	for id := range s.announced {
		if _, ok := seen[id]; !ok {
			delete(s.announced, id)
		}
	}

	if sent > 0 {
		logger.Info("timeout claims announced", "count", sent)
	}
	return sent
}

// cronLogger routes cron's own logging through the service logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Error("cron: "+msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
