package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/playperu/blindtest/internal/blindtest"
	"github.com/playperu/blindtest/internal/metrics"
)

// TickSource yields one value per elapsed second and a func to release it.
type TickSource func() (<-chan time.Time, func())

func tickerSource() (<-chan time.Time, func()) {
	t := time.NewTicker(time.Second)
	return t.C, t.Stop
}

// countdown runs one driver goroutine per song cycle. The driver ticks the
// game timer and commits the cycle when it reaches zero.
type countdown struct {
	ticks  TickSource
	broker *Broker
	logger *slog.Logger
}

// start replaces any running driver for ls. Caller holds ls.mu.
func (c *countdown) start(ls *LiveSession) {
	ls.stopCountdown()

	ctx, cancel := context.WithCancel(context.Background())
	ls.stop = cancel
	ticks, release := c.ticks()

	go func() {
		defer release()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				if c.tick(ctx, ls) {
					return
				}
			}
		}
	}()
}

// tick advances the timer once and reports whether the driver is done.
func (c *countdown) tick(ctx context.Context, ls *LiveSession) bool {
	ls.mu.Lock()
	defer ls.mu.Unlock()

	// A newer cycle may have started while we waited for the lock.
	if ctx.Err() != nil {
		return true
	}
	if !ls.game.IsPlaying() {
		return true
	}

	left := ls.game.Tick()
	c.broker.Publish(ls.ID, Event{Type: EventTick, Data: TickEvent{Timer: left}})
	if left > 0 {
		return false
	}

	if result, ok := commitTimeUp(ls, c.broker); ok {
		c.logger.Debug("song cycle committed",
			"session", ls.ID,
			"song", result.SongID,
			"correct", result.IsCorrect,
			"score", result.Score,
		)
	}
	return true
}

// commitTimeUp ends the current cycle and publishes its outcome. Caller holds
// ls.mu.
func commitTimeUp(ls *LiveSession, broker *Broker) (blindtest.GameResult, bool) {
	ls.stopCountdown()

	result, ok := ls.game.TimeUp()
	if !ok {
		return result, false
	}

	outcome := "missed"
	if result.IsCorrect {
		outcome = "correct"
	}
	metrics.SongsCommitted.WithLabelValues(outcome).Inc()

	broker.Publish(ls.ID, Event{Type: EventTimeUp, Data: result})
	if ls.game.IsGameOver() {
		broker.Publish(ls.ID, Event{Type: EventGameOver, Data: GameOverEvent{
			TotalScore: ls.game.TotalScore(),
			Results:    ls.game.Snapshot().Results,
		}})
	}
	return result, true
}
