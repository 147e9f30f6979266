package services

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Evicter drops idle in-memory carts.
type Evicter interface {
	Evict(idle time.Duration) int
}

// SessionSweeper periodically evicts carts idle for longer than idleTTL.
type SessionSweeper struct {
	carts    Evicter
	interval time.Duration
	idleTTL  time.Duration
	log      zerolog.Logger

	ticker   *time.Ticker
	stopChan chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewSessionSweeper(carts Evicter, interval, idleTTL time.Duration, log zerolog.Logger) *SessionSweeper {
	return &SessionSweeper{
		carts:    carts,
		interval: interval,
		idleTTL:  idleTTL,
		log:      log,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *SessionSweeper) Start() {
	s.ticker = time.NewTicker(s.interval)

	go func() {
		defer close(s.done)
		for {
			select {
			case <-s.ticker.C:
				s.Sweep()
			case <-s.stopChan:
				return
			}
		}
	}()

	s.log.Info().
		Dur("interval", s.interval).
		Dur("idle_ttl", s.idleTTL).
		Msg("cart sweeper started")
}

// Sweep runs one eviction pass.
func (s *SessionSweeper) Sweep() int {
	n := s.carts.Evict(s.idleTTL)
	if n > 0 {
		s.log.Info().Int("evicted", n).Msg("idle carts evicted")
	}
	return n
}

// Stop halts the sweeper and waits for the loop to exit. It is safe to call
// more than once.
func (s *SessionSweeper) Stop() {
	s.stopOnce.Do(func() {
		if s.ticker == nil {
			return
		}
		s.ticker.Stop()
		close(s.stopChan)
		<-s.done
		s.log.Info().Msg("cart sweeper stopped")
	})
}
