package cache

import (
	"context"
	"sync"
	"time"

	"github.com/contentai/contentai-golang/internal/logging"
)

// Clearer is anything the sweeper can empty.
type Clearer interface {
	ClearAll()
}

// Sweeper clears its target on a fixed interval in a background goroutine.
// Start is idempotent; Stop ends the goroutine and waits for it.
type Sweeper struct {
	target   Clearer
	interval time.Duration
	log      logging.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

func NewSweeper(target Clearer, interval time.Duration, log logging.Logger) *Sweeper {
	return &Sweeper{
		target:   target,
		interval: interval,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *Sweeper) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

func (s *Sweeper) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	ctx := context.Background()
	s.log.Info(ctx, "cache sweeper started", "interval", s.interval.String())

	for {
		select {
		case <-ticker.C:
			s.target.ClearAll()
			s.log.Info(ctx, "generation caches cleared")
		case <-s.stop:
			return
		}
	}
}

// Stop ends the sweeper and waits for it. A sweeper stopped before Start
// never runs.
func (s *Sweeper) Stop() {
	s.startOnce.Do(func() { close(s.done) })
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}
