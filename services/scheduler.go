// services/scheduler.go - Daily challenge generation worker.
// Fires once per day at the configured reset hour so every daily-enabled
// game always has challenges queued ahead.
package services

import (
	"log"
	"time"

	"gameplatform/config"
)

type Scheduler struct {
	generator *ContentGenerator
	cfg       *config.Config
	now       func() time.Time
	stop      chan struct{}
	done      chan struct{}
}

func NewScheduler(generator *ContentGenerator, cfg *config.Config) *Scheduler {
	return &Scheduler{
		generator: generator,
		cfg:       cfg,
		now:       time.Now,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the worker. It runs one generation pass immediately to
// cover gaps from downtime, then waits for each reset hour.
func (s *Scheduler) Start() {
	go s.run()
	log.Printf("🚀 Challenge scheduler started (reset hour %02d:00 %s)", s.cfg.Daily.ResetHour, s.cfg.Daily.Timezone)
}

// Stop shuts the worker down and waits for it to exit.
func (s *Scheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)

	s.generator.GenerateAll(s.cfg.Daily.GenerateAheadDays, false)

	for {
		timer := time.NewTimer(s.untilNextReset())
		select {
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			s.generator.GenerateAll(s.cfg.Daily.GenerateAheadDays, false)
		}
	}
}

// untilNextReset computes the wait until the next reset hour in the
// platform timezone.
func (s *Scheduler) untilNextReset() time.Duration {
	loc := s.cfg.Location()
	now := s.now().In(loc)

	next := time.Date(now.Year(), now.Month(), now.Day(), s.cfg.Daily.ResetHour, 0, 0, 0, loc)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}
