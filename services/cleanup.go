package services

import (
	"log"
	"time"

	"gameplatform/config"
)

// CleanupStore is the slice of storage the cleanup worker needs.
type CleanupStore interface {
	AbandonStaleSessions(before time.Time) (int64, error)
	DeleteIdleGuests(before time.Time) (int64, error)
}

// CleanupService handles background cleanup tasks
type CleanupService struct {
	store CleanupStore
	cfg   *config.Config
	now   func() time.Time
	stop  chan struct{}
	done  chan struct{}
}

func NewCleanupService(store CleanupStore, cfg *config.Config) *CleanupService {
	return &CleanupService{
		store: store,
		cfg:   cfg,
		now:   time.Now,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// Start starts the cleanup worker.
func (s *CleanupService) Start() {
	go s.run()
	log.Println("🔄 Cleanup worker started")
}

// Stop stops the cleanup worker and waits for it to exit.
func (s *CleanupService) Stop() {
	close(s.stop)
	<-s.done
}

func (s *CleanupService) run() {
	defer close(s.done)

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	s.sweep()
	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stop:
			return
		}
	}
}

func (s *CleanupService) sweep() {
	if err := s.AbandonStaleSessions(); err != nil {
		log.Printf("Error abandoning stale sessions: %v", err)
	}
	if err := s.DeleteIdleGuests(); err != nil {
		log.Printf("Error deleting idle guests: %v", err)
	}
}

// AbandonStaleSessions marks active and paused sessions as abandoned
// once they have sat untouched past the configured timeout. Abandoned
// sessions never settle, so no scores or streaks are affected.
func (s *CleanupService) AbandonStaleSessions() error {
	cutoff := s.now().Add(-s.cfg.Sessions.StaleTimeout())
	count, err := s.store.AbandonStaleSessions(cutoff)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("✅ Abandoned %d stale session(s)", count)
	}
	return nil
}

// DeleteIdleGuests removes guest accounts with no activity for the
// configured retention window. Registered accounts are never touched.
func (s *CleanupService) DeleteIdleGuests() error {
	retention := s.cfg.Sessions.GuestRetention()
	if retention <= 0 {
		return nil
	}
	cutoff := s.now().Add(-retention)
	count, err := s.store.DeleteIdleGuests(cutoff)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Printf("✅ Cleaned up %d idle guest account(s)", count)
	}
	return nil
}
