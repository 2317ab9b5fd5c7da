// database/cleanup_store.go - Storage backing the background cleanup worker
package database

import (
	"time"

	"gameplatform/models"
	"gameplatform/services"
)

var _ services.CleanupStore = (*Store)(nil)

// AbandonStaleSessions marks active or paused sessions untouched since
// `before` as abandoned. Returns the number of sessions affected.
func (s *Store) AbandonStaleSessions(before time.Time) (int64, error) {
	result := s.db.Model(&models.GameSession{}).
		Where("status IN ? AND updated_at < ?",
			[]string{models.SessionActive, models.SessionPaused}, before).
		Update("status", models.SessionAbandoned)
	return result.RowsAffected, result.Error
}

// DeleteIdleGuests removes guest users whose last activity predates
// `before`, along with their player rows.
func (s *Store) DeleteIdleGuests(before time.Time) (int64, error) {
	var ids []uint
	if err := s.db.Model(&models.User{}).
		Where("is_guest = ? AND last_activity < ?", true, before).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	if err := s.db.Where("user_id IN ?", ids).Delete(&models.Player{}).Error; err != nil {
		return 0, err
	}
	result := s.db.Delete(&models.User{}, ids)
	return result.RowsAffected, result.Error
}
