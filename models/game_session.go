// models/game_session.go - One play-through of a game by a player
package models

import (
	"encoding/json"
	"errors"
	"time"
)

// Session statuses
const (
	SessionActive    = "active"
	SessionPaused    = "paused"
	SessionCompleted = "completed"
	SessionAbandoned = "abandoned"
	SessionFailed    = "failed"
)

// Session types
const (
	SessionTypeDaily    = "daily"
	SessionTypePractice = "practice"
	SessionTypeEndless  = "endless"
	SessionTypeTimed    = "timed"
)

var (
	ErrSessionNotActive = errors.New("session is not active")
	ErrSessionSettled   = errors.New("session already reached a terminal state")
)

type GameSession struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	PlayerID    uint            `gorm:"not null;index" json:"player_id"`
	Player      *Player         `gorm:"foreignKey:PlayerID" json:"-"`
	GameID      uint            `gorm:"not null;index" json:"game_id"`
	Game        *Game           `gorm:"foreignKey:GameID" json:"game,omitempty"`
	ChallengeID *uint           `gorm:"index" json:"challenge_id,omitempty"`
	Challenge   *DailyChallenge `gorm:"foreignKey:ChallengeID" json:"-"`

	SessionType string `gorm:"not null;default:'practice';size:20" json:"session_type"`
	Status      string `gorm:"not null;default:'active';size:20;index" json:"status"`

	Score                int `gorm:"default:0" json:"score"`
	DurationSeconds      int `gorm:"default:0" json:"duration_seconds"`
	HintsUsed            int `gorm:"default:0" json:"hints_used"`
	MovesCount           int `gorm:"default:0" json:"moves_count"`
	MistakesCount        int `gorm:"default:0" json:"mistakes_count"`
	CompletionPercentage int `gorm:"default:0" json:"completion_percentage"`

	SessionDataJSON string `gorm:"type:text" json:"-"`
	DeviceInfoJSON  string `gorm:"type:text" json:"-"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (GameSession) TableName() string {
	return "game_sessions"
}

// IsTerminal reports whether the session has reached a final state.
func (s *GameSession) IsTerminal() bool {
	switch s.Status {
	case SessionCompleted, SessionAbandoned, SessionFailed:
		return true
	}
	return false
}

// IsDailyChallenge reports whether this session plays today's challenge.
func (s *GameSession) IsDailyChallenge() bool {
	return s.SessionType == SessionTypeDaily && s.ChallengeID != nil
}

// Complete transitions the session to completed. The duration is measured
// from StartedAt; completion percentage snaps to 100.
func (s *GameSession) Complete(score int, data map[string]interface{}, now time.Time) error {
	if s.IsTerminal() {
		return ErrSessionSettled
	}
	s.Status = SessionCompleted
	s.Score = score
	s.DurationSeconds = int(now.Sub(s.StartedAt).Seconds())
	if s.DurationSeconds < 0 {
		s.DurationSeconds = 0
	}
	s.CompletionPercentage = 100
	s.CompletedAt = &now
	if len(data) > 0 {
		if err := s.MergeSessionData(data); err != nil {
			return err
		}
	}
	return nil
}

func (s *GameSession) GetSessionData() (map[string]interface{}, error) {
	return unmarshalBlob(s.SessionDataJSON)
}

func (s *GameSession) SetSessionData(data map[string]interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	s.SessionDataJSON = string(raw)
	return nil
}

// MergeSessionData overlays new keys on top of the existing blob.
func (s *GameSession) MergeSessionData(update map[string]interface{}) error {
	data, err := s.GetSessionData()
	if err != nil {
		return err
	}
	for k, v := range update {
		data[k] = v
	}
	return s.SetSessionData(data)
}

func (s *GameSession) GetDeviceInfo() (map[string]interface{}, error) {
	return unmarshalBlob(s.DeviceInfoJSON)
}

func (s *GameSession) SetDeviceInfo(info map[string]interface{}) error {
	raw, err := json.Marshal(info)
	if err != nil {
		return err
	}
	s.DeviceInfoJSON = string(raw)
	return nil
}
