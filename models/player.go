// models/player.go - Player profile and consumable wallet
package models

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrInsufficientHints   = errors.New("insufficient hint balance")
	ErrInsufficientFreezes = errors.New("no streak freezes available")
)

type Player struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"uniqueIndex;not null" json:"user_id"`
	User        *User  `gorm:"foreignKey:UserID" json:"-"`
	DisplayName string `gorm:"size:100" json:"display_name"`
	AvatarID    string `gorm:"size:50" json:"avatar_id"`

	// Consumables
	HintsBalance  int `gorm:"default:0" json:"hints_balance"`
	StreakFreezes int `gorm:"default:0" json:"streak_freezes"`

	// Lifetime counters
	TotalGamesPlayed int `gorm:"default:0" json:"total_games_played"`
	TotalTimePlayed  int `gorm:"default:0" json:"total_time_played"` // seconds

	PreferencesJSON      string     `gorm:"type:text" json:"-"`
	NotificationsEnabled bool       `gorm:"default:true" json:"notifications_enabled"`
	LastSeenAt           *time.Time `json:"last_seen_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Player) TableName() string {
	return "players"
}

// AddHints credits hints to the wallet. Negative amounts are ignored.
func (p *Player) AddHints(amount int) {
	if amount > 0 {
		p.HintsBalance += amount
	}
}

// SpendHints debits the wallet, failing without mutation when the
// balance cannot cover the cost.
func (p *Player) SpendHints(cost int) error {
	if cost > p.HintsBalance {
		return ErrInsufficientHints
	}
	p.HintsBalance -= cost
	return nil
}

// AddStreakFreezes credits freezes up to the configured maximum.
func (p *Player) AddStreakFreezes(amount, maxFreezes int) int {
	if amount <= 0 {
		return 0
	}
	before := p.StreakFreezes
	p.StreakFreezes += amount
	if p.StreakFreezes > maxFreezes {
		p.StreakFreezes = maxFreezes
	}
	return p.StreakFreezes - before
}

// SpendStreakFreeze debits one freeze.
func (p *Player) SpendStreakFreeze() error {
	if p.StreakFreezes < 1 {
		return ErrInsufficientFreezes
	}
	p.StreakFreezes--
	return nil
}

func (p *Player) GetPreferences() (map[string]interface{}, error) {
	prefs := make(map[string]interface{})
	if p.PreferencesJSON == "" {
		return prefs, nil
	}
	err := json.Unmarshal([]byte(p.PreferencesJSON), &prefs)
	return prefs, err
}

func (p *Player) SetPreferences(prefs map[string]interface{}) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	p.PreferencesJSON = string(data)
	return nil
}
