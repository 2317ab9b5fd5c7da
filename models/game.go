// models/game.go
package models

import (
	"encoding/json"
	"time"
)

// Game is one entry of the playable games catalog. The catalog is seeded
// from config at startup; rows are matched by slug.
type Game struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Slug        string `gorm:"uniqueIndex;not null;size:50" json:"slug"`
	Name        string `gorm:"not null;size:100" json:"name"`
	Type        string `gorm:"not null;size:50" json:"type"` // cryptogram, sort_puzzle, math_block
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:50" json:"icon"`

	DailyEnabled   bool `gorm:"default:false" json:"daily_enabled"`
	HasLeaderboard bool `gorm:"default:false" json:"has_leaderboard"`
	IsActive       bool `gorm:"default:true" json:"is_active"`

	SettingsJSON string `gorm:"type:text" json:"-"`
	AppStoreURL  string `gorm:"size:255" json:"app_store_url,omitempty"`
	PlayStoreURL string `gorm:"size:255" json:"play_store_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Game) TableName() string {
	return "games"
}

func (g *Game) GetSettings() (map[string]interface{}, error) {
	settings := make(map[string]interface{})
	if g.SettingsJSON == "" {
		return settings, nil
	}
	err := json.Unmarshal([]byte(g.SettingsJSON), &settings)
	return settings, err
}

func (g *Game) SetSettings(settings map[string]interface{}) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	g.SettingsJSON = string(data)
	return nil
}
