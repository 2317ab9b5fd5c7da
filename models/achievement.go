// models/achievement.go
package models

import "time"

// Achievement requirement types. Counter types evaluate against
// progress/streak snapshots; session types against the completing
// session; custom is never auto-evaluated.
const (
	RequirementStreak         = "streak"
	RequirementGamesPlayed    = "games_played"
	RequirementGamesWon       = "games_won"
	RequirementScore          = "score"
	RequirementDailyCompleted = "daily_completed"
	RequirementLevel          = "level"
	RequirementPerfectGame    = "perfect_game"
	RequirementSpeed          = "speed"
	RequirementNoHints        = "no_hints"
	RequirementCustom         = "custom"
)

type Achievement struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	GameID *uint `gorm:"uniqueIndex:idx_achievements_game_slug,priority:1" json:"game_id,omitempty"` // nil = global
	Game   *Game `gorm:"foreignKey:GameID" json:"-"`

	Slug        string `gorm:"not null;size:100;uniqueIndex:idx_achievements_game_slug,priority:2" json:"slug"`
	Name        string `gorm:"not null;size:100" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	Icon        string `gorm:"size:50" json:"icon"`
	Category    string `gorm:"size:50;index" json:"category"`

	RequirementType  string `gorm:"not null;size:30" json:"requirement_type"`
	RequirementValue int    `gorm:"default:0" json:"requirement_value"`

	Points    int  `gorm:"default:10" json:"points"`
	IsHidden  bool `gorm:"default:false" json:"is_hidden"`
	IsActive  bool `gorm:"default:true" json:"is_active"`
	SortOrder int  `gorm:"default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}

// CheckProgress evaluates counter-based requirements against the current
// progress and streak snapshots. Session-based and custom types always
// return false here.
func (a *Achievement) CheckProgress(progress *PlayerProgress, streak *Streak) bool {
	switch a.RequirementType {
	case RequirementStreak:
		return streak != nil && streak.CurrentStreak >= a.RequirementValue
	case RequirementGamesPlayed:
		return progress != nil && progress.GamesPlayed >= a.RequirementValue
	case RequirementGamesWon:
		return progress != nil && progress.GamesWon >= a.RequirementValue
	case RequirementScore:
		return progress != nil && progress.BestScore >= a.RequirementValue
	case RequirementDailyCompleted:
		return progress != nil && progress.DailyChallengesCompleted >= a.RequirementValue
	case RequirementLevel:
		return progress != nil && progress.Level >= a.RequirementValue
	}
	return false
}

// CheckSession evaluates session-scoped requirements against the
// just-completed session.
func (a *Achievement) CheckSession(session *GameSession) bool {
	switch a.RequirementType {
	case RequirementPerfectGame:
		return session.MistakesCount == 0 && session.HintsUsed == 0
	case RequirementSpeed:
		return session.DurationSeconds <= a.RequirementValue
	case RequirementNoHints:
		return session.HintsUsed == 0
	case RequirementScore:
		return session.Score >= a.RequirementValue
	}
	return false
}

// PlayerAchievement is an unlock row; the (player, achievement) pair is
// unique so re-unlocking is structurally impossible.
type PlayerAchievement struct {
	ID            uint         `gorm:"primaryKey" json:"id"`
	PlayerID      uint         `gorm:"not null;uniqueIndex:idx_player_achievement,priority:1" json:"player_id"`
	Player        *Player      `gorm:"foreignKey:PlayerID" json:"-"`
	AchievementID uint         `gorm:"not null;uniqueIndex:idx_player_achievement,priority:2" json:"achievement_id"`
	Achievement   *Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`

	GameID    *uint `gorm:"index" json:"game_id,omitempty"`
	SessionID *uint `json:"session_id,omitempty"`

	UnlockedAt time.Time `json:"unlocked_at"`
	CreatedAt  time.Time `json:"created_at"`
}

func (PlayerAchievement) TableName() string {
	return "player_achievements"
}
