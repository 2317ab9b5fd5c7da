// models/player_progress.go - Per-game lifetime progress ledger
package models

import (
	"time"
)

const baseLevelXP = 100

type PlayerProgress struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	PlayerID uint    `gorm:"not null;uniqueIndex:idx_progress_player_game,priority:1" json:"player_id"`
	Player   *Player `gorm:"foreignKey:PlayerID" json:"-"`
	GameID   uint    `gorm:"not null;uniqueIndex:idx_progress_player_game,priority:2" json:"game_id"`
	Game     *Game   `gorm:"foreignKey:GameID" json:"game,omitempty"`

	GamesPlayed              int     `gorm:"default:0" json:"games_played"`
	GamesWon                 int     `gorm:"default:0" json:"games_won"`
	TotalScore               int     `gorm:"default:0" json:"total_score"`
	BestScore                int     `gorm:"default:0" json:"best_score"`
	BestTimeSeconds          int     `gorm:"default:0" json:"best_time_seconds"`
	AverageScore             float64 `gorm:"default:0" json:"average_score"`
	AverageTimeSeconds       float64 `gorm:"default:0" json:"average_time_seconds"`
	DailyChallengesCompleted int     `gorm:"default:0" json:"daily_challenges_completed"`
	TotalHintsUsed           int     `gorm:"default:0" json:"total_hints_used"`

	Level int `gorm:"default:1" json:"level"`
	XP    int `gorm:"default:0" json:"xp"`

	LastPlayedAt *time.Time `json:"last_played_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (PlayerProgress) TableName() string {
	return "player_progress"
}

// CompletionDelta reports what changed during a recorded win.
type CompletionDelta struct {
	XPEarned  int  `json:"xp_earned"`
	LeveledUp bool `json:"leveled_up"`
	NewLevel  int  `json:"new_level"`
}

// RecordCompletion folds a won session into the ledger and returns the
// XP/level outcome. Averages update incrementally rather than being
// recomputed from history.
func (p *PlayerProgress) RecordCompletion(score, durationSeconds int, isDaily bool, now time.Time) CompletionDelta {
	p.GamesPlayed++
	p.GamesWon++
	p.TotalScore += score

	if score > p.BestScore {
		p.BestScore = score
	}
	if p.BestTimeSeconds == 0 || durationSeconds < p.BestTimeSeconds {
		p.BestTimeSeconds = durationSeconds
	}

	p.AverageScore = float64(p.TotalScore) / float64(p.GamesWon)
	if p.GamesWon == 1 {
		p.AverageTimeSeconds = float64(durationSeconds)
	} else {
		n := float64(p.GamesWon)
		p.AverageTimeSeconds = (p.AverageTimeSeconds*(n-1) + float64(durationSeconds)) / n
	}

	if isDaily {
		p.DailyChallengesCompleted++
	}
	p.LastPlayedAt = &now

	oldLevel := p.Level
	earned := CalculateXP(score, durationSeconds)
	p.XP += earned
	p.Level = CalculateLevel(p.XP)

	return CompletionDelta{
		XPEarned:  earned,
		LeveledUp: p.Level > oldLevel,
		NewLevel:  p.Level,
	}
}

// RecordLoss counts a played-but-not-won session.
func (p *PlayerProgress) RecordLoss(now time.Time) {
	p.GamesPlayed++
	p.LastPlayedAt = &now
}

// CalculateXP awards one XP per 10 score points, with a speed bonus of up
// to 50% for finishes under two minutes, and a floor of 10.
func CalculateXP(score, durationSeconds int) int {
	xp := score / 10
	if durationSeconds >= 0 && durationSeconds < 120 {
		bonus := float64(xp) * 0.5 * (1.0 - float64(durationSeconds)/120.0)
		xp += int(bonus)
	}
	if xp < 10 {
		xp = 10
	}
	return xp
}

// CalculateLevel maps cumulative XP onto the level curve: level 1 starts
// at 0 XP, each level requires 10% more XP than the previous (truncated).
func CalculateLevel(xp int) int {
	level := 1
	required := baseLevelXP
	threshold := 0
	for xp >= threshold+required {
		threshold += required
		level++
		required = int(float64(required) * 1.1)
	}
	return level
}

// XPForLevel returns the cumulative XP needed to reach the given level.
func XPForLevel(level int) int {
	required := baseLevelXP
	threshold := 0
	for l := 1; l < level; l++ {
		threshold += required
		required = int(float64(required) * 1.1)
	}
	return threshold
}

// XPToNextLevel reports how much more XP this progress needs to level up.
func (p *PlayerProgress) XPToNextLevel() int {
	return XPForLevel(p.Level+1) - p.XP
}
