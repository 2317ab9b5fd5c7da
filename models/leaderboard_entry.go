// models/leaderboard_entry.go - Period-bucketed score rows
package models

import (
	"fmt"
	"time"
)

// Leaderboard periods
const (
	PeriodDaily     = "daily"
	PeriodWeekly    = "weekly"
	PeriodMonthly   = "monthly"
	PeriodAllTime   = "alltime"
	PeriodChallenge = "challenge"
)

// StandardPeriods are the buckets every scored session contributes to.
var StandardPeriods = []string{PeriodDaily, PeriodWeekly, PeriodMonthly, PeriodAllTime}

type LeaderboardEntry struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	PlayerID uint    `gorm:"not null;uniqueIndex:idx_lb_player_game_period,priority:1" json:"player_id"`
	Player   *Player `gorm:"foreignKey:PlayerID" json:"player,omitempty"`
	GameID   uint    `gorm:"not null;uniqueIndex:idx_lb_player_game_period,priority:2" json:"game_id"`
	Game     *Game   `gorm:"foreignKey:GameID" json:"-"`

	Period    string `gorm:"not null;size:20;uniqueIndex:idx_lb_player_game_period,priority:3" json:"period"`
	PeriodKey string `gorm:"not null;size:30;uniqueIndex:idx_lb_player_game_period,priority:4" json:"period_key"`

	Score       int `gorm:"default:0" json:"score"`
	TimeSeconds int `gorm:"default:0" json:"time_seconds"`
	GamesCount  int `gorm:"default:0" json:"games_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LeaderboardEntry) TableName() string {
	return "leaderboard_entries"
}

// PeriodKey derives the deterministic bucket key for a period at the
// given instant. Weeks start on Monday.
func PeriodKey(period string, now time.Time, loc *time.Location) string {
	local := now.In(loc)
	switch period {
	case PeriodDaily:
		return local.Format(dateLayout)
	case PeriodWeekly:
		offset := (int(local.Weekday()) + 6) % 7
		return local.AddDate(0, 0, -offset).Format(dateLayout)
	case PeriodMonthly:
		return local.Format("2006-01")
	case PeriodAllTime:
		return "all"
	default:
		return local.Format(dateLayout)
	}
}

// ChallengePeriodKey buckets scores for a single daily challenge.
func ChallengePeriodKey(challengeID uint) string {
	return fmt.Sprintf("challenge_%d", challengeID)
}

// ApplyScore folds a session score into the entry. Daily and challenge
// buckets keep the single best score (time only replaced alongside a
// strictly better score); the longer periods accumulate. games_count
// always counts the submission.
func (e *LeaderboardEntry) ApplyScore(period string, score, timeSeconds int) {
	switch period {
	case PeriodDaily, PeriodChallenge:
		if score > e.Score {
			e.Score = score
			e.TimeSeconds = timeSeconds
		}
	default:
		e.Score += score
		if e.TimeSeconds == 0 || timeSeconds < e.TimeSeconds {
			e.TimeSeconds = timeSeconds
		}
	}
	e.GamesCount++
}
