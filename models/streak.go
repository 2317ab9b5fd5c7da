// models/streak.go - Daily challenge streak state machine
package models

import (
	"time"
)

// Streak statuses as reported by Evaluate.
const (
	StreakNone           = "none"
	StreakCompletedToday = "completed_today"
	StreakActive         = "active"
	StreakFrozenToday    = "frozen_today"
	StreakGracePeriod    = "grace_period"
	StreakBroken         = "broken"
)

const dateLayout = "2006-01-02"

// StreakRules are the configured continuation rules, captured at
// construction so evaluation stays a pure function of (streak, now).
type StreakRules struct {
	Location         *time.Location
	GracePeriodHours int
	Milestones       []int
}

type Streak struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	PlayerID uint    `gorm:"not null;uniqueIndex:idx_streaks_player_game,priority:1" json:"player_id"`
	Player   *Player `gorm:"foreignKey:PlayerID" json:"-"`
	GameID   uint    `gorm:"not null;uniqueIndex:idx_streaks_player_game,priority:2" json:"game_id"`
	Game     *Game   `gorm:"foreignKey:GameID" json:"game,omitempty"`

	CurrentStreak int `gorm:"default:0" json:"current_streak"`
	LongestStreak int `gorm:"default:0" json:"longest_streak"`

	// Dates in platform timezone as YYYY-MM-DD; empty means never.
	LastCompletedDate string `gorm:"size:10" json:"last_completed_date,omitempty"`
	StreakFrozenDate  string `gorm:"size:10" json:"streak_frozen_date,omitempty"`

	FreezesUsedTotal int `gorm:"default:0" json:"freezes_used_total"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Streak) TableName() string {
	return "streaks"
}

// StreakEvaluation is the outcome of evaluating a streak at a point in
// time. It carries no side effects; a broken streak is reported, not
// applied.
type StreakEvaluation struct {
	Status         string  `json:"status"`
	Streak         int     `json:"streak"`
	LostStreak     int     `json:"lost_streak,omitempty"`
	HoursRemaining float64 `json:"hours_remaining,omitempty"`
	NeedsAction    bool    `json:"needs_action"`
}

// Evaluate classifies the streak at the given instant. Pure: the receiver
// is never mutated. Callers that observe StreakBroken persist the reset
// separately via ApplyBreak.
func (s *Streak) Evaluate(rules StreakRules, now time.Time) StreakEvaluation {
	local := now.In(rules.Location)
	today := local.Format(dateLayout)
	yesterday := local.AddDate(0, 0, -1).Format(dateLayout)

	if s.LastCompletedDate == today {
		return StreakEvaluation{Status: StreakCompletedToday, Streak: s.CurrentStreak}
	}
	if s.LastCompletedDate == yesterday {
		return StreakEvaluation{Status: StreakActive, Streak: s.CurrentStreak, NeedsAction: true}
	}
	if s.StreakFrozenDate == today {
		return StreakEvaluation{Status: StreakFrozenToday, Streak: s.CurrentStreak, NeedsAction: true}
	}
	if s.StreakFrozenDate == yesterday {
		return StreakEvaluation{Status: StreakActive, Streak: s.CurrentStreak, NeedsAction: true}
	}

	// Grace period: measured from the end of the last active day.
	if lastActive := s.lastActiveDate(); lastActive != "" {
		if day, err := time.ParseInLocation(dateLayout, lastActive, rules.Location); err == nil {
			endOfDay := day.AddDate(0, 0, 1)
			hoursSince := local.Sub(endOfDay).Hours()
			grace := float64(rules.GracePeriodHours)
			if hoursSince >= 0 && hoursSince <= grace {
				return StreakEvaluation{
					Status:         StreakGracePeriod,
					Streak:         s.CurrentStreak,
					HoursRemaining: grace - hoursSince,
					NeedsAction:    true,
				}
			}
		}
	}

	if s.CurrentStreak > 0 {
		return StreakEvaluation{
			Status:      StreakBroken,
			Streak:      0,
			LostStreak:  s.CurrentStreak,
			NeedsAction: true,
		}
	}

	return StreakEvaluation{Status: StreakNone, NeedsAction: true}
}

// ApplyBreak resets the counter after Evaluate reported a broken streak.
func (s *Streak) ApplyBreak() {
	s.CurrentStreak = 0
}

// CompletionResult is the outcome of recording a daily completion.
type CompletionResult struct {
	Extended  bool `json:"extended"`
	Streak    int  `json:"streak"`
	Milestone int  `json:"milestone,omitempty"`
}

// RecordCompletion extends the streak for today. Completing twice on the
// same day is a no-op. Callers run ApplyBreak first when the streak is
// stale, so the increment here always continues a live streak or starts
// a new one at 1.
func (s *Streak) RecordCompletion(rules StreakRules, now time.Time) CompletionResult {
	today := now.In(rules.Location).Format(dateLayout)

	if s.LastCompletedDate == today {
		return CompletionResult{Extended: false, Streak: s.CurrentStreak}
	}

	s.CurrentStreak++
	s.LastCompletedDate = today
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}

	result := CompletionResult{Extended: true, Streak: s.CurrentStreak}
	for _, m := range rules.Milestones {
		if s.CurrentStreak == m {
			result.Milestone = m
			break
		}
	}
	return result
}

// CanFreeze reports whether a freeze may be applied today. The player's
// freeze balance is checked by the caller.
func (s *Streak) CanFreeze(rules StreakRules, now time.Time) bool {
	today := now.In(rules.Location).Format(dateLayout)
	if s.LastCompletedDate == today {
		return false
	}
	if s.StreakFrozenDate == today {
		return false
	}
	return true
}

// ApplyFreeze marks today as frozen. Callers verify CanFreeze and debit
// the player's balance first.
func (s *Streak) ApplyFreeze(rules StreakRules, now time.Time) {
	s.StreakFrozenDate = now.In(rules.Location).Format(dateLayout)
	s.FreezesUsedTotal++
}

func (s *Streak) lastActiveDate() string {
	if s.LastCompletedDate >= s.StreakFrozenDate {
		return s.LastCompletedDate
	}
	return s.StreakFrozenDate
}
