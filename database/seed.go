// database/seed.go - Seed games catalog and default achievements
package database

import (
	"log"

	"gameplatform/config"
	"gameplatform/models"

	"gorm.io/gorm/clause"
)

// SeedGames upserts the games catalog from config, matched by slug.
func SeedGames(cfg *config.Config) {
	db := GetDB()

	for _, gc := range cfg.Games {
		game := models.Game{
			Slug:           gc.Slug,
			Name:           gc.Name,
			Type:           gc.Type,
			Description:    gc.Description,
			Icon:           gc.Icon,
			DailyEnabled:   gc.DailyEnabled,
			HasLeaderboard: gc.HasLeaderboard,
			IsActive:       true,
		}
		err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "type", "description", "icon", "daily_enabled", "has_leaderboard",
			}),
		}).Create(&game).Error
		if err != nil {
			log.Printf("Failed to seed game %s: %v", gc.Slug, err)
		}
	}

	log.Printf("✅ Seeded %d games", len(cfg.Games))
}

type seedAchievement struct {
	Slug             string
	Name             string
	Description      string
	Icon             string
	Category         string
	Points           int
	RequirementType  string
	RequirementValue int
	IsHidden         bool
}

var defaultAchievements = []seedAchievement{
	// Streaks
	{"streak-7", "Week Warrior", "Complete 7 days in a row", "🔥", "streak", 50, models.RequirementStreak, 7, false},
	{"streak-30", "Monthly Master", "Complete 30 days in a row", "🌟", "streak", 200, models.RequirementStreak, 30, false},
	{"streak-100", "Century Club", "Complete 100 days in a row", "💯", "streak", 500, models.RequirementStreak, 100, false},
	{"streak-365", "Year of Dedication", "Complete 365 days in a row", "🏆", "streak", 1000, models.RequirementStreak, 365, true},

	// Progress
	{"first-win", "First Victory", "Complete your first puzzle", "🎯", "progress", 10, models.RequirementGamesWon, 1, false},
	{"games-10", "Getting Started", "Complete 10 puzzles", "📈", "progress", 25, models.RequirementGamesWon, 10, false},
	{"games-50", "Dedicated Player", "Complete 50 puzzles", "⭐", "progress", 75, models.RequirementGamesWon, 50, false},
	{"games-100", "Puzzle Enthusiast", "Complete 100 puzzles", "🌠", "progress", 150, models.RequirementGamesWon, 100, false},
	{"games-500", "Puzzle Master", "Complete 500 puzzles", "👑", "progress", 300, models.RequirementGamesWon, 500, false},
	{"daily-10", "Daily Dabbler", "Complete 10 daily challenges", "📅", "progress", 30, models.RequirementDailyCompleted, 10, false},
	{"daily-50", "Daily Devotee", "Complete 50 daily challenges", "📆", "progress", 100, models.RequirementDailyCompleted, 50, false},
	{"level-5", "Rising Star", "Reach level 5", "🌱", "progress", 25, models.RequirementLevel, 5, false},
	{"level-10", "Experienced", "Reach level 10", "🌿", "progress", 50, models.RequirementLevel, 10, false},
	{"level-25", "Veteran", "Reach level 25", "🌳", "progress", 100, models.RequirementLevel, 25, false},

	// Mastery and speed
	{"perfect-game", "Flawless", "Complete a puzzle with no mistakes and no hints", "💎", "mastery", 50, models.RequirementPerfectGame, 1, false},
	{"no-hints", "Independent", "Complete a puzzle without using hints", "🧠", "mastery", 25, models.RequirementNoHints, 1, false},
	{"speed-60", "Speed Demon", "Complete a puzzle in under 60 seconds", "⚡", "speed", 40, models.RequirementSpeed, 60, false},
	{"speed-30", "Lightning Fast", "Complete a puzzle in under 30 seconds", "🚀", "speed", 75, models.RequirementSpeed, 30, false},
}

// SeedAchievements inserts the default global achievement set. Existing
// rows are left untouched so admin edits survive restarts.
func SeedAchievements() {
	db := GetDB()

	created := 0
	for i, sa := range defaultAchievements {
		achievement := models.Achievement{
			Slug:             sa.Slug,
			Name:             sa.Name,
			Description:      sa.Description,
			Icon:             sa.Icon,
			Category:         sa.Category,
			Points:           sa.Points,
			RequirementType:  sa.RequirementType,
			RequirementValue: sa.RequirementValue,
			IsHidden:         sa.IsHidden,
			IsActive:         true,
			SortOrder:        i,
		}
		result := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&achievement)
		if result.Error != nil {
			log.Printf("Failed to seed achievement %s: %v", sa.Slug, result.Error)
			continue
		}
		created += int(result.RowsAffected)
	}

	if created > 0 {
		log.Printf("✅ Seeded %d achievements", created)
	}
}
