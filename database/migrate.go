// database/migrate.go - Database Migration Runner
package database

import (
	"log"

	"gameplatform/models"
)

// RunMigrations runs all database migrations
func RunMigrations() {
	db := GetDB()
	log.Println("🔄 Running database migrations...")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Player{},
		&models.Game{},
		&models.DailyChallenge{},
		&models.GameSession{},
		&models.PlayerProgress{},
		&models.Streak{},
		&models.LeaderboardEntry{},
		&models.Achievement{},
		&models.PlayerAchievement{},
	); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	createIndexes()

	log.Println("✅ All migrations completed successfully")
}

// createIndexes creates the natural-key unique indexes the settlement
// pipeline relies on for atomic upserts, plus query indexes.
func createIndexes() {
	db := GetDB()

	// Load-bearing unique constraints. AutoMigrate creates these from
	// struct tags, but older databases may predate the tags.
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_players_user ON players(user_id)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_games_slug ON games(slug)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_challenges_game_date ON daily_challenges(game_id, challenge_date)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_challenges_game_number ON daily_challenges(game_id, challenge_number)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_progress_player_game ON player_progress(player_id, game_id)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_streaks_player_game ON streaks(player_id, game_id)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_player_achievement ON player_achievements(player_id, achievement_id)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_lb_player_game_period ON leaderboard_entries(player_id, game_id, period, period_key)")

	// Query indexes
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_player_status ON game_sessions(player_id, game_id, status)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_sessions_challenge ON game_sessions(challenge_id)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_lb_ranking ON leaderboard_entries(game_id, period, period_key, score DESC, time_seconds ASC)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_challenges_date ON daily_challenges(challenge_date)")
	db.Exec("CREATE INDEX IF NOT EXISTS idx_achievements_active ON achievements(is_active)")

	log.Println("✅ Indexes created successfully")
}
