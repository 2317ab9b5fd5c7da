// handlers/player.go - Player profile, wallet, streaks, achievements
package handlers

import (
	"errors"
	"time"

	"gameplatform/database"
	"gameplatform/middleware"
	"gameplatform/models"
	"gameplatform/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm/clause"
)

// currentPlayer resolves the authenticated user's player row, creating
// it with the configured starting wallet on first contact.
func currentPlayer(c *fiber.Ctx) (*models.Player, error) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return nil, err
	}

	db := database.GetDB()
	if db == nil {
		return nil, fiber.NewError(500, "Database not available")
	}

	var player models.Player
	if err := db.Where("user_id = ?", userID).First(&player).Error; err == nil {
		return &player, nil
	}

	username, _ := middleware.GetUsername(c)
	player = models.Player{
		UserID:        userID,
		DisplayName:   username,
		HintsBalance:  cfg.Rewards.InitialHints,
		StreakFreezes: cfg.Streaks.InitialFreezes,
	}
	// A concurrent first request may have created the row already.
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&player).Error; err != nil {
		return nil, err
	}
	if err := db.Where("user_id = ?", userID).First(&player).Error; err != nil {
		return nil, err
	}
	return &player, nil
}

// GetProfile returns the player's profile and wallet
func GetProfile(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	db := database.GetDB()
	now := time.Now()
	db.Model(player).Update("last_seen_at", now)

	return c.JSON(fiber.Map{
		"success": true,
		"player":  player,
	})
}

// UpdateProfile changes display name, avatar, and notification settings
func UpdateProfile(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	var req struct {
		DisplayName          *string `json:"display_name"`
		AvatarID             *string `json:"avatar_id"`
		NotificationsEnabled *bool   `json:"notifications_enabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if req.DisplayName != nil {
		player.DisplayName = *req.DisplayName
	}
	if req.AvatarID != nil {
		player.AvatarID = *req.AvatarID
	}
	if req.NotificationsEnabled != nil {
		player.NotificationsEnabled = *req.NotificationsEnabled
	}

	if err := database.GetDB().Save(player).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to update profile"})
	}

	return c.JSON(fiber.Map{"success": true, "player": player})
}

// UpdatePreferences stores the client's preference blob
func UpdatePreferences(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	var prefs map[string]interface{}
	if err := c.BodyParser(&prefs); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if err := player.SetPreferences(prefs); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid preferences"})
	}
	if err := database.GetDB().Save(player).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to save preferences"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// GetStats returns overall and per-game statistics
func GetStats(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	var gameID *uint
	if slug := c.Query("game"); slug != "" {
		game, err := store.GameBySlug(slug)
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game not found"})
		}
		gameID = &game.ID
	}

	stats, err := tracker.GetPlayerStats(player.ID, gameID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load stats"})
	}

	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

// GetAchievements lists achievements with the player's unlock state.
// Hidden achievements stay hidden until unlocked.
func GetAchievements(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	db := database.GetDB()

	var achievements []models.Achievement
	if err := db.Where("is_active = ?", true).Order("sort_order").Find(&achievements).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch achievements"})
	}

	var unlocks []models.PlayerAchievement
	if err := db.Where("player_id = ?", player.ID).Find(&unlocks).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch unlocks"})
	}
	unlockedAt := make(map[uint]time.Time, len(unlocks))
	for _, u := range unlocks {
		unlockedAt[u.AchievementID] = u.UnlockedAt
	}

	type achievementView struct {
		models.Achievement
		Unlocked   bool       `json:"unlocked"`
		UnlockedAt *time.Time `json:"unlocked_at,omitempty"`
	}

	views := make([]achievementView, 0, len(achievements))
	totalPoints := 0
	for _, a := range achievements {
		ts, unlocked := unlockedAt[a.ID]
		if a.IsHidden && !unlocked {
			continue
		}
		view := achievementView{Achievement: a, Unlocked: unlocked}
		if unlocked {
			view.UnlockedAt = &ts
			totalPoints += a.Points
		}
		views = append(views, view)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"achievements": views,
		"total_points": totalPoints,
	})
}

// GetStreak reports the streak state for one game, applying a pending
// break if the player has been away too long.
func GetStreak(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	game, err := store.GameBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game not found"})
	}

	eval, err := tracker.CheckStreakStatus(player.ID, game.ID)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to check streak"})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"streak":         eval,
		"freezes_left":   player.StreakFreezes,
	})
}

// UseStreakFreeze spends a freeze to protect today's streak
func UseStreakFreeze(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	game, err := store.GameBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game not found"})
	}

	streak, err := tracker.UseStreakFreeze(player.ID, game.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFreezeNotAllowed):
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "Streak freeze not needed today"})
		case errors.Is(err, models.ErrInsufficientFreezes):
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "No streak freezes available"})
		default:
			return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to use streak freeze"})
		}
	}

	return c.JSON(fiber.Map{"success": true, "streak": streak})
}

// RecordAdWatched credits a rewarded-ad payout
func RecordAdWatched(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	var req struct {
		RewardType string `json:"reward_type"`
		Amount     int    `json:"amount"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	updated, err := tracker.RecordAdWatched(player.ID, req.RewardType, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrUnknownRewardType) {
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "Unknown reward type"})
		}
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to record reward"})
	}

	return c.JSON(fiber.Map{
		"success":        true,
		"hints_balance":  updated.HintsBalance,
		"streak_freezes": updated.StreakFreezes,
	})
}
