// handlers/leaderboard.go - Leaderboard read endpoints
package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// GetLeaderboard returns the board for a game and period
func GetLeaderboard(c *fiber.Ctx) error {
	game, err := store.GameBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game not found"})
	}
	if !game.HasLeaderboard {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game has no leaderboard"})
	}

	period := c.Query("period", "daily")
	limit := c.QueryInt("limit", 50)

	board, err := leaderboards.GetLeaderboard(c.Context(), game.ID, period, limit)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid leaderboard period"})
	}

	return c.JSON(fiber.Map{"success": true, "leaderboard": board})
}

// GetChallengeLeaderboard returns the board for one daily challenge
func GetChallengeLeaderboard(c *fiber.Ctx) error {
	challengeID, err := c.ParamsInt("id")
	if err != nil || challengeID < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid challenge ID"})
	}

	challenge, err := store.GetChallenge(uint(challengeID))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Challenge not found"})
	}

	limit := c.QueryInt("limit", 50)
	board, err := leaderboards.GetChallengeLeaderboard(c.Context(), challenge.GameID, challenge.ID, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch leaderboard"})
	}

	return c.JSON(fiber.Map{"success": true, "leaderboard": board})
}

// GetMyRank returns the player's standing for a game and period
func GetMyRank(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	game, err := store.GameBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game not found"})
	}

	period := c.Query("period", "daily")
	rank, err := leaderboards.GetPlayerRank(c.Context(), player.ID, game.ID, period)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch rank"})
	}
	if rank == nil {
		return c.JSON(fiber.Map{"success": true, "ranked": false})
	}

	return c.JSON(fiber.Map{"success": true, "ranked": true, "rank": rank})
}
