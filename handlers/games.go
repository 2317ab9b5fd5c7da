// handlers/games.go - Game catalog and daily challenges
package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// ListGames returns the active game catalog
func ListGames(c *fiber.Ctx) error {
	games, err := store.ActiveGames()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch games"})
	}

	return c.JSON(fiber.Map{"success": true, "games": games})
}

// GetGame returns one game by slug
func GetGame(c *fiber.Ctx) error {
	game, err := store.GameBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game not found"})
	}

	return c.JSON(fiber.Map{"success": true, "game": game})
}

// GetDailyChallenge returns today's challenge for a game. The solution
// never leaves the server; clients get the playable content only.
func GetDailyChallenge(c *fiber.Ctx) error {
	game, err := store.GameBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game not found"})
	}
	if !game.DailyEnabled {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game has no daily challenges"})
	}

	today := time.Now().In(cfg.Location()).Format("2006-01-02")
	challenge, err := store.ChallengeForDate(game.ID, today)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "No challenge available today"})
	}

	content, err := challenge.ClientContent()
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to load challenge"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"challenge": fiber.Map{
			"id":               challenge.ID,
			"game_id":          challenge.GameID,
			"challenge_date":   challenge.ChallengeDate,
			"challenge_number": challenge.ChallengeNumber,
			"difficulty":       challenge.Difficulty,
			"content":          content,
		},
	})
}

// GetChallengeArchive lists past challenges for replay, newest first
func GetChallengeArchive(c *fiber.Ctx) error {
	game, err := store.GameBySlug(c.Params("slug"))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game not found"})
	}

	limit := c.QueryInt("limit", 30)
	if limit < 1 || limit > 100 {
		limit = 30
	}

	today := time.Now().In(cfg.Location()).Format("2006-01-02")
	challenges, err := store.ChallengeArchive(game.ID, today, limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to fetch archive"})
	}

	archive := make([]fiber.Map, 0, len(challenges))
	for _, ch := range challenges {
		archive = append(archive, fiber.Map{
			"id":               ch.ID,
			"challenge_date":   ch.ChallengeDate,
			"challenge_number": ch.ChallengeNumber,
			"difficulty":       ch.Difficulty,
		})
	}

	return c.JSON(fiber.Map{"success": true, "challenges": archive})
}

// VerifyChallengeSolution checks a submitted solution without settling
// a session. Used by clients for instant feedback.
func VerifyChallengeSolution(c *fiber.Ctx) error {
	challengeID, err := c.ParamsInt("id")
	if err != nil || challengeID < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid challenge ID"})
	}

	challenge, err := store.GetChallenge(uint(challengeID))
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Challenge not found"})
	}

	var submitted map[string]interface{}
	if err := c.BodyParser(&submitted); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	correct, err := challenge.VerifySolution(submitted)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Failed to verify solution"})
	}

	return c.JSON(fiber.Map{"success": true, "correct": correct})
}
