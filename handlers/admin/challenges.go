package admin

import (
	"gameplatform/config"
	"gameplatform/database"
	"gameplatform/models"
	"gameplatform/services"

	"github.com/gofiber/fiber/v2"
)

var (
	adminCfg       *config.Config
	adminGenerator *services.ContentGenerator
	adminStore     *database.Store
)

// Init wires the admin handlers to their services. Called once from
// main before routes are registered.
func Init(cfg *config.Config, store *database.Store, generator *services.ContentGenerator) {
	adminCfg = cfg
	adminStore = store
	adminGenerator = generator
}

// GetChallenges lists a game's challenges, newest first
func GetChallenges(c *fiber.Ctx) error {
	db := database.GetDB()

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	offset := (page - 1) * limit

	query := db.Model(&models.DailyChallenge{})
	if slug := c.Query("game"); slug != "" {
		game, err := adminStore.GameBySlug(slug)
		if err != nil {
			return c.Status(404).JSON(fiber.Map{"error": "Game not found"})
		}
		query = query.Where("game_id = ?", game.ID)
	}

	var total int64
	query.Count(&total)

	var challenges []models.DailyChallenge
	if err := query.Order("challenge_date DESC").Offset(offset).Limit(limit).Find(&challenges).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to fetch challenges"})
	}

	return c.JSON(fiber.Map{
		"challenges": challenges,
		"total":      total,
		"page":       page,
		"limit":      limit,
	})
}

// GenerateChallenges triggers challenge generation for one game or all
// daily-enabled games
func GenerateChallenges(c *fiber.Ctx) error {
	var req struct {
		Game  string `json:"game"`
		Days  int    `json:"days"`
		Force bool   `json:"force"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if req.Game == "" {
		adminGenerator.GenerateAll(req.Days, req.Force)
		return c.JSON(fiber.Map{"message": "Generation triggered for all daily games"})
	}

	game, err := adminStore.GameBySlug(req.Game)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Game not found"})
	}

	generated, err := adminGenerator.GenerateDailyChallenges(game, req.Days, req.Force)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Generation failed"})
	}

	return c.JSON(fiber.Map{
		"message":   "Generation complete",
		"generated": len(generated),
	})
}

// DeactivateChallenge pulls a challenge without deleting its history
func DeactivateChallenge(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var challenge models.DailyChallenge
	if err := db.First(&challenge, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Challenge not found"})
	}

	challenge.IsActive = false
	if err := db.Save(&challenge).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{"error": "Failed to deactivate challenge"})
	}

	return c.JSON(fiber.Map{"message": "Challenge deactivated"})
}
