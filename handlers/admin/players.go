package admin

import (
	"gameplatform/database"
	"gameplatform/models"

	"github.com/gofiber/fiber/v2"
)

// GetUsers returns all users with pagination
func GetUsers(c *fiber.Ctx) error {
	db := database.GetDB()

	// Get pagination parameters
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	search := c.Query("search", "")

	offset := (page - 1) * limit

	var users []models.User
	var total int64

	query := db.Model(&models.User{})

	// Apply search filter if provided
	if search != "" {
		query = query.Where("username LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	// Get total count
	query.Count(&total)

	// Get paginated users
	if err := query.Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUser returns a single user with their player record
func GetUser(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var user models.User
	if err := db.Preload("Player").First(&user, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(user)
}

// UpdateUser updates a user's account flags
func UpdateUser(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var updateData struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		IsAdmin  bool   `json:"is_admin"`
		IsBanned bool   `json:"is_banned"`
	}

	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Update fields
	if updateData.Username != "" {
		user.Username = updateData.Username
	}
	if updateData.Email != "" {
		email := updateData.Email
		user.Email = &email
	}
	user.IsAdmin = updateData.IsAdmin
	user.IsBanned = updateData.IsBanned

	if err := db.Save(&user).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to update user",
		})
	}

	return c.JSON(user)
}

// GrantResources credits hints or streak freezes to a player's wallet
func GrantResources(c *fiber.Ctx) error {
	db := database.GetDB()
	id := c.Params("id")

	var player models.Player
	if err := db.Where("user_id = ?", id).First(&player).Error; err != nil {
		return c.Status(404).JSON(fiber.Map{
			"error": "Player not found",
		})
	}

	var req struct {
		Hints         int `json:"hints"`
		StreakFreezes int `json:"streak_freezes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Hints > 0 {
		player.AddHints(req.Hints)
	}
	if req.StreakFreezes > 0 {
		player.AddStreakFreezes(req.StreakFreezes, adminCfg.Streaks.MaxFreezes)
	}

	if err := db.Save(&player).Error; err != nil {
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to grant resources",
		})
	}

	return c.JSON(player)
}
