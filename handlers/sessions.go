// handlers/sessions.go - Session lifecycle and settlement endpoints
package handlers

import (
	"errors"

	"gameplatform/models"
	"gameplatform/services"

	"github.com/gofiber/fiber/v2"
)

type StartSessionRequest struct {
	Game        string                 `json:"game"`
	SessionType string                 `json:"session_type"`
	ChallengeID *uint                  `json:"challenge_id,omitempty"`
	DeviceInfo  map[string]interface{} `json:"device_info,omitempty"`
}

type CompleteSessionRequest struct {
	Score       int                    `json:"score"`
	SessionData map[string]interface{} `json:"session_data,omitempty"`
}

// StartSession opens a new game session
func StartSession(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	var req StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	game, err := store.GameBySlug(req.Game)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Game not found"})
	}

	session, err := tracker.StartSession(player.ID, game.ID, req.SessionType, req.ChallengeID, req.DeviceInfo)
	if err != nil {
		if errors.Is(err, services.ErrGameInactive) {
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "Game is not active"})
		}
		if errors.Is(err, services.ErrNotFound) {
			return c.Status(404).JSON(fiber.Map{"success": false, "error": "Challenge not found"})
		}
		return c.Status(400).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{"success": true, "session": session})
}

// UpdateSession saves in-flight progress
func UpdateSession(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid session ID"})
	}

	var req struct {
		CompletionPercentage *int                   `json:"completion_percentage"`
		MovesCount           *int                   `json:"moves_count"`
		MistakesCount        *int                   `json:"mistakes_count"`
		SessionData          map[string]interface{} `json:"session_data"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	session, err := tracker.UpdateSession(uint(sessionID), player.ID, services.SessionUpdate{
		CompletionPercentage: req.CompletionPercentage,
		MovesCount:           req.MovesCount,
		MistakesCount:        req.MistakesCount,
		Data:                 req.SessionData,
	})
	if err != nil {
		return sessionError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "session": session})
}

// CompleteSession settles a finished session and returns everything the
// client needs for the results screen: streak movement, XP, unlocks,
// rewards, and leaderboard rank.
func CompleteSession(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid session ID"})
	}

	var req CompleteSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	if req.Score < 0 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Score must be non-negative"})
	}

	result, err := tracker.CompleteSession(uint(sessionID), player.ID, req.Score, req.SessionData)
	if err != nil {
		return sessionError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "result": result})
}

// PauseSession suspends an active session
func PauseSession(c *fiber.Ctx) error {
	return transition(c, tracker.PauseSession)
}

// ResumeSession reactivates a paused session
func ResumeSession(c *fiber.Ctx) error {
	return transition(c, tracker.ResumeSession)
}

func transition(c *fiber.Ctx, fn func(sessionID, playerID uint) (*models.GameSession, error)) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid session ID"})
	}

	session, err := fn(uint(sessionID), player.ID)
	if err != nil {
		return sessionError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "session": session})
}

// AbandonSession discards an open session
func AbandonSession(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid session ID"})
	}

	if err := tracker.AbandonSession(uint(sessionID), player.ID); err != nil {
		return sessionError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// FailSession records an unsuccessful attempt
func FailSession(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid session ID"})
	}

	if err := tracker.FailSession(uint(sessionID), player.ID); err != nil {
		return sessionError(c, err)
	}

	return c.JSON(fiber.Map{"success": true})
}

// UseHint spends hints during a session
func UseHint(c *fiber.Ctx) error {
	player, err := currentPlayer(c)
	if err != nil {
		return err
	}

	sessionID, err := c.ParamsInt("id")
	if err != nil || sessionID < 1 {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid session ID"})
	}

	var req struct {
		HintType string `json:"hint_type"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Invalid request body"})
	}

	outcome, err := tracker.UseHint(player.ID, uint(sessionID), req.HintType)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientHints) {
			return c.Status(400).JSON(fiber.Map{"success": false, "error": "Insufficient hint balance"})
		}
		return sessionError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":       true,
		"charged":       outcome.Charged,
		"hints_balance": outcome.Balance,
	})
}

// sessionError maps tracker errors onto HTTP statuses
func sessionError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return c.Status(404).JSON(fiber.Map{"success": false, "error": "Session not found"})
	case errors.Is(err, services.ErrSessionOwnership):
		return c.Status(403).JSON(fiber.Map{"success": false, "error": "Session does not belong to player"})
	case errors.Is(err, models.ErrSessionSettled):
		return c.Status(409).JSON(fiber.Map{"success": false, "error": "Session already settled"})
	case errors.Is(err, models.ErrSessionNotActive):
		return c.Status(400).JSON(fiber.Map{"success": false, "error": "Session is not active"})
	default:
		return c.Status(500).JSON(fiber.Map{"success": false, "error": "Internal server error"})
	}
}
