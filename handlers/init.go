// handlers/init.go - Service wiring for the HTTP layer.
package handlers

import (
	"gameplatform/config"
	"gameplatform/database"
	"gameplatform/services"
)

var (
	cfg          *config.Config
	store        *database.Store
	tracker      *services.ProgressTracker
	leaderboards *services.LeaderboardService
	generator    *services.ContentGenerator
)

// Init wires the handler package to its services. Called once from main
// before routes are registered.
func Init(c *config.Config, s *database.Store, t *services.ProgressTracker, l *services.LeaderboardService, g *services.ContentGenerator) {
	cfg = c
	store = s
	tracker = t
	leaderboards = l
	generator = g
}
