package services

import (
	"fmt"
	"sort"

	"gameplatform/models"
)

// memStore is an in-memory Store for exercising the progress tracker
// without a database. Writes apply immediately; tests that need
// rollback semantics belong in the database package.
type memStore struct {
	players       map[uint]*models.Player
	games         map[uint]*models.Game
	challenges    map[uint]*models.DailyChallenge
	sessions      map[uint]*models.GameSession
	nextSessionID uint
	progress      map[string]*models.PlayerProgress
	streaks       map[string]*models.Streak
	entries       map[string]*models.LeaderboardEntry
	achievements  []models.Achievement
	unlocks       map[string]*models.PlayerAchievement
}

func newMemStore() *memStore {
	return &memStore{
		players:    make(map[uint]*models.Player),
		games:      make(map[uint]*models.Game),
		challenges: make(map[uint]*models.DailyChallenge),
		sessions:   make(map[uint]*models.GameSession),
		progress:   make(map[string]*models.PlayerProgress),
		streaks:    make(map[string]*models.Streak),
		entries:    make(map[string]*models.LeaderboardEntry),
		unlocks:    make(map[string]*models.PlayerAchievement),
	}
}

func pairKey(a, b uint) string { return fmt.Sprintf("%d:%d", a, b) }

func entryKey(playerID, gameID uint, period, periodKey string) string {
	return fmt.Sprintf("%d:%d:%s:%s", playerID, gameID, period, periodKey)
}

func (m *memStore) Transaction(fn func(tx Store) error) error {
	return fn(m)
}

func (m *memStore) GetPlayer(id uint) (*models.Player, error) {
	p, ok := m.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *memStore) SavePlayer(player *models.Player) error {
	m.players[player.ID] = player
	return nil
}

func (m *memStore) GetGame(id uint) (*models.Game, error) {
	g, ok := m.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	return g, nil
}

func (m *memStore) GetChallenge(id uint) (*models.DailyChallenge, error) {
	c, ok := m.challenges[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func (m *memStore) GetSession(id uint) (*models.GameSession, error) {
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *memStore) CreateSession(session *models.GameSession) error {
	m.nextSessionID++
	session.ID = m.nextSessionID
	m.sessions[session.ID] = session
	return nil
}

func (m *memStore) SaveSession(session *models.GameSession) error {
	m.sessions[session.ID] = session
	return nil
}

func (m *memStore) ActiveSession(playerID, gameID uint) (*models.GameSession, error) {
	var latest *models.GameSession
	for _, s := range m.sessions {
		if s.PlayerID != playerID || s.GameID != gameID {
			continue
		}
		if s.Status != models.SessionActive && s.Status != models.SessionPaused {
			continue
		}
		if latest == nil || s.StartedAt.After(latest.StartedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	return latest, nil
}

func (m *memStore) GetOrCreateProgress(playerID, gameID uint) (*models.PlayerProgress, error) {
	key := pairKey(playerID, gameID)
	if p, ok := m.progress[key]; ok {
		return p, nil
	}
	p := &models.PlayerProgress{
		ID:       uint(len(m.progress) + 1),
		PlayerID: playerID,
		GameID:   gameID,
		Level:    1,
	}
	if g, ok := m.games[gameID]; ok {
		p.Game = g
	}
	m.progress[key] = p
	return p, nil
}

func (m *memStore) SaveProgress(progress *models.PlayerProgress) error {
	m.progress[pairKey(progress.PlayerID, progress.GameID)] = progress
	return nil
}

func (m *memStore) GetStreak(playerID, gameID uint) (*models.Streak, error) {
	s, ok := m.streaks[pairKey(playerID, gameID)]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

func (m *memStore) GetOrCreateStreak(playerID, gameID uint) (*models.Streak, error) {
	key := pairKey(playerID, gameID)
	if s, ok := m.streaks[key]; ok {
		return s, nil
	}
	s := &models.Streak{
		ID:       uint(len(m.streaks) + 1),
		PlayerID: playerID,
		GameID:   gameID,
	}
	m.streaks[key] = s
	return s, nil
}

func (m *memStore) SaveStreak(streak *models.Streak) error {
	m.streaks[pairKey(streak.PlayerID, streak.GameID)] = streak
	return nil
}

func (m *memStore) GetOrCreateLeaderboardEntry(playerID, gameID uint, period, periodKey string) (*models.LeaderboardEntry, error) {
	key := entryKey(playerID, gameID, period, periodKey)
	if e, ok := m.entries[key]; ok {
		return e, nil
	}
	e := &models.LeaderboardEntry{
		ID:        uint(len(m.entries) + 1),
		PlayerID:  playerID,
		GameID:    gameID,
		Period:    period,
		PeriodKey: periodKey,
	}
	m.entries[key] = e
	return e, nil
}

func (m *memStore) SaveLeaderboardEntry(entry *models.LeaderboardEntry) error {
	m.entries[entryKey(entry.PlayerID, entry.GameID, entry.Period, entry.PeriodKey)] = entry
	return nil
}

func (m *memStore) EntriesAhead(gameID uint, period, periodKey string, score, timeSeconds int) (int64, error) {
	var ahead int64
	for _, e := range m.entries {
		if e.GameID != gameID || e.Period != period || e.PeriodKey != periodKey {
			continue
		}
		if e.Score > score || (e.Score == score && e.TimeSeconds < timeSeconds) {
			ahead++
		}
	}
	return ahead, nil
}

func (m *memStore) ActiveAchievements(gameID uint) ([]models.Achievement, error) {
	var out []models.Achievement
	for _, a := range m.achievements {
		if !a.IsActive {
			continue
		}
		if a.GameID != nil && *a.GameID != gameID {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (m *memStore) UnlockedAchievementIDs(playerID uint) (map[uint]bool, error) {
	ids := make(map[uint]bool)
	for _, u := range m.unlocks {
		if u.PlayerID == playerID {
			ids[u.AchievementID] = true
		}
	}
	return ids, nil
}

func (m *memStore) UnlockAchievement(unlock *models.PlayerAchievement) (bool, error) {
	key := pairKey(unlock.PlayerID, unlock.AchievementID)
	if _, ok := m.unlocks[key]; ok {
		return false, nil
	}
	unlock.ID = uint(len(m.unlocks) + 1)
	m.unlocks[key] = unlock
	return true, nil
}

func (m *memStore) AchievementPoints(playerID uint) (int, error) {
	total := 0
	for _, u := range m.unlocks {
		if u.PlayerID != playerID {
			continue
		}
		for _, a := range m.achievements {
			if a.ID == u.AchievementID {
				total += a.Points
			}
		}
	}
	return total, nil
}

func (m *memStore) ProgressForPlayer(playerID uint, gameID *uint) ([]models.PlayerProgress, error) {
	var out []models.PlayerProgress
	for _, p := range m.progress {
		if p.PlayerID != playerID {
			continue
		}
		if gameID != nil && p.GameID != *gameID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out, nil
}
