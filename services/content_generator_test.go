package services

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gameplatform/config"
	"gameplatform/models"
)

type memChallengeStore struct {
	games      []models.Game
	challenges []models.DailyChallenge
	nextID     uint
}

func (m *memChallengeStore) ChallengeExists(gameID uint, date string) (bool, error) {
	for _, c := range m.challenges {
		if c.GameID == gameID && c.ChallengeDate == date {
			return true, nil
		}
	}
	return false, nil
}

func (m *memChallengeStore) DeleteChallengeByDate(gameID uint, date string) error {
	kept := m.challenges[:0]
	for _, c := range m.challenges {
		if !(c.GameID == gameID && c.ChallengeDate == date) {
			kept = append(kept, c)
		}
	}
	m.challenges = kept
	return nil
}

func (m *memChallengeStore) MaxChallengeNumber(gameID uint) (int, error) {
	max := 0
	for _, c := range m.challenges {
		if c.GameID == gameID && c.ChallengeNumber > max {
			max = c.ChallengeNumber
		}
	}
	return max, nil
}

func (m *memChallengeStore) CreateChallenge(challenge *models.DailyChallenge) error {
	m.nextID++
	challenge.ID = m.nextID
	m.challenges = append(m.challenges, *challenge)
	return nil
}

func (m *memChallengeStore) DailyEnabledGames() ([]models.Game, error) {
	return m.games, nil
}

func (m *memChallengeStore) GameBySlug(slug string) (*models.Game, error) {
	for i := range m.games {
		if m.games[i].Slug == slug {
			return &m.games[i], nil
		}
	}
	return nil, ErrNotFound
}

func generatorFixture(apiKey string) (*ContentGenerator, *memChallengeStore) {
	cfg := &config.Config{}
	cfg.Daily.Timezone = "UTC"
	cfg.Daily.GenerateAheadDays = 7
	cfg.Content.APIKey = apiKey
	cfg.Content.Model = "claude-sonnet-4-20250514"
	cfg.Content.MaxTokens = 2048
	cfg.Content.Temperature = 0.8

	store := &memChallengeStore{games: []models.Game{
		{ID: 1, Slug: "decode_daily", Type: "cryptogram", DailyEnabled: true, IsActive: true},
	}}

	gen := NewContentGenerator(store, cfg)
	// Tuesday noon.
	gen.SetClock(func() time.Time {
		return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	})
	return gen, store
}

func claudeStub(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req claudeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-sonnet-4-20250514", req.Model)
		assert.Equal(t, 2048, req.MaxTokens)

		resp := map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": text}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGenerateCryptogramFromAPI(t *testing.T) {
	payload := `Here is your puzzle:
{"quote": "STAY HUNGRY", "author": "Steve Jobs", "category": "Inspiration",
 "cipher": {"S": "A"}, "encoded": "AZQN IXFUKN",
 "hints": [{"type": "letter", "original": "S", "encoded": "A", "description": "First letter"}]}`

	server := claudeStub(t, payload)
	defer server.Close()

	gen, _ := generatorFixture("test-key")
	gen.SetBaseURL(server.URL)

	data, generatedBy := gen.GenerateCryptogram(2, "")
	assert.Equal(t, "claude", generatedBy)
	assert.Equal(t, "STAY HUNGRY", data["quote"])
	assert.Equal(t, "Steve Jobs", data["author"])
}

func TestGenerateCryptogramFallsBackWithoutKey(t *testing.T) {
	gen, _ := generatorFixture("")

	data, generatedBy := gen.GenerateCryptogram(2, "")
	assert.Equal(t, "fallback", generatedBy)
	assert.Equal(t, "THE ONLY WAY TO DO GREAT WORK IS TO LOVE WHAT YOU DO", data["quote"])
	assert.Equal(t, "ZIT GFSN VQN ZG RG UKTQZ VGKA OL ZG SGCT VIQZ NGX RG", data["encoded"])
}

func TestGenerateCryptogramFallsBackOnAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	gen, _ := generatorFixture("test-key")
	gen.SetBaseURL(server.URL)

	_, generatedBy := gen.GenerateCryptogram(2, "")
	assert.Equal(t, "fallback", generatedBy)
}

func TestGenerateCryptogramFallsBackOnGarbage(t *testing.T) {
	server := claudeStub(t, "I cannot produce a puzzle right now, sorry.")
	defer server.Close()

	gen, _ := generatorFixture("test-key")
	gen.SetBaseURL(server.URL)

	_, generatedBy := gen.GenerateCryptogram(2, "")
	assert.Equal(t, "fallback", generatedBy)
}

func TestGenerateDailyChallengesFillsWeek(t *testing.T) {
	gen, store := generatorFixture("") // fallback content keeps the test hermetic
	game := &store.games[0]

	generated, err := gen.GenerateDailyChallenges(game, 7, false)
	require.NoError(t, err)
	require.Len(t, generated, 7)

	// Generation starts tomorrow and numbers run sequentially.
	assert.Equal(t, "2026-09-02", generated[0].ChallengeDate)
	assert.Equal(t, "2026-09-08", generated[6].ChallengeDate)
	for i, c := range generated {
		assert.Equal(t, i+1, c.ChallengeNumber)
		assert.Equal(t, "fallback", c.GeneratedBy)
		assert.True(t, c.IsActive)
	}

	// Wednesday Sep 2 is a midweek medium day; Saturday Sep 5 is hard;
	// Monday Sep 7 is easy.
	assert.Equal(t, 2, generated[0].Difficulty)
	assert.Equal(t, 4, generated[3].Difficulty)
	assert.Equal(t, 1, generated[5].Difficulty)
}

func TestGenerateDailyChallengesSkipsExisting(t *testing.T) {
	gen, store := generatorFixture("")
	game := &store.games[0]

	store.challenges = append(store.challenges, models.DailyChallenge{
		ID: 99, GameID: 1, ChallengeDate: "2026-09-03", ChallengeNumber: 42,
	})

	generated, err := gen.GenerateDailyChallenges(game, 3, false)
	require.NoError(t, err)
	require.Len(t, generated, 2)
	assert.Equal(t, "2026-09-02", generated[0].ChallengeDate)
	assert.Equal(t, "2026-09-04", generated[1].ChallengeDate)
	// Numbering continues past the existing maximum.
	assert.Equal(t, 43, generated[0].ChallengeNumber)
	assert.Equal(t, 44, generated[1].ChallengeNumber)
}

func TestGenerateDailyChallengesForceRegenerates(t *testing.T) {
	gen, store := generatorFixture("")
	game := &store.games[0]

	store.challenges = append(store.challenges, models.DailyChallenge{
		ID: 99, GameID: 1, ChallengeDate: "2026-09-02", ChallengeNumber: 5,
	})

	generated, err := gen.GenerateDailyChallenges(game, 1, true)
	require.NoError(t, err)
	require.Len(t, generated, 1)

	exists, _ := store.ChallengeExists(1, "2026-09-02")
	assert.True(t, exists)
	assert.Len(t, store.challenges, 1) // old row replaced
}

func TestChallengeContentShape(t *testing.T) {
	gen, store := generatorFixture("")
	game := &store.games[0]

	generated, err := gen.GenerateDailyChallenges(game, 1, false)
	require.NoError(t, err)
	require.Len(t, generated, 1)

	content, err := generated[0].GetContent()
	require.NoError(t, err)
	assert.Equal(t, "ZIT GFSN VQN ZG RG UKTQZ VGKA OL ZG SGCT VIQZ NGX RG", content["encoded"])
	assert.Equal(t, "Steve Jobs", content["author"])
	// 40 letters in the quote once spaces are stripped.
	assert.EqualValues(t, 40, content["letter_count"])

	solution, err := generated[0].GetSolution()
	require.NoError(t, err)
	assert.Equal(t, "THE ONLY WAY TO DO GREAT WORK IS TO LOVE WHAT YOU DO", solution["quote"])

	// The client payload must never include the solution.
	client, err := generated[0].ClientContent()
	require.NoError(t, err)
	_, hasSolution := client["solution"]
	assert.False(t, hasSolution)
}

func TestDifficultyForWeekday(t *testing.T) {
	cases := []struct {
		day  time.Weekday
		want int
	}{
		{time.Sunday, 4},
		{time.Monday, 1},
		{time.Tuesday, 2},
		{time.Friday, 3},
		{time.Saturday, 4},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, difficultyForWeekday(tc.day), fmt.Sprintf("weekday %s", tc.day))
	}
}

func TestSortAndNumberFallbacks(t *testing.T) {
	gen, _ := generatorFixture("")

	sortData, generatedBy := gen.GenerateSortPuzzle(3)
	assert.Equal(t, "fallback", generatedBy)
	assert.Len(t, sortData["containers"], 6)
	assert.Equal(t, 3, sortData["difficulty_rating"])

	numData, generatedBy := gen.GenerateNumberPuzzle(2)
	assert.Equal(t, "fallback", generatedBy)
	assert.Equal(t, 4, numData["grid_size"])
	assert.Equal(t, 15, numData["target_sum"])
}
