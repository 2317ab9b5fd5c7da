// services/content_generator.go - LLM-backed daily challenge generation.
// Each game type has a prompt template and a pre-generated fallback so a
// failed API call never leaves a date without a challenge.
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"

	"gameplatform/config"
	"gameplatform/models"
)

const (
	claudeAPIURL  = "https://api.anthropic.com/v1/messages"
	claudeVersion = "2023-06-01"
)

// ChallengeStore is the persistence surface challenge generation needs.
type ChallengeStore interface {
	ChallengeExists(gameID uint, date string) (bool, error)
	DeleteChallengeByDate(gameID uint, date string) error
	MaxChallengeNumber(gameID uint) (int, error)
	CreateChallenge(challenge *models.DailyChallenge) error
	DailyEnabledGames() ([]models.Game, error)
	GameBySlug(slug string) (*models.Game, error)
}

// ChallengeContent is one generated puzzle ready to store.
type ChallengeContent struct {
	Content     map[string]interface{}
	Solution    map[string]interface{}
	Hints       []interface{}
	Metadata    map[string]interface{}
	GeneratedBy string
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

var jsonBlockPattern = regexp.MustCompile(`\{[\s\S]*\}`)

// ContentGenerator produces daily challenges, calling the Claude API
// when a key is configured and falling back to canned puzzles otherwise.
type ContentGenerator struct {
	store   ChallengeStore
	cfg     *config.Config
	client  *http.Client
	baseURL string
	now     func() time.Time
}

func NewContentGenerator(store ChallengeStore, cfg *config.Config) *ContentGenerator {
	return &ContentGenerator{
		store:   store,
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: claudeAPIURL,
		now:     time.Now,
	}
}

// SetBaseURL redirects API calls, for tests.
func (g *ContentGenerator) SetBaseURL(url string) { g.baseURL = url }

// SetClock substitutes the time source, for tests.
func (g *ContentGenerator) SetClock(now func() time.Time) { g.now = now }

// GenerateDailyChallenges fills the next `days` dates for a game,
// starting tomorrow. Existing dates are skipped unless force is set, in
// which case they are regenerated. Challenge numbers continue from the
// game's current maximum.
func (g *ContentGenerator) GenerateDailyChallenges(game *models.Game, days int, force bool) ([]models.DailyChallenge, error) {
	if days <= 0 {
		days = g.cfg.Daily.GenerateAheadDays
	}

	loc := g.cfg.Location()
	start := g.now().In(loc).AddDate(0, 0, 1)

	maxNumber, err := g.store.MaxChallengeNumber(game.ID)
	if err != nil {
		return nil, err
	}
	nextNumber := maxNumber + 1

	var generated []models.DailyChallenge
	for i := 0; i < days; i++ {
		date := start.AddDate(0, 0, i)
		dateString := date.Format("2006-01-02")

		exists, err := g.store.ChallengeExists(game.ID, dateString)
		if err != nil {
			return nil, err
		}
		if exists {
			if !force {
				continue
			}
			if err := g.store.DeleteChallengeByDate(game.ID, dateString); err != nil {
				return nil, err
			}
		}

		difficulty := difficultyForWeekday(date.Weekday())
		content, err := g.generateForGameType(game.Type, difficulty)
		if err != nil {
			log.Printf("❌ Challenge generation failed for %s on %s: %v", game.Slug, dateString, err)
			continue
		}

		challenge := models.DailyChallenge{
			GameID:          game.ID,
			ChallengeDate:   dateString,
			ChallengeNumber: nextNumber,
			Difficulty:      difficulty,
			IsActive:        true,
			GeneratedBy:     content.GeneratedBy,
		}
		if err := challenge.SetContent(content.Content); err != nil {
			return nil, err
		}
		if err := challenge.SetSolution(content.Solution); err != nil {
			return nil, err
		}
		if err := challenge.SetHints(content.Hints); err != nil {
			return nil, err
		}
		if err := challenge.SetMetadata(content.Metadata); err != nil {
			return nil, err
		}
		if err := g.store.CreateChallenge(&challenge); err != nil {
			return nil, err
		}

		nextNumber++
		generated = append(generated, challenge)
	}

	log.Printf("✅ Generated %d challenge(s) for %s", len(generated), game.Slug)
	return generated, nil
}

// GenerateAll runs generation for every daily-enabled game. Per-game
// failures are logged, not fatal.
func (g *ContentGenerator) GenerateAll(days int, force bool) {
	games, err := g.store.DailyEnabledGames()
	if err != nil {
		log.Printf("❌ Could not list daily games: %v", err)
		return
	}
	for i := range games {
		if _, err := g.GenerateDailyChallenges(&games[i], days, force); err != nil {
			log.Printf("❌ Generation failed for %s: %v", games[i].Slug, err)
		}
	}
}

// Weekends are hard, Mondays easy, Fridays medium-hard.
func difficultyForWeekday(day time.Weekday) int {
	switch day {
	case time.Sunday, time.Saturday:
		return 4
	case time.Monday:
		return 1
	case time.Friday:
		return 3
	default:
		return 2
	}
}

func (g *ContentGenerator) generateForGameType(gameType string, difficulty int) (*ChallengeContent, error) {
	switch gameType {
	case "cryptogram":
		data, generatedBy := g.GenerateCryptogram(difficulty, "")
		return formatCryptogram(data, generatedBy), nil
	case "sort_puzzle":
		data, generatedBy := g.GenerateSortPuzzle(difficulty)
		return formatSortPuzzle(data, generatedBy), nil
	case "math_block":
		data, generatedBy := g.GenerateNumberPuzzle(difficulty)
		return formatNumberPuzzle(data, generatedBy), nil
	default:
		return nil, fmt.Errorf("no generator for game type %q", gameType)
	}
}

// GenerateCryptogram produces a substitution cipher puzzle. The second
// return value records whether the content came from the API or the
// fallback.
func (g *ContentGenerator) GenerateCryptogram(difficulty int, category string) (map[string]interface{}, string) {
	categoryPrompt := "from any inspiring category"
	if category != "" {
		categoryPrompt = "from the category: " + category
	}

	prompt := fmt.Sprintf(`Generate a cryptogram puzzle for a mobile word game. Difficulty level: %d/5.

Requirements:
1. Select a famous quote %s
2. The quote should be %s characters
3. Create a letter substitution cipher (each letter maps to exactly one other letter)
4. Provide 3 progressive hints

Respond with ONLY valid JSON in this exact format:
{
    "quote": "THE ORIGINAL QUOTE IN UPPERCASE",
    "author": "Author Name",
    "category": "category name",
    "cipher": {"A": "X", "B": "Y", ...},
    "encoded": "THE ENCODED VERSION",
    "hints": [
        {"type": "letter", "original": "E", "encoded": "X", "description": "Most common letter"},
        {"type": "word", "word": "THE", "description": "Common 3-letter word"},
        {"type": "pattern", "description": "Look for double letters"}
    ]
}`, difficulty, categoryPrompt, cryptogramLength(difficulty))

	if data := g.callAndParse(prompt); data != nil {
		return data, "claude"
	}
	return fallbackCryptogram(), "fallback"
}

// GenerateSortPuzzle produces a container sorting puzzle.
func (g *ContentGenerator) GenerateSortPuzzle(difficulty int) (map[string]interface{}, string) {
	containerCount := sortContainerCount(difficulty)
	itemsPerContainer := 4
	if difficulty >= 4 {
		itemsPerContainer = 5
	}
	extraContainers := 2
	if difficulty > 3 {
		extraContainers = 1
	}

	prompt := fmt.Sprintf(`Generate a sort puzzle for a mobile game. Think of games like Ball Sort or Water Sort.

Parameters:
- %d colors/item types
- %d items per color
- %d empty containers for sorting

Create a shuffled starting state that is solvable but requires thought.

Respond with ONLY valid JSON:
{
    "colors": ["red", "blue", "green", ...],
    "containers": [
        ["red", "blue", "green", "red"],
        ["blue", "green", "red", "blue"],
        ...
        []
    ],
    "solution_moves": 15,
    "difficulty_rating": %d
}`, containerCount, itemsPerContainer, extraContainers, difficulty)

	if data := g.callAndParse(prompt); data != nil {
		return data, "claude"
	}
	return fallbackSortPuzzle(difficulty), "fallback"
}

// GenerateNumberPuzzle produces a block placement puzzle with row and
// column sum targets.
func (g *ContentGenerator) GenerateNumberPuzzle(difficulty int) (map[string]interface{}, string) {
	gridSize := numberGridSize(difficulty)
	targetSum := numberTargetSum(difficulty)

	prompt := fmt.Sprintf(`Generate a number block puzzle. Players place numbered blocks to make rows/columns sum to a target.

Parameters:
- Grid size: %dx%d
- Target sum for each row/column: %d
- Difficulty: %d/5

Create an interesting puzzle with multiple valid solutions but requiring strategy.

Respond with ONLY valid JSON:
{
    "grid_size": %d,
    "target_sum": %d,
    "initial_blocks": [
        {"value": 5, "row": 0, "col": 0, "fixed": true},
        {"value": 3, "row": 1, "col": 2, "fixed": true}
    ],
    "available_blocks": [1, 2, 3, 4, 5, 6, 7, 8, 9],
    "solution": [[5, 2, 3], [1, 6, 3], [4, 2, 4]],
    "par_moves": 12
}`, gridSize, gridSize, targetSum, difficulty, gridSize, targetSum)

	if data := g.callAndParse(prompt); data != nil {
		return data, "claude"
	}
	return fallbackNumberPuzzle(difficulty), "fallback"
}

func (g *ContentGenerator) callAndParse(prompt string) map[string]interface{} {
	text, err := g.callClaude(prompt)
	if err != nil {
		log.Printf("🔄 Falling back to canned content: %v", err)
		return nil
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(extractJSON(text)), &data); err != nil {
		log.Printf("🔄 Could not parse generated content: %v", err)
		return nil
	}
	return data
}

func (g *ContentGenerator) callClaude(prompt string) (string, error) {
	apiKey := g.cfg.Content.APIKey
	if apiKey == "" {
		return "", fmt.Errorf("API key not configured")
	}

	body, err := json.Marshal(claudeRequest{
		Model:       g.cfg.Content.Model,
		MaxTokens:   g.cfg.Content.MaxTokens,
		Temperature: g.cfg.Content.Temperature,
		Messages:    []claudeMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequest(http.MethodPost, g.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("anthropic-version", claudeVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed claudeResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("empty response content")
	}
	return parsed.Content[0].Text, nil
}

// extractJSON pulls the outermost JSON object out of surrounding prose.
func extractJSON(text string) string {
	if match := jsonBlockPattern.FindString(text); match != "" {
		return match
	}
	return text
}

func cryptogramLength(difficulty int) string {
	switch difficulty {
	case 1:
		return "30-50"
	case 2:
		return "50-80"
	case 3:
		return "80-120"
	case 4:
		return "120-160"
	case 5:
		return "160-200"
	default:
		return "50-80"
	}
}

func sortContainerCount(difficulty int) int {
	switch difficulty {
	case 1:
		return 3
	case 2:
		return 4
	case 3:
		return 5
	case 4:
		return 6
	case 5:
		return 7
	default:
		return 4
	}
}

func numberGridSize(difficulty int) int {
	switch difficulty {
	case 1:
		return 3
	case 2, 3:
		return 4
	case 4, 5:
		return 5
	default:
		return 4
	}
}

func numberTargetSum(difficulty int) int {
	switch difficulty {
	case 1:
		return 10
	case 2:
		return 15
	case 3:
		return 20
	case 4:
		return 25
	case 5:
		return 30
	default:
		return 15
	}
}

func formatCryptogram(data map[string]interface{}, generatedBy string) *ChallengeContent {
	quote := stringField(data, "quote")
	return &ChallengeContent{
		Content: map[string]interface{}{
			"encoded":      stringFieldOr(data, "encoded", ""),
			"author":       stringFieldOr(data, "author", "Unknown"),
			"category":     stringFieldOr(data, "category", "General"),
			"letter_count": countLetters(quote),
		},
		Solution: map[string]interface{}{
			"quote":  quote,
			"cipher": mapField(data, "cipher"),
		},
		Hints: sliceField(data, "hints"),
		Metadata: map[string]interface{}{
			"word_count": len(strings.Fields(quote)),
		},
		GeneratedBy: generatedBy,
	}
}

func formatSortPuzzle(data map[string]interface{}, generatedBy string) *ChallengeContent {
	rating := data["difficulty_rating"]
	if rating == nil {
		rating = 2
	}
	return &ChallengeContent{
		Content: map[string]interface{}{
			"colors":     sliceField(data, "colors"),
			"containers": sliceField(data, "containers"),
		},
		Solution: map[string]interface{}{
			"moves": data["solution_moves"],
		},
		Hints: []interface{}{},
		Metadata: map[string]interface{}{
			"difficulty_rating": rating,
		},
		GeneratedBy: generatedBy,
	}
}

func formatNumberPuzzle(data map[string]interface{}, generatedBy string) *ChallengeContent {
	par := data["par_moves"]
	if par == nil {
		par = 10
	}
	return &ChallengeContent{
		Content: map[string]interface{}{
			"grid_size":        data["grid_size"],
			"target_sum":       data["target_sum"],
			"initial_blocks":   sliceField(data, "initial_blocks"),
			"available_blocks": sliceField(data, "available_blocks"),
		},
		Solution: map[string]interface{}{
			"grid": sliceField(data, "solution"),
		},
		Hints: []interface{}{},
		Metadata: map[string]interface{}{
			"par_moves": par,
		},
		GeneratedBy: generatedBy,
	}
}

func countLetters(s string) int {
	count := 0
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' {
			count++
		}
	}
	return count
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func stringFieldOr(data map[string]interface{}, key, fallback string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func mapField(data map[string]interface{}, key string) map[string]interface{} {
	if v, ok := data[key].(map[string]interface{}); ok {
		return v
	}
	return map[string]interface{}{}
}

func sliceField(data map[string]interface{}, key string) []interface{} {
	if v, ok := data[key].([]interface{}); ok {
		return v
	}
	return []interface{}{}
}

func fallbackCryptogram() map[string]interface{} {
	return map[string]interface{}{
		"quote":    "THE ONLY WAY TO DO GREAT WORK IS TO LOVE WHAT YOU DO",
		"author":   "Steve Jobs",
		"category": "Inspiration",
		"cipher": map[string]interface{}{
			"A": "Q", "B": "W", "C": "E", "D": "R", "E": "T", "F": "Y",
			"G": "U", "H": "I", "I": "O", "J": "P", "K": "A", "L": "S",
			"M": "D", "N": "F", "O": "G", "P": "H", "Q": "J", "R": "K",
			"S": "L", "T": "Z", "U": "X", "V": "C", "W": "V", "X": "B",
			"Y": "N", "Z": "M",
		},
		"encoded": "ZIT GFSN VQN ZG RG UKTQZ VGKA OL ZG SGCT VIQZ NGX RG",
		"hints": []interface{}{
			map[string]interface{}{"type": "letter", "original": "T", "encoded": "Z", "description": "Common starting letter"},
			map[string]interface{}{"type": "word", "word": "THE", "description": "Three letter word at start"},
			map[string]interface{}{"type": "letter", "original": "O", "encoded": "G", "description": "Common vowel"},
		},
	}
}

func fallbackSortPuzzle(difficulty int) map[string]interface{} {
	return map[string]interface{}{
		"colors": []interface{}{"red", "blue", "green", "yellow"},
		"containers": []interface{}{
			[]interface{}{"red", "blue", "green", "yellow"},
			[]interface{}{"blue", "green", "yellow", "red"},
			[]interface{}{"green", "yellow", "red", "blue"},
			[]interface{}{"yellow", "red", "blue", "green"},
			[]interface{}{},
			[]interface{}{},
		},
		"solution_moves":    20,
		"difficulty_rating": difficulty,
	}
}

func fallbackNumberPuzzle(difficulty int) map[string]interface{} {
	return map[string]interface{}{
		"grid_size":  4,
		"target_sum": 15,
		"initial_blocks": []interface{}{
			map[string]interface{}{"value": 5, "row": 0, "col": 0, "fixed": true},
			map[string]interface{}{"value": 8, "row": 2, "col": 2, "fixed": true},
		},
		"available_blocks": []interface{}{1, 2, 3, 4, 5, 6, 7, 8, 9},
		"solution":         []interface{}{},
		"par_moves":        14,
	}
}
