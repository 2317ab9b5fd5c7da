// models/daily_challenge.go - The puzzle of the day for a game
package models

import (
	"encoding/json"
	"reflect"
	"time"
)

type DailyChallenge struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	GameID uint  `gorm:"not null;index;uniqueIndex:idx_challenges_game_date,priority:1;uniqueIndex:idx_challenges_game_number,priority:1" json:"game_id"`
	Game   *Game `gorm:"foreignKey:GameID" json:"game,omitempty"`

	// Date in platform timezone, stored as YYYY-MM-DD to keep day
	// comparisons exact across timezones.
	ChallengeDate   string `gorm:"not null;size:10;uniqueIndex:idx_challenges_game_date,priority:2" json:"challenge_date"`
	ChallengeNumber int    `gorm:"not null;uniqueIndex:idx_challenges_game_number,priority:2" json:"challenge_number"`
	Difficulty      int    `gorm:"default:2" json:"difficulty"` // 1-5

	ContentJSON  string `gorm:"type:text;not null" json:"-"`
	SolutionJSON string `gorm:"type:text;not null" json:"-"`
	HintsJSON    string `gorm:"type:text" json:"-"`
	MetadataJSON string `gorm:"type:text" json:"-"`

	IsActive    bool   `gorm:"default:true" json:"is_active"`
	GeneratedBy string `gorm:"size:50" json:"generated_by"` // claude, fallback, manual

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (DailyChallenge) TableName() string {
	return "daily_challenges"
}

func (dc *DailyChallenge) GetContent() (map[string]interface{}, error) {
	return unmarshalBlob(dc.ContentJSON)
}

func (dc *DailyChallenge) SetContent(content map[string]interface{}) error {
	data, err := json.Marshal(content)
	if err != nil {
		return err
	}
	dc.ContentJSON = string(data)
	return nil
}

func (dc *DailyChallenge) GetSolution() (map[string]interface{}, error) {
	return unmarshalBlob(dc.SolutionJSON)
}

func (dc *DailyChallenge) SetSolution(solution map[string]interface{}) error {
	data, err := json.Marshal(solution)
	if err != nil {
		return err
	}
	dc.SolutionJSON = string(data)
	return nil
}

func (dc *DailyChallenge) GetHints() ([]interface{}, error) {
	var hints []interface{}
	if dc.HintsJSON == "" {
		return hints, nil
	}
	err := json.Unmarshal([]byte(dc.HintsJSON), &hints)
	return hints, err
}

func (dc *DailyChallenge) SetHints(hints []interface{}) error {
	data, err := json.Marshal(hints)
	if err != nil {
		return err
	}
	dc.HintsJSON = string(data)
	return nil
}

func (dc *DailyChallenge) GetMetadata() (map[string]interface{}, error) {
	return unmarshalBlob(dc.MetadataJSON)
}

func (dc *DailyChallenge) SetMetadata(meta map[string]interface{}) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	dc.MetadataJSON = string(data)
	return nil
}

// ClientContent is what clients are allowed to see. The solution never
// leaves the server.
func (dc *DailyChallenge) ClientContent() (map[string]interface{}, error) {
	content, err := dc.GetContent()
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"id":               dc.ID,
		"game_id":          dc.GameID,
		"challenge_date":   dc.ChallengeDate,
		"challenge_number": dc.ChallengeNumber,
		"difficulty":       dc.Difficulty,
		"content":          content,
	}, nil
}

// VerifySolution compares a submitted solution against the stored one.
func (dc *DailyChallenge) VerifySolution(submitted map[string]interface{}) (bool, error) {
	solution, err := dc.GetSolution()
	if err != nil {
		return false, err
	}
	for key, want := range solution {
		got, ok := submitted[key]
		if !ok || !reflect.DeepEqual(normalizeJSON(got), normalizeJSON(want)) {
			return false, nil
		}
	}
	return true, nil
}

// normalizeJSON round-trips a value through encoding/json so values that
// arrived via different decode paths compare equal.
func normalizeJSON(v interface{}) interface{} {
	data, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}

func unmarshalBlob(raw string) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if raw == "" {
		return out, nil
	}
	err := json.Unmarshal([]byte(raw), &out)
	return out, err
}
