package models

import (
	"time"

	json "github.com/goccy/go-json"
)

// GameConfig is an authored question set of a single game type
type GameConfig struct {
	ID        int64
	CreatorID int64
	Title     string
	Type      GameType
	Questions Questions
	CreatedAt time.Time
	UpdatedAt time.Time
}

type gameConfigJSON struct {
	ID        int64           `json:"id"`
	CreatorID int64           `json:"creatorId"`
	Title     string          `json:"title"`
	Type      GameType        `json:"type"`
	Questions json.RawMessage `json:"questions"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (c GameConfig) MarshalJSON() ([]byte, error) {
	raw := json.RawMessage("null")
	if c.Questions != nil {
		data, err := json.Marshal(c.Questions)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return json.Marshal(gameConfigJSON{
		ID:        c.ID,
		CreatorID: c.CreatorID,
		Title:     c.Title,
		Type:      c.Type,
		Questions: raw,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
}

func (c *GameConfig) UnmarshalJSON(data []byte) error {
	var raw gameConfigJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	questions, err := DecodeQuestions(raw.Type, raw.Questions)
	if err != nil {
		return err
	}
	*c = GameConfig{
		ID:        raw.ID,
		CreatorID: raw.CreatorID,
		Title:     raw.Title,
		Type:      raw.Type,
		Questions: questions,
		CreatedAt: raw.CreatedAt,
		UpdatedAt: raw.UpdatedAt,
	}
	return nil
}

// Redacted returns a copy of the config with answers stripped from the payload
func (c GameConfig) Redacted() GameConfig {
	if c.Questions != nil {
		c.Questions = c.Questions.Redacted()
	}
	return c
}
