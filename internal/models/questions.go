package models

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	json "github.com/goccy/go-json"
)

// GameType discriminates the shape of a GameConfig's questions payload
type GameType string

const (
	GameTypeRosco      GameType = "ROSCO"
	GameTypeHangman    GameType = "HANGMAN"
	GameTypeTrivia     GameType = "TRIVIA"
	GameTypeWordSearch GameType = "WORD_SEARCH"
	GameTypeMemory     GameType = "MEMORY"
	GameTypeBattleship GameType = "BATTLESHIP"
	GameTypeKahoot     GameType = "KAHOOT"
)

// AllGameTypes lists every supported game type
var AllGameTypes = []GameType{
	GameTypeRosco,
	GameTypeHangman,
	GameTypeTrivia,
	GameTypeWordSearch,
	GameTypeMemory,
	GameTypeBattleship,
	GameTypeKahoot,
}

// Valid reports whether t is one of the known game types
func (t GameType) Valid() bool {
	for _, known := range AllGameTypes {
		if t == known {
			return true
		}
	}
	return false
}

var (
	ErrUnknownGameType  = errors.New("unknown game type")
	ErrInvalidQuestions = errors.New("invalid questions")
)

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidQuestions, fmt.Sprintf(format, args...))
}

// Questions is the payload of a GameConfig. Exactly one implementation exists per GameType.
type Questions interface {
	GameType() GameType
	Validate() error
	// Redacted returns a copy safe to show to players (answers removed)
	Redacted() Questions
	isQuestions()
}

// DecodeQuestions parses raw JSON into the payload type for t
func DecodeQuestions(t GameType, raw []byte) (Questions, error) {
	var q Questions
	switch t {
	case GameTypeRosco:
		q = &RoscoQuestions{}
	case GameTypeHangman:
		q = &HangmanQuestions{}
	case GameTypeTrivia:
		q = &TriviaQuestions{}
	case GameTypeWordSearch:
		q = &WordSearchQuestions{}
	case GameTypeMemory:
		q = &MemoryQuestions{}
	case GameTypeBattleship:
		q = &BattleshipQuestions{}
	case GameTypeKahoot:
		q = &KahootQuestions{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, t)
	}
	if len(raw) == 0 {
		return nil, invalid("questions payload is required")
	}
	if err := json.Unmarshal(raw, q); err != nil {
		return nil, invalid("malformed %s payload: %v", t, err)
	}
	return q, nil
}

// DefaultTimeLimitSeconds applies when a question carries no time limit
const DefaultTimeLimitSeconds = 20

// RoscoQuestion is one letter of the rosco wheel
type RoscoQuestion struct {
	Letter   string `json:"letter"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Disabled bool   `json:"disabled,omitempty"`
}

// RoscoQuestions is the ROSCO payload, serialized as a bare array
type RoscoQuestions []RoscoQuestion

func (q *RoscoQuestions) GameType() GameType { return GameTypeRosco }
func (q *RoscoQuestions) isQuestions()       {}

func (q *RoscoQuestions) Validate() error {
	if q.ActiveCount() == 0 {
		return invalid("rosco needs at least one enabled letter")
	}
	seen := make(map[string]bool)
	for _, item := range *q {
		letter := strings.ToUpper(strings.TrimSpace(item.Letter))
		if utf8.RuneCountInString(letter) != 1 {
			return invalid("rosco letter %q must be a single character", item.Letter)
		}
		if seen[letter] {
			return invalid("rosco letter %s is repeated", letter)
		}
		seen[letter] = true
		if item.Disabled {
			continue
		}
		if strings.TrimSpace(item.Question) == "" || strings.TrimSpace(item.Answer) == "" {
			return invalid("rosco letter %s needs a question and an answer", letter)
		}
	}
	return nil
}

func (q *RoscoQuestions) Redacted() Questions {
	out := make(RoscoQuestions, len(*q))
	for i, item := range *q {
		item.Answer = ""
		out[i] = item
	}
	return &out
}

// ActiveCount returns the number of letters that are in play
func (q *RoscoQuestions) ActiveCount() int {
	count := 0
	for _, item := range *q {
		if !item.Disabled {
			count++
		}
	}
	return count
}

// Find returns the enabled question for letter (case-insensitive)
func (q *RoscoQuestions) Find(letter string) (RoscoQuestion, bool) {
	for _, item := range *q {
		if !item.Disabled && strings.EqualFold(strings.TrimSpace(item.Letter), strings.TrimSpace(letter)) {
			return item, true
		}
	}
	return RoscoQuestion{}, false
}

// HangmanQuestions is the HANGMAN payload
type HangmanQuestions struct {
	Word      string   `json:"word"`
	Hints     []string `json:"hints"`
	TimeLimit int      `json:"timeLimit"`
}

func (q *HangmanQuestions) GameType() GameType { return GameTypeHangman }
func (q *HangmanQuestions) isQuestions()       {}

func (q *HangmanQuestions) Validate() error {
	if strings.TrimSpace(q.Word) == "" {
		return invalid("hangman word is required")
	}
	if strings.IndexFunc(q.Word, unicode.IsLetter) < 0 {
		return invalid("hangman word needs at least one letter")
	}
	if q.TimeLimit < 0 {
		return invalid("hangman time limit cannot be negative")
	}
	return nil
}

// Redacted hides every letter as "_". Spaces and punctuation stay visible.
func (q *HangmanQuestions) Redacted() Questions {
	out := *q
	var b strings.Builder
	for _, r := range q.Word {
		if unicode.IsLetter(r) {
			b.WriteRune('_')
		} else {
			b.WriteRune(r)
		}
	}
	out.Word = b.String()
	return &out
}

// ChoiceQuestion is a trivia or kahoot question. With options the answer is
// CorrectIndex; without options it is the free-text Answer.
type ChoiceQuestion struct {
	Question     string   `json:"question"`
	Options      []string `json:"options,omitempty"`
	CorrectIndex int      `json:"correctIndex"`
	Answer       string   `json:"answer,omitempty"`
	TimeLimit    int      `json:"timeLimit,omitempty"`
}

// TimeLimitSeconds returns the configured limit or the default
func (c ChoiceQuestion) TimeLimitSeconds() int {
	if c.TimeLimit > 0 {
		return c.TimeLimit
	}
	return DefaultTimeLimitSeconds
}

func (c ChoiceQuestion) validate(i int, requireOptions bool) error {
	if strings.TrimSpace(c.Question) == "" {
		return invalid("question %d has no text", i+1)
	}
	if c.TimeLimit < 0 {
		return invalid("question %d has a negative time limit", i+1)
	}
	if len(c.Options) == 0 {
		if requireOptions {
			return invalid("question %d needs options", i+1)
		}
		if strings.TrimSpace(c.Answer) == "" {
			return invalid("question %d needs options or an answer", i+1)
		}
		return nil
	}
	if len(c.Options) < 2 {
		return invalid("question %d needs at least two options", i+1)
	}
	if c.CorrectIndex < 0 || c.CorrectIndex >= len(c.Options) {
		return invalid("question %d correct index out of range", i+1)
	}
	return nil
}

func (c ChoiceQuestion) redacted() ChoiceQuestion {
	c.CorrectIndex = -1
	c.Answer = ""
	return c
}

func validateChoices(questions []ChoiceQuestion, requireOptions bool) error {
	if len(questions) == 0 {
		return invalid("at least one question is required")
	}
	for i, c := range questions {
		if err := c.validate(i, requireOptions); err != nil {
			return err
		}
	}
	return nil
}

// TriviaQuestions is the TRIVIA (buzzer) payload
type TriviaQuestions struct {
	Questions []ChoiceQuestion `json:"questions"`
}

func (q *TriviaQuestions) GameType() GameType { return GameTypeTrivia }
func (q *TriviaQuestions) isQuestions()       {}
func (q *TriviaQuestions) Validate() error    { return validateChoices(q.Questions, false) }

func (q *TriviaQuestions) Redacted() Questions {
	out := TriviaQuestions{Questions: make([]ChoiceQuestion, len(q.Questions))}
	for i, c := range q.Questions {
		out.Questions[i] = c.redacted()
	}
	return &out
}

// KahootQuestions is the KAHOOT payload; every question is multiple choice
type KahootQuestions struct {
	Questions []ChoiceQuestion `json:"questions"`
}

func (q *KahootQuestions) GameType() GameType { return GameTypeKahoot }
func (q *KahootQuestions) isQuestions()       {}
func (q *KahootQuestions) Validate() error    { return validateChoices(q.Questions, true) }

func (q *KahootQuestions) Redacted() Questions {
	out := KahootQuestions{Questions: make([]ChoiceQuestion, len(q.Questions))}
	for i, c := range q.Questions {
		out.Questions[i] = c.redacted()
	}
	return &out
}

// WordSearchQuestions is the WORD_SEARCH payload
type WordSearchQuestions struct {
	Words     []string `json:"words"`
	GridSize  int      `json:"gridSize"`
	TimeLimit int      `json:"timeLimit"`
}

func (q *WordSearchQuestions) GameType() GameType  { return GameTypeWordSearch }
func (q *WordSearchQuestions) isQuestions()        {}
func (q *WordSearchQuestions) Redacted() Questions { out := *q; return &out }

func (q *WordSearchQuestions) Validate() error {
	if len(q.Words) == 0 {
		return invalid("word search needs at least one word")
	}
	longest := 0
	for _, w := range q.Words {
		n := utf8.RuneCountInString(strings.TrimSpace(w))
		if n == 0 {
			return invalid("word search words cannot be empty")
		}
		if n > longest {
			longest = n
		}
	}
	if q.GridSize < longest {
		return invalid("grid size %d is smaller than the longest word (%d)", q.GridSize, longest)
	}
	if q.TimeLimit < 0 {
		return invalid("word search time limit cannot be negative")
	}
	return nil
}

// MemoryPair is one matching pair of cards
type MemoryPair struct {
	Term  string `json:"term"`
	Match string `json:"match"`
}

// MemoryQuestions is the MEMORY payload
type MemoryQuestions struct {
	Pairs []MemoryPair `json:"pairs"`
}

func (q *MemoryQuestions) GameType() GameType  { return GameTypeMemory }
func (q *MemoryQuestions) isQuestions()        {}
func (q *MemoryQuestions) Redacted() Questions { out := *q; return &out }

func (q *MemoryQuestions) Validate() error {
	if len(q.Pairs) == 0 {
		return invalid("memory needs at least one pair")
	}
	for i, p := range q.Pairs {
		if strings.TrimSpace(p.Term) == "" || strings.TrimSpace(p.Match) == "" {
			return invalid("memory pair %d is incomplete", i+1)
		}
	}
	return nil
}

// Ship is a battleship hull placed by the client
type Ship struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

// PoolQuestion is a question a battleship player answers to earn a shot
type PoolQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// BattleshipQuestions is the BATTLESHIP payload
type BattleshipQuestions struct {
	Ships []Ship         `json:"ships"`
	Pool  []PoolQuestion `json:"pool"`
}

func (q *BattleshipQuestions) GameType() GameType { return GameTypeBattleship }
func (q *BattleshipQuestions) isQuestions()       {}

// Redacted keeps answers: scoring for battleship happens on the client
func (q *BattleshipQuestions) Redacted() Questions { out := *q; return &out }

func (q *BattleshipQuestions) Validate() error {
	if len(q.Ships) == 0 {
		return invalid("battleship needs at least one ship")
	}
	for _, s := range q.Ships {
		if s.Size <= 0 {
			return invalid("ship %q must have a positive size", s.Name)
		}
	}
	if len(q.Pool) == 0 {
		return invalid("battleship needs a question pool")
	}
	return nil
}
