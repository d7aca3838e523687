package game

import (
	"time"

	"jugayaprende/internal/models"
)

// Player action names accepted on the answer endpoint
const (
	ActionRoscoAnswer      = "answer"
	ActionRoscoPasapalabra = "pasapalabra"
	ActionBuzz             = "BUZZ"
	ActionTriviaAnswer     = "TRIVIA_ANSWER"
	ActionTriviaTimeout    = "TRIVIA_TIMEOUT"
	ActionKahootAnswer     = "KAHOOT_ANSWER"
	ActionHangmanGuess     = "HANGMAN_GUESS"
	ActionHangmanFinish    = "HANGMAN_FINISH"
	ActionWordSearchFinish = "WORD_SEARCH_FINISH"
	ActionMemoryFinish     = "MEMORY_FINISH"
	ActionBattleshipUpdate = "BATTLESHIP_UPDATE"
	ActionBattleshipFinish = "BATTLESHIP_FINISH"

	// ActionSkipQuestion is a host action for trivia games
	ActionSkipQuestion = "SKIP_QUESTION"

	ForceStatusCorrect = "correct"
)

var knownActions = map[string]bool{
	ActionRoscoAnswer:      true,
	ActionRoscoPasapalabra: true,
	ActionBuzz:             true,
	ActionTriviaAnswer:     true,
	ActionTriviaTimeout:    true,
	ActionKahootAnswer:     true,
	ActionHangmanGuess:     true,
	ActionHangmanFinish:    true,
	ActionWordSearchFinish: true,
	ActionMemoryFinish:     true,
	ActionBattleshipUpdate: true,
	ActionBattleshipFinish: true,
	ActionSkipQuestion:     true,
}

// KnownAction reports whether name is one of the action constants above
func KnownAction(name string) bool {
	return knownActions[name]
}

// Scoring and timing rules
const (
	RoscoCompletionBonus   = 10
	TriviaCorrectPoints    = 10
	TriviaWrongPenalty     = 5
	BuzzerReenableDelay    = 5 * time.Second
	HangmanMaxWrongGuesses = 6
)

// Action is a player submission on a running session
type Action struct {
	Player      string `json:"player"`
	Action      string `json:"action"`
	Letter      string `json:"letter,omitempty"`
	Answer      string `json:"answer,omitempty"`
	AnswerIndex *int   `json:"answerIndex,omitempty"`
	ForceFinish bool   `json:"forceFinish,omitempty"`
	ForceStatus string `json:"forceStatus,omitempty"`
	Score       *int   `json:"score,omitempty"`
}

// Result describes the effect of an action on the acting player
type Result struct {
	Correct       *bool  `json:"correct,omitempty"`
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	Points        int    `json:"points"`
	Score         int    `json:"score"`
	Finished      bool   `json:"finished"`
	MaskedWord    string `json:"maskedWord,omitempty"`
	Status        string `json:"status"`
}

// Apply runs one player action against s, mutating it in place.
// Expired deadlines are settled first so the action sees current state.
func Apply(s *models.GameSession, cfg *models.GameConfig, a Action, now time.Time) (Result, error) {
	Tick(s, cfg, now)

	if s.Status != models.StatusPlaying {
		return Result{}, invalidf("Game is not in progress")
	}
	p := s.FindPlayer(a.Player)
	if p == nil {
		return Result{}, ErrPlayerNotFound
	}

	var (
		res Result
		err error
	)
	switch q := cfg.Questions.(type) {
	case *models.RoscoQuestions:
		res, err = applyRosco(s, p, q, a, now)
	case *models.TriviaQuestions:
		res, err = applyTrivia(s, p, q, a, now)
	case *models.KahootQuestions:
		res, err = applyKahoot(s, p, q, a, now)
	case *models.HangmanQuestions:
		res, err = applyHangman(s, p, q, a, now)
	case *models.WordSearchQuestions:
		res, err = applyClientScored(s, p, a, now, "", ActionWordSearchFinish)
	case *models.MemoryQuestions:
		res, err = applyClientScored(s, p, a, now, "", ActionMemoryFinish)
	case *models.BattleshipQuestions:
		res, err = applyClientScored(s, p, a, now, ActionBattleshipUpdate, ActionBattleshipFinish)
	default:
		return Result{}, invalidf("Unsupported game type")
	}
	if err != nil {
		return Result{}, err
	}

	// FindPlayer pointers stay valid: no action appends players
	res.Score = p.Score
	res.Finished = p.Finished
	res.Status = string(s.Status)
	return res, nil
}

func unsupported(a Action, t models.GameType) *ActionError {
	if a.Action == "" {
		return invalidf("Action is required")
	}
	return invalidf("Action %s is not valid for %s games", a.Action, t)
}

func finishIfAllDone(s *models.GameSession, now time.Time) {
	if s.AllFinished() {
		finish(s, now)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
