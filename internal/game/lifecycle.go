package game

import (
	"time"

	"jugayaprende/internal/models"
)

// HostUpdate is a host-driven change; empty fields are ignored
type HostUpdate struct {
	Status models.SessionStatus `json:"status,omitempty"`
	Phase  models.KahootPhase   `json:"phase,omitempty"`
	Action string               `json:"action,omitempty"`
}

// Join adds a player named name, or returns the existing one.
// The second return value reports whether a player was added.
func Join(s *models.GameSession, name string, now time.Time) (*models.Player, bool, error) {
	if s.Status == models.StatusFinished {
		return nil, false, invalidf("Game already finished")
	}
	if p := s.FindPlayer(name); p != nil {
		return p, false, nil
	}
	s.Players = append(s.Players, models.Player{
		Name:     name,
		Progress: map[string]models.LetterStatus{},
		JoinedAt: now,
	})
	return &s.Players[len(s.Players)-1], true, nil
}

// Start moves a WAITING session to PLAYING and prepares per-type state
func Start(s *models.GameSession, cfg *models.GameConfig, now time.Time) error {
	if s.Status != models.StatusWaiting {
		return invalidf("Game cannot be started from %s", s.Status)
	}
	s.Status = models.StatusPlaying
	t := now
	s.StartTime = &t

	switch q := cfg.Questions.(type) {
	case *models.TriviaQuestions:
		s.TriviaState = &models.TriviaState{
			BuzzQueue:        []string{},
			AttemptedPlayers: []string{},
		}
	case *models.KahootQuestions:
		s.KahootState = &models.KahootState{
			Phase:    models.PhaseLobby,
			Answered: []string{},
		}
		resetKahootTallies(s, q)
	}
	return nil
}

// Finish ends the session. FINISHED is terminal.
func Finish(s *models.GameSession, now time.Time) error {
	if s.Status == models.StatusFinished {
		return invalidf("Game already finished")
	}
	finish(s, now)
	return nil
}

func finish(s *models.GameSession, now time.Time) {
	if s.Status == models.StatusFinished {
		return
	}
	s.Status = models.StatusFinished
	t := now
	s.FinishedAt = &t
	if ts := s.TriviaState; ts != nil {
		ts.BuzzerOpen = false
		ts.BuzzedPlayer = ""
		ts.BuzzQueue = []string{}
		ts.AnswerDeadline = nil
		ts.BuzzerEnableTime = nil
	}
	if ks := s.KahootState; ks != nil {
		ks.Phase = models.PhasePodium
		ks.TimerEndTime = nil
	}
}

// SetStatus applies a host-requested status change; only forward moves are allowed
func SetStatus(s *models.GameSession, cfg *models.GameConfig, status models.SessionStatus, now time.Time) error {
	if !s.Status.CanAdvanceTo(status) {
		return invalidf("Cannot move game from %s to %s", s.Status, status)
	}
	if status == models.StatusPlaying {
		return Start(s, cfg, now)
	}
	return Finish(s, now)
}

// ApplyHostUpdate runs a host update: status first, then phase, then action
func ApplyHostUpdate(s *models.GameSession, cfg *models.GameConfig, u HostUpdate, now time.Time) error {
	if u.Status == "" && u.Phase == "" && u.Action == "" {
		return invalidf("Nothing to update")
	}
	Tick(s, cfg, now)

	if u.Status != "" {
		if err := SetStatus(s, cfg, u.Status, now); err != nil {
			return err
		}
	}
	if u.Phase != "" {
		q, ok := cfg.Questions.(*models.KahootQuestions)
		if !ok {
			return invalidf("Phases only apply to %s games", models.GameTypeKahoot)
		}
		if err := SetPhase(s, q, u.Phase, now); err != nil {
			return err
		}
	}
	switch u.Action {
	case "":
	case ActionSkipQuestion:
		q, ok := cfg.Questions.(*models.TriviaQuestions)
		if !ok {
			return invalidf("Skipping questions only applies to %s games", models.GameTypeTrivia)
		}
		return SkipQuestion(s, q, now)
	default:
		return invalidf("Unknown host action %s", u.Action)
	}
	return nil
}

// Tick settles time-based state: an expired trivia answer deadline counts as
// a timeout, an expired kahoot answering window moves to RESULTS, and the
// trivia buzzer delay is armed the first time a started session is read.
// It reports whether s changed.
func Tick(s *models.GameSession, cfg *models.GameConfig, now time.Time) bool {
	if s.Status != models.StatusPlaying {
		return false
	}
	switch q := cfg.Questions.(type) {
	case *models.TriviaQuestions:
		return tickTrivia(s, q, now)
	case *models.KahootQuestions:
		return tickKahoot(s, now)
	}
	return false
}
