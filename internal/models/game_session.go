package models

import (
	"time"
)

// SessionStatus is the lifecycle state of a GameSession
type SessionStatus string

const (
	StatusWaiting  SessionStatus = "WAITING"
	StatusPlaying  SessionStatus = "PLAYING"
	StatusFinished SessionStatus = "FINISHED"
)

func (s SessionStatus) rank() int {
	switch s {
	case StatusWaiting:
		return 0
	case StatusPlaying:
		return 1
	case StatusFinished:
		return 2
	default:
		return -1
	}
}

// Valid reports whether s is a known status
func (s SessionStatus) Valid() bool {
	return s.rank() >= 0
}

// CanAdvanceTo reports whether moving from s to next is a forward transition
func (s SessionStatus) CanAdvanceTo(next SessionStatus) bool {
	return s.Valid() && next.Valid() && next.rank() > s.rank()
}

// LetterStatus is the outcome recorded for one Rosco letter
type LetterStatus string

const (
	LetterCorrect     LetterStatus = "correct"
	LetterIncorrect   LetterStatus = "incorrect"
	LetterPasapalabra LetterStatus = "pasapalabra"
)

// Resolved reports whether the letter can no longer be answered
func (l LetterStatus) Resolved() bool {
	return l == LetterCorrect || l == LetterIncorrect
}

// KahootPhase is a stage of the synchronous multiple-choice cycle
type KahootPhase string

const (
	PhaseLobby       KahootPhase = "LOBBY"
	PhasePreview     KahootPhase = "PREVIEW"
	PhaseAnswering   KahootPhase = "ANSWERING"
	PhaseResults     KahootPhase = "RESULTS"
	PhaseLeaderboard KahootPhase = "LEADERBOARD"
	PhasePodium      KahootPhase = "PODIUM"
)

// Valid reports whether p is a known phase
func (p KahootPhase) Valid() bool {
	switch p {
	case PhaseLobby, PhasePreview, PhaseAnswering, PhaseResults, PhaseLeaderboard, PhasePodium:
		return true
	}
	return false
}

// Player is a participant embedded in a session
type Player struct {
	Name           string                  `json:"name"`
	Progress       map[string]LetterStatus `json:"progress"`
	Score          int                     `json:"score"`
	Finished       bool                    `json:"finished"`
	LastPoints     int                     `json:"lastPoints"`
	LastCorrect    bool                    `json:"lastCorrect"`
	GuessedLetters []string                `json:"guessedLetters,omitempty"`
	WrongGuesses   int                     `json:"wrongGuesses"`
	JoinedAt       time.Time               `json:"joinedAt"`
}

// TriviaState tracks the buzzer for the current trivia question
type TriviaState struct {
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	BuzzerOpen           bool       `json:"buzzerOpen"`
	BuzzedPlayer         string     `json:"buzzedPlayer,omitempty"`
	BuzzQueue            []string   `json:"buzzQueue"`
	AttemptedPlayers     []string   `json:"attemptedPlayers"`
	AnswerDeadline       *time.Time `json:"answerDeadline,omitempty"`
	BuzzerEnableTime     *time.Time `json:"buzzerEnableTime,omitempty"`
}

// KahootState tracks the phase cycle of a kahoot session
type KahootState struct {
	CurrentQuestionIndex int         `json:"currentQuestionIndex"`
	Phase                KahootPhase `json:"phase"`
	TimerEndTime         *time.Time  `json:"timerEndTime,omitempty"`
	AnswerCounts         []int       `json:"answerCounts"`
	Answered             []string    `json:"answered"`
}

// SessionState is the mutable document stored alongside a session row
type SessionState struct {
	Players     []Player     `json:"players"`
	TriviaState *TriviaState `json:"triviaState,omitempty"`
	KahootState *KahootState `json:"kahootState,omitempty"`
}

// GameSession is one live play instance of a GameConfig
type GameSession struct {
	ID         int64         `json:"id"`
	Code       string        `json:"code"`
	ConfigID   int64         `json:"configId"`
	HostID     int64         `json:"hostId"`
	Status     SessionStatus `json:"status"`
	Version    int64         `json:"version"`
	StartTime  *time.Time    `json:"startTime,omitempty"`
	FinishedAt *time.Time    `json:"finishedAt,omitempty"`
	SessionState
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FindPlayer returns a pointer into Players, or nil
func (s *GameSession) FindPlayer(name string) *Player {
	for i := range s.Players {
		if s.Players[i].Name == name {
			return &s.Players[i]
		}
	}
	return nil
}

// AllFinished reports whether there is at least one player and every player is finished
func (s *GameSession) AllFinished() bool {
	if len(s.Players) == 0 {
		return false
	}
	for _, p := range s.Players {
		if !p.Finished {
			return false
		}
	}
	return true
}

// Clone returns a deep copy so callers can mutate without touching the original
func (s *GameSession) Clone() *GameSession {
	out := *s
	out.StartTime = cloneTime(s.StartTime)
	out.FinishedAt = cloneTime(s.FinishedAt)
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		cp := p
		if p.Progress != nil {
			cp.Progress = make(map[string]LetterStatus, len(p.Progress))
			for k, v := range p.Progress {
				cp.Progress[k] = v
			}
		}
		cp.GuessedLetters = append([]string(nil), p.GuessedLetters...)
		out.Players[i] = cp
	}
	if s.TriviaState != nil {
		ts := *s.TriviaState
		ts.BuzzQueue = append([]string(nil), ts.BuzzQueue...)
		ts.AttemptedPlayers = append([]string(nil), ts.AttemptedPlayers...)
		ts.AnswerDeadline = cloneTime(ts.AnswerDeadline)
		ts.BuzzerEnableTime = cloneTime(ts.BuzzerEnableTime)
		out.TriviaState = &ts
	}
	if s.KahootState != nil {
		ks := *s.KahootState
		ks.AnswerCounts = append([]int(nil), ks.AnswerCounts...)
		ks.Answered = append([]string(nil), ks.Answered...)
		ks.TimerEndTime = cloneTime(ks.TimerEndTime)
		out.KahootState = &ks
	}
	return &out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
