package models

import (
	"testing"
	"time"
)

func TestStatusCanAdvanceTo(t *testing.T) {
	tests := []struct {
		from, to SessionStatus
		want     bool
	}{
		{StatusWaiting, StatusPlaying, true},
		{StatusWaiting, StatusFinished, true},
		{StatusPlaying, StatusFinished, true},
		{StatusPlaying, StatusWaiting, false},
		{StatusFinished, StatusPlaying, false},
		{StatusFinished, StatusFinished, false},
		{StatusWaiting, SessionStatus("PAUSED"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanAdvanceTo(tt.to); got != tt.want {
				t.Errorf("CanAdvanceTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllFinished(t *testing.T) {
	s := &GameSession{}
	if s.AllFinished() {
		t.Error("empty session must not count as finished")
	}
	s.Players = []Player{{Name: "Ana", Finished: true}, {Name: "Beto"}}
	if s.AllFinished() {
		t.Error("expected false with an unfinished player")
	}
	s.FindPlayer("Beto").Finished = true
	if !s.AllFinished() {
		t.Error("expected true once every player finished")
	}
}

func TestCloneIsDeep(t *testing.T) {
	deadline := time.Now()
	s := &GameSession{
		Code: "ABC234",
		SessionState: SessionState{
			Players: []Player{{Name: "Ana", Progress: map[string]LetterStatus{"A": LetterCorrect}}},
			TriviaState: &TriviaState{
				BuzzQueue:      []string{"Ana"},
				AnswerDeadline: &deadline,
			},
		},
	}

	c := s.Clone()
	c.Players[0].Progress["B"] = LetterIncorrect
	c.TriviaState.BuzzQueue[0] = "Beto"
	*c.TriviaState.AnswerDeadline = deadline.Add(time.Hour)

	if _, ok := s.Players[0].Progress["B"]; ok {
		t.Error("progress map shared with clone")
	}
	if s.TriviaState.BuzzQueue[0] != "Ana" {
		t.Error("buzz queue shared with clone")
	}
	if !s.TriviaState.AnswerDeadline.Equal(deadline) {
		t.Error("deadline shared with clone")
	}
}
