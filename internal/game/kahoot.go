package game

import (
	"math"
	"time"

	"jugayaprende/internal/models"
)

var kahootTransitions = map[models.KahootPhase][]models.KahootPhase{
	models.PhaseLobby:       {models.PhasePreview},
	models.PhasePreview:     {models.PhaseAnswering},
	models.PhaseAnswering:   {models.PhaseResults},
	models.PhaseResults:     {models.PhaseLeaderboard, models.PhasePodium},
	models.PhaseLeaderboard: {models.PhasePreview, models.PhasePodium},
}

// CanTransition reports whether the host may move from one phase to another
func CanTransition(from, to models.KahootPhase) bool {
	for _, allowed := range kahootTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// SetPhase performs a host-driven kahoot phase transition
func SetPhase(s *models.GameSession, q *models.KahootQuestions, phase models.KahootPhase, now time.Time) error {
	ks := s.KahootState
	if s.Status != models.StatusPlaying || ks == nil {
		return invalidf("Game is not in progress")
	}
	if !CanTransition(ks.Phase, phase) {
		return invalidf("Cannot move from %s to %s", ks.Phase, phase)
	}

	switch phase {
	case models.PhasePreview:
		if ks.Phase == models.PhaseLeaderboard {
			if ks.CurrentQuestionIndex+1 >= len(q.Questions) {
				finish(s, now)
				return nil
			}
			ks.CurrentQuestionIndex++
		}
		resetKahootTallies(s, q)
	case models.PhaseAnswering:
		limit := time.Duration(q.Questions[ks.CurrentQuestionIndex].TimeLimitSeconds()) * time.Second
		end := now.Add(limit)
		ks.TimerEndTime = &end
	case models.PhaseResults:
		ks.TimerEndTime = nil
	case models.PhasePodium:
		finish(s, now)
		return nil
	}
	ks.Phase = phase
	return nil
}

func resetKahootTallies(s *models.GameSession, q *models.KahootQuestions) {
	ks := s.KahootState
	options := 0
	if ks.CurrentQuestionIndex < len(q.Questions) {
		options = len(q.Questions[ks.CurrentQuestionIndex].Options)
	}
	ks.AnswerCounts = make([]int, options)
	ks.Answered = []string{}
	ks.TimerEndTime = nil
	for i := range s.Players {
		s.Players[i].LastPoints = 0
		s.Players[i].LastCorrect = false
	}
}

func applyKahoot(s *models.GameSession, p *models.Player, q *models.KahootQuestions, a Action, now time.Time) (Result, error) {
	if a.Action != ActionKahootAnswer {
		return Result{}, unsupported(a, models.GameTypeKahoot)
	}
	ks := s.KahootState
	if ks == nil || ks.Phase != models.PhaseAnswering {
		return Result{}, invalidf("Answers are not being accepted right now")
	}
	if ks.TimerEndTime == nil || !now.Before(*ks.TimerEndTime) {
		return Result{}, invalidf("Time is up")
	}
	if contains(ks.Answered, p.Name) {
		return Result{}, invalidf("Already answered this question")
	}
	question := q.Questions[ks.CurrentQuestionIndex]
	if a.AnswerIndex == nil || *a.AnswerIndex < 0 || *a.AnswerIndex >= len(question.Options) {
		return Result{}, invalidf("Answer index out of range")
	}

	correct := *a.AnswerIndex == question.CorrectIndex
	points := 0
	if correct {
		total := time.Duration(question.TimeLimitSeconds()) * time.Second
		points = KahootPoints(ks.TimerEndTime.Sub(now), total)
	}
	p.Score += points
	p.LastPoints = points
	p.LastCorrect = correct

	if len(ks.AnswerCounts) != len(question.Options) {
		ks.AnswerCounts = make([]int, len(question.Options))
	}
	ks.AnswerCounts[*a.AnswerIndex]++
	ks.Answered = append(ks.Answered, p.Name)
	if len(ks.Answered) >= len(s.Players) {
		ks.Phase = models.PhaseResults
		ks.TimerEndTime = nil
	}

	return Result{Correct: boolPtr(correct), Points: points}, nil
}

// KahootPoints scores a correct answer: 1000 at the start of the window,
// falling linearly to 500 when the timer runs out.
func KahootPoints(remaining, total time.Duration) int {
	if total <= 0 {
		return 500
	}
	if remaining < 0 {
		remaining = 0
	}
	if remaining > total {
		remaining = total
	}
	return int(math.Round(500 + 500*float64(remaining)/float64(total)))
}

func tickKahoot(s *models.GameSession, now time.Time) bool {
	ks := s.KahootState
	if ks == nil || ks.Phase != models.PhaseAnswering || ks.TimerEndTime == nil {
		return false
	}
	if now.Before(*ks.TimerEndTime) {
		return false
	}
	ks.Phase = models.PhaseResults
	ks.TimerEndTime = nil
	return true
}
