package game

import (
	"time"

	"jugayaprende/internal/models"
)

func applyTrivia(s *models.GameSession, p *models.Player, q *models.TriviaQuestions, a Action, now time.Time) (Result, error) {
	ts := s.TriviaState
	if ts == nil {
		return Result{}, invalidf("Trivia has not started")
	}

	switch a.Action {
	case ActionBuzz:
		return Result{}, buzz(ts, q, p.Name, now)
	case ActionTriviaAnswer, ActionTriviaTimeout:
	default:
		return Result{}, unsupported(a, models.GameTypeTrivia)
	}

	if ts.BuzzedPlayer != p.Name {
		return Result{}, forbiddenf("It is not your turn to answer")
	}

	question := q.Questions[ts.CurrentQuestionIndex]
	correct := a.Action == ActionTriviaAnswer && triviaCorrect(question, a)
	res := Result{Correct: boolPtr(correct)}
	if correct {
		p.Score += TriviaCorrectPoints
		res.Points = TriviaCorrectPoints
		advanceTrivia(s, q, now)
		return res, nil
	}

	p.Score -= TriviaWrongPenalty
	res.Points = -TriviaWrongPenalty
	failBuzz(s, q, now)
	return res, nil
}

func buzz(ts *models.TriviaState, q *models.TriviaQuestions, name string, now time.Time) error {
	enabled := ts.BuzzerEnableTime != nil && !now.Before(*ts.BuzzerEnableTime)
	if !ts.BuzzerOpen && !enabled {
		return invalidf("Buzzer is not open yet")
	}
	if contains(ts.BuzzQueue, name) {
		return invalidf("Already in the buzz queue")
	}
	if contains(ts.AttemptedPlayers, name) {
		return invalidf("Already attempted this question")
	}

	ts.BuzzQueue = append(ts.BuzzQueue, name)
	ts.BuzzerOpen = true
	if ts.BuzzedPlayer == "" {
		activate(ts, q, name, now)
	}
	return nil
}

// activate makes name the answering player with a fresh deadline
func activate(ts *models.TriviaState, q *models.TriviaQuestions, name string, now time.Time) {
	limit := time.Duration(q.Questions[ts.CurrentQuestionIndex].TimeLimitSeconds()) * time.Second
	deadline := now.Add(limit)
	ts.BuzzedPlayer = name
	ts.AnswerDeadline = &deadline
}

// failBuzz handles an incorrect answer or a timeout by the active player
func failBuzz(s *models.GameSession, q *models.TriviaQuestions, now time.Time) {
	ts := s.TriviaState
	failed := ts.BuzzedPlayer
	if !contains(ts.AttemptedPlayers, failed) {
		ts.AttemptedPlayers = append(ts.AttemptedPlayers, failed)
	}
	ts.BuzzQueue = remove(ts.BuzzQueue, failed)
	ts.BuzzedPlayer = ""
	ts.AnswerDeadline = nil

	switch {
	case len(ts.BuzzQueue) > 0:
		activate(ts, q, ts.BuzzQueue[0], now)
	case everyoneAttempted(s):
		advanceTrivia(s, q, now)
	default:
		ts.BuzzerOpen = true
	}
}

// advanceTrivia moves to the next question or finishes after the last one
func advanceTrivia(s *models.GameSession, q *models.TriviaQuestions, now time.Time) {
	ts := s.TriviaState
	ts.CurrentQuestionIndex++
	ts.BuzzQueue = []string{}
	ts.AttemptedPlayers = []string{}
	ts.BuzzedPlayer = ""
	ts.AnswerDeadline = nil
	ts.BuzzerOpen = false
	enable := now.Add(BuzzerReenableDelay)
	ts.BuzzerEnableTime = &enable

	if ts.CurrentQuestionIndex >= len(q.Questions) {
		ts.CurrentQuestionIndex = len(q.Questions)
		finish(s, now)
	}
}

// SkipQuestion lets the host move past the current trivia question without scoring
func SkipQuestion(s *models.GameSession, q *models.TriviaQuestions, now time.Time) error {
	if s.Status != models.StatusPlaying || s.TriviaState == nil {
		return invalidf("Game is not in progress")
	}
	advanceTrivia(s, q, now)
	return nil
}

func tickTrivia(s *models.GameSession, q *models.TriviaQuestions, now time.Time) bool {
	ts := s.TriviaState
	if ts == nil {
		return false
	}
	if ts.BuzzedPlayer != "" && ts.AnswerDeadline != nil && now.After(*ts.AnswerDeadline) {
		if p := s.FindPlayer(ts.BuzzedPlayer); p != nil {
			p.Score -= TriviaWrongPenalty
		}
		failBuzz(s, q, now)
		return true
	}
	if !ts.BuzzerOpen && ts.BuzzedPlayer == "" && ts.BuzzerEnableTime == nil {
		enable := now.Add(BuzzerReenableDelay)
		ts.BuzzerEnableTime = &enable
		return true
	}
	return false
}

func triviaCorrect(question models.ChoiceQuestion, a Action) bool {
	if len(question.Options) > 0 {
		if a.AnswerIndex != nil {
			return *a.AnswerIndex == question.CorrectIndex
		}
		return AnswersMatch(a.Answer, question.Options[question.CorrectIndex])
	}
	return AnswersMatch(a.Answer, question.Answer)
}

func everyoneAttempted(s *models.GameSession) bool {
	for _, p := range s.Players {
		if !contains(s.TriviaState.AttemptedPlayers, p.Name) {
			return false
		}
	}
	return true
}

func contains(list []string, name string) bool {
	for _, v := range list {
		if v == name {
			return true
		}
	}
	return false
}

func remove(list []string, name string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != name {
			out = append(out, v)
		}
	}
	return out
}
