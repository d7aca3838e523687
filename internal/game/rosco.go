package game

import (
	"strings"
	"time"

	"jugayaprende/internal/models"
)

func applyRosco(s *models.GameSession, p *models.Player, q *models.RoscoQuestions, a Action, now time.Time) (Result, error) {
	if p.Finished {
		return Result{}, invalidf("Player already finished")
	}
	if a.ForceFinish {
		p.Finished = true
		res := Result{}
		if a.ForceStatus == ForceStatusCorrect {
			p.Score += RoscoCompletionBonus
			res.Points = RoscoCompletionBonus
		}
		finishIfAllDone(s, now)
		return res, nil
	}

	if a.Action != ActionRoscoAnswer && a.Action != ActionRoscoPasapalabra {
		return Result{}, unsupported(a, models.GameTypeRosco)
	}

	letter := strings.ToUpper(strings.TrimSpace(a.Letter))
	if letter == "" {
		return Result{}, invalidf("Letter is required")
	}
	question, ok := q.Find(letter)
	if !ok {
		return Result{}, invalidf("Letter %s is not part of this rosco", letter)
	}
	if p.Progress == nil {
		p.Progress = map[string]models.LetterStatus{}
	}
	if p.Progress[letter].Resolved() {
		return Result{}, invalidf("Letter %s already answered", letter)
	}

	if a.Action == ActionRoscoPasapalabra {
		p.Progress[letter] = models.LetterPasapalabra
		return Result{}, nil
	}

	correct := AnswersMatch(a.Answer, question.Answer)
	res := Result{Correct: boolPtr(correct), CorrectAnswer: question.Answer}
	if correct {
		p.Progress[letter] = models.LetterCorrect
		p.Score++
		res.Points = 1
	} else {
		p.Progress[letter] = models.LetterIncorrect
	}

	if resolvedLetters(p) >= q.ActiveCount() {
		p.Finished = true
	}
	finishIfAllDone(s, now)
	return res, nil
}

func resolvedLetters(p *models.Player) int {
	count := 0
	for _, status := range p.Progress {
		if status.Resolved() {
			count++
		}
	}
	return count
}
