package game

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"jugayaprende/internal/models"
)

func applyHangman(s *models.GameSession, p *models.Player, q *models.HangmanQuestions, a Action, now time.Time) (Result, error) {
	switch a.Action {
	case ActionHangmanGuess:
	case ActionHangmanFinish:
		return applyClientScored(s, p, a, now, "", ActionHangmanFinish)
	default:
		return Result{}, unsupported(a, models.GameTypeHangman)
	}

	if p.Finished {
		return Result{}, invalidf("Player already finished")
	}
	raw := strings.TrimSpace(a.Letter)
	r, size := utf8.DecodeRuneInString(raw)
	if size == 0 || size != len(raw) || !unicode.IsLetter(r) {
		return Result{}, invalidf("Guess a single letter")
	}
	letter := foldLetter(r)

	res := Result{}
	if contains(p.GuessedLetters, letter) {
		res.MaskedWord = MaskWord(q.Word, p.GuessedLetters)
		return res, nil
	}

	p.GuessedLetters = append(p.GuessedLetters, letter)
	hit := false
	for _, c := range q.Word {
		if unicode.IsLetter(c) && foldLetter(c) == letter {
			hit = true
			break
		}
	}
	if !hit {
		p.WrongGuesses++
	}
	res.Correct = boolPtr(hit)
	res.MaskedWord = MaskWord(q.Word, p.GuessedLetters)

	if wordSolved(q.Word, p.GuessedLetters) {
		points := HangmanPoints(p.WrongGuesses)
		p.Score += points
		p.Finished = true
		res.Points = points
		res.CorrectAnswer = q.Word
	} else if p.WrongGuesses >= HangmanMaxWrongGuesses {
		p.Finished = true
		res.CorrectAnswer = q.Word
	}

	finishIfAllDone(s, now)
	return res, nil
}

// MaskWord shows guessed letters and hides the rest as "_", separated by
// spaces. Characters that are not letters are always shown. A guess matches
// every accented form of its letter; "o" reveals "ó".
func MaskWord(word string, guessed []string) string {
	var b strings.Builder
	for _, char := range strings.ToLower(word) {
		if char == ' ' {
			b.WriteString("  ")
			continue
		}
		if !unicode.IsLetter(char) || contains(guessed, foldLetter(char)) {
			b.WriteRune(char)
		} else {
			b.WriteRune('_')
		}
		b.WriteRune(' ')
	}
	return strings.TrimSpace(b.String())
}

// wordSolved reports whether every letter of word has been guessed
func wordSolved(word string, guessed []string) bool {
	for _, char := range word {
		if unicode.IsLetter(char) && !contains(guessed, foldLetter(char)) {
			return false
		}
	}
	return true
}

// foldLetter is the form a letter is guessed and matched in: lowercased with
// accents removed. "ñ" stays its own letter.
func foldLetter(r rune) string {
	r = unicode.ToLower(r)
	if r == 'ñ' {
		return string(r)
	}
	return NormalizeAnswer(string(r))
}

// HangmanPoints scores a solved word
func HangmanPoints(wrongGuesses int) int {
	points := 100 - wrongGuesses*10
	if points < 10 {
		return 10
	}
	return points
}
