package game

import (
	"time"

	"jugayaprende/internal/models"
)

// applyClientScored records a score computed by the client. updateAction may be
// empty when the game type only reports a final result.
func applyClientScored(s *models.GameSession, p *models.Player, a Action, now time.Time, updateAction, finishAction string) (Result, error) {
	if a.Action == "" || (a.Action != updateAction && a.Action != finishAction) {
		return Result{}, unsupported(a, gameTypeFor(finishAction))
	}
	if p.Finished {
		return Result{}, invalidf("Player already finished")
	}
	if a.Score == nil {
		return Result{}, invalidf("Score is required")
	}
	if *a.Score < 0 {
		return Result{}, invalidf("Score cannot be negative")
	}

	p.Score = *a.Score
	if a.Action == finishAction {
		p.Finished = true
		finishIfAllDone(s, now)
	}
	return Result{}, nil
}

func gameTypeFor(finishAction string) models.GameType {
	switch finishAction {
	case ActionWordSearchFinish:
		return models.GameTypeWordSearch
	case ActionMemoryFinish:
		return models.GameTypeMemory
	case ActionBattleshipFinish:
		return models.GameTypeBattleship
	default:
		return models.GameTypeHangman
	}
}
