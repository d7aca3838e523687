package game

import (
	"errors"
	"testing"
	"time"

	"jugayaprende/internal/models"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func newSession(status models.SessionStatus, players ...string) *models.GameSession {
	s := &models.GameSession{Code: "ABC234", Status: models.StatusWaiting}
	for _, name := range players {
		if _, _, err := Join(s, name, t0); err != nil {
			panic(err)
		}
	}
	s.Status = status
	return s
}

func startedSession(t *testing.T, cfg *models.GameConfig, players ...string) *models.GameSession {
	t.Helper()
	s := newSession(models.StatusWaiting, players...)
	if err := Start(s, cfg, t0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return s
}

func intPtr(i int) *int {
	return &i
}

func wantKind(t *testing.T, err error, kind ErrorKind) {
	t.Helper()
	var actionErr *ActionError
	if !errors.As(err, &actionErr) {
		t.Fatalf("expected *ActionError, got %v", err)
	}
	if actionErr.Kind != kind {
		t.Fatalf("error kind = %d, want %d (%s)", actionErr.Kind, kind, actionErr.Message)
	}
}

func mustApply(t *testing.T, s *models.GameSession, cfg *models.GameConfig, a Action, now time.Time) Result {
	t.Helper()
	res, err := Apply(s, cfg, a, now)
	if err != nil {
		t.Fatalf("Apply(%+v) error = %v", a, err)
	}
	return res
}
