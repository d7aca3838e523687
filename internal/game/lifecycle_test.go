package game

import (
	"testing"

	"jugayaprende/internal/models"
)

func memoryConfig() *models.GameConfig {
	return &models.GameConfig{
		Type:      models.GameTypeMemory,
		Questions: &models.MemoryQuestions{Pairs: []models.MemoryPair{{Term: "one", Match: "uno"}}},
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	s := newSession(models.StatusWaiting)

	_, created, err := Join(s, "Ana", t0)
	if err != nil || !created {
		t.Fatalf("first Join() created=%v err=%v", created, err)
	}
	_, created, err = Join(s, "Ana", t0)
	if err != nil {
		t.Fatalf("second Join() error = %v", err)
	}
	if created {
		t.Error("second join should not create a player")
	}
	if len(s.Players) != 1 {
		t.Errorf("players = %d, want 1", len(s.Players))
	}
	if s.Players[0].Progress == nil {
		t.Error("new player should have an empty progress map")
	}
}

func TestJoinFinishedSessionRejected(t *testing.T) {
	s := newSession(models.StatusFinished)
	_, _, err := Join(s, "Ana", t0)
	wantKind(t, err, KindInvalid)
}

func TestJoinWhilePlaying(t *testing.T) {
	s := newSession(models.StatusPlaying, "Ana")
	if _, created, err := Join(s, "Beto", t0); err != nil || !created {
		t.Fatalf("Join() created=%v err=%v", created, err)
	}
}

func TestStart(t *testing.T) {
	cfg := memoryConfig()
	s := newSession(models.StatusWaiting, "Ana")

	if err := Start(s, cfg, t0); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.Status != models.StatusPlaying {
		t.Errorf("status = %s, want PLAYING", s.Status)
	}
	if s.StartTime == nil || !s.StartTime.Equal(t0) {
		t.Errorf("start time = %v, want %v", s.StartTime, t0)
	}

	wantKind(t, Start(s, cfg, t0), KindInvalid)
}

func TestStatusOnlyMovesForward(t *testing.T) {
	tests := []struct {
		name    string
		from    models.SessionStatus
		to      models.SessionStatus
		wantErr bool
	}{
		{"waiting to playing", models.StatusWaiting, models.StatusPlaying, false},
		{"waiting to finished", models.StatusWaiting, models.StatusFinished, false},
		{"playing to finished", models.StatusPlaying, models.StatusFinished, false},
		{"playing to waiting", models.StatusPlaying, models.StatusWaiting, true},
		{"finished to playing", models.StatusFinished, models.StatusPlaying, true},
		{"finished to waiting", models.StatusFinished, models.StatusWaiting, true},
		{"finished to finished", models.StatusFinished, models.StatusFinished, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(tt.from, "Ana")
			err := SetStatus(s, memoryConfig(), tt.to, t0)
			if tt.wantErr {
				wantKind(t, err, KindInvalid)
				if s.Status != tt.from {
					t.Errorf("status changed to %s on rejected move", s.Status)
				}
				return
			}
			if err != nil {
				t.Fatalf("SetStatus() error = %v", err)
			}
			if s.Status != tt.to {
				t.Errorf("status = %s, want %s", s.Status, tt.to)
			}
		})
	}
}

func TestFinishIsTerminal(t *testing.T) {
	s := newSession(models.StatusPlaying, "Ana")
	if err := Finish(s, t0); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if s.FinishedAt == nil {
		t.Error("finishedAt not stamped")
	}
	wantKind(t, Finish(s, t0), KindInvalid)
}

func TestApplyHostUpdateValidation(t *testing.T) {
	cfg := memoryConfig()
	s := newSession(models.StatusPlaying, "Ana")

	wantKind(t, ApplyHostUpdate(s, cfg, HostUpdate{}, t0), KindInvalid)
	wantKind(t, ApplyHostUpdate(s, cfg, HostUpdate{Phase: models.PhasePreview}, t0), KindInvalid)
	wantKind(t, ApplyHostUpdate(s, cfg, HostUpdate{Action: ActionSkipQuestion}, t0), KindInvalid)
	wantKind(t, ApplyHostUpdate(s, cfg, HostUpdate{Action: "REWIND"}, t0), KindInvalid)

	if err := ApplyHostUpdate(s, cfg, HostUpdate{Status: models.StatusFinished}, t0); err != nil {
		t.Fatalf("ApplyHostUpdate(FINISHED) error = %v", err)
	}
	if s.Status != models.StatusFinished {
		t.Errorf("status = %s, want FINISHED", s.Status)
	}
}

func TestApplyRequiresPlayingAndKnownPlayer(t *testing.T) {
	cfg := memoryConfig()

	waiting := newSession(models.StatusWaiting, "Ana")
	_, err := Apply(waiting, cfg, Action{Player: "Ana", Action: ActionMemoryFinish, Score: intPtr(3)}, t0)
	wantKind(t, err, KindInvalid)

	playing := newSession(models.StatusPlaying, "Ana")
	_, err = Apply(playing, cfg, Action{Player: "Zoe", Action: ActionMemoryFinish, Score: intPtr(3)}, t0)
	if err != ErrPlayerNotFound {
		t.Fatalf("error = %v, want ErrPlayerNotFound", err)
	}

	_, err = Apply(playing, cfg, Action{Player: "Ana", Action: ActionKahootAnswer}, t0)
	wantKind(t, err, KindInvalid)
}
