package repository

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"jugayaprende/internal/database"
	"jugayaprende/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createHost(t *testing.T, db *database.DB, username string) *models.User {
	t.Helper()
	user, err := NewUserRepository(db).CreateUser(username, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", username, err)
	}
	return user
}

func createHangmanConfig(t *testing.T, db *database.DB, creatorID int64) *models.GameConfig {
	t.Helper()
	cfg := &models.GameConfig{
		CreatorID: creatorID,
		Title:     "Animales",
		Type:      models.GameTypeHangman,
		Questions: &models.HangmanQuestions{Word: "gato", Hints: []string{"maulla"}},
	}
	if err := NewConfigRepository(db).CreateConfig(cfg); err != nil {
		t.Fatalf("CreateConfig() error = %v", err)
	}
	return cfg
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	user, err := repo.CreateUser("maestra", "hash")
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected ID to be set")
	}

	if _, err := repo.CreateUser("maestra", "other"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate CreateUser() error = %v, want ErrDuplicate", err)
	}

	got, err := repo.GetUserByUsername("maestra")
	if err != nil || got == nil {
		t.Fatalf("GetUserByUsername() = %v, %v", got, err)
	}
	if got.ID != user.ID || got.PasswordHash != "hash" {
		t.Errorf("GetUserByUsername() = %+v", got)
	}

	missing, err := repo.GetUserByID(9999)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for unknown user, got %+v", missing)
	}
}

func TestUserRepositoryOAuth(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)

	oauthUser, err := repo.CreateOAuthUser("profe", "google", "sub-1")
	if err != nil {
		t.Fatalf("CreateOAuthUser() error = %v", err)
	}

	got, err := repo.GetUserByOAuth("google", "sub-1")
	if err != nil || got == nil {
		t.Fatalf("GetUserByOAuth() = %v, %v", got, err)
	}
	if got.ID != oauthUser.ID || got.PasswordHash != "" {
		t.Errorf("GetUserByOAuth() = %+v", got)
	}

	local := createHost(t, db, "local")
	if err := repo.LinkOAuth(local.ID, "google", "sub-1"); !errors.Is(err, ErrDuplicate) {
		t.Errorf("LinkOAuth() to taken subject error = %v, want ErrDuplicate", err)
	}
	if err := repo.LinkOAuth(local.ID, "google", "sub-2"); err != nil {
		t.Fatalf("LinkOAuth() error = %v", err)
	}
	linked, _ := repo.GetUserByOAuth("google", "sub-2")
	if linked == nil || linked.ID != local.ID {
		t.Errorf("GetUserByOAuth() after link = %+v", linked)
	}

	// Password users carry NULL provider columns; the unique index must allow many of them.
	createHost(t, db, "another")

	all, err := repo.GetAllUsers()
	if err != nil {
		t.Fatalf("GetAllUsers() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("GetAllUsers() returned %d users, want 3", len(all))
	}
}

func TestImportUser(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	existing := createHost(t, db, "maestra")

	got, created, err := repo.ImportUser(models.User{Username: "maestra", PasswordHash: "other"})
	if err != nil {
		t.Fatalf("ImportUser() error = %v", err)
	}
	if created || got.ID != existing.ID {
		t.Errorf("ImportUser() existing = %+v created=%v", got, created)
	}

	stamp := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	got, created, err = repo.ImportUser(models.User{Username: "nuevo", PasswordHash: "h", CreatedAt: stamp, UpdatedAt: stamp})
	if err != nil {
		t.Fatalf("ImportUser() error = %v", err)
	}
	if !created || got.ID == 0 {
		t.Errorf("ImportUser() new = %+v created=%v", got, created)
	}
}

func TestConfigRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewConfigRepository(db)
	host := createHost(t, db, "maestra")
	other := createHost(t, db, "otra")

	cfg := createHangmanConfig(t, db, host.ID)
	if cfg.ID == 0 || cfg.CreatedAt.IsZero() {
		t.Fatalf("CreateConfig() did not fill ID/timestamps: %+v", cfg)
	}
	createHangmanConfig(t, db, other.ID)

	got, err := repo.GetConfigByID(cfg.ID)
	if err != nil || got == nil {
		t.Fatalf("GetConfigByID() = %v, %v", got, err)
	}
	hangman, ok := got.Questions.(*models.HangmanQuestions)
	if !ok {
		t.Fatalf("Questions type = %T, want *HangmanQuestions", got.Questions)
	}
	if hangman.Word != "gato" || len(hangman.Hints) != 1 {
		t.Errorf("decoded questions = %+v", hangman)
	}

	got.Title = "Mascotas"
	got.Type = models.GameTypeMemory
	got.Questions = &models.MemoryQuestions{Pairs: []models.MemoryPair{{Term: "dog", Match: "perro"}}}
	if err := repo.UpdateConfig(got); err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}
	updated, _ := repo.GetConfigByID(cfg.ID)
	if updated.Title != "Mascotas" || updated.Type != models.GameTypeMemory {
		t.Errorf("after update = %+v", updated)
	}
	if _, ok := updated.Questions.(*models.MemoryQuestions); !ok {
		t.Errorf("Questions type after update = %T", updated.Questions)
	}

	mine, err := repo.ListConfigsByCreator(host.ID)
	if err != nil {
		t.Fatalf("ListConfigsByCreator() error = %v", err)
	}
	if len(mine) != 1 || mine[0].ID != cfg.ID {
		t.Errorf("ListConfigsByCreator() = %+v", mine)
	}

	all, err := repo.ListAllConfigs()
	if err != nil || len(all) != 2 {
		t.Errorf("ListAllConfigs() = %d configs, err %v", len(all), err)
	}

	if err := repo.DeleteConfig(cfg.ID); err != nil {
		t.Fatalf("DeleteConfig() error = %v", err)
	}
	deleted, err := repo.GetConfigByID(cfg.ID)
	if err != nil || deleted != nil {
		t.Errorf("GetConfigByID() after delete = %v, %v", deleted, err)
	}
}

func newSession(code string, host *models.User, cfg *models.GameConfig) *models.GameSession {
	return &models.GameSession{
		Code:     code,
		ConfigID: cfg.ID,
		HostID:   host.ID,
		Status:   models.StatusWaiting,
	}
}

func TestSessionRepositoryCreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	host := createHost(t, db, "maestra")
	cfg := createHangmanConfig(t, db, host.ID)

	s := newSession("ABC234", host, cfg)
	if err := repo.CreateSession(s); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if s.ID == 0 || s.Version != 1 {
		t.Errorf("CreateSession() = id %d version %d", s.ID, s.Version)
	}

	if err := repo.CreateSession(newSession("ABC234", host, cfg)); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate code error = %v, want ErrDuplicate", err)
	}

	got, err := repo.GetSessionByCode("ABC234")
	if err != nil || got == nil {
		t.Fatalf("GetSessionByCode() = %v, %v", got, err)
	}
	if got.Status != models.StatusWaiting || got.Players == nil || len(got.Players) != 0 {
		t.Errorf("GetSessionByCode() = %+v", got)
	}
	if got.StartTime != nil || got.FinishedAt != nil {
		t.Errorf("expected nil times, got start=%v finished=%v", got.StartTime, got.FinishedAt)
	}

	missing, err := repo.GetSessionByCode("ZZZZZZ")
	if err != nil || missing != nil {
		t.Errorf("GetSessionByCode(unknown) = %v, %v", missing, err)
	}
}

func TestSessionRepositorySaveVersioning(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	host := createHost(t, db, "maestra")
	cfg := createHangmanConfig(t, db, host.ID)

	s := newSession("QWERTY", host, cfg)
	if err := repo.CreateSession(s); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	first, _ := repo.GetSessionByCode("QWERTY")
	second, _ := repo.GetSessionByCode("QWERTY")

	start := time.Now().UTC().Truncate(time.Second)
	first.Status = models.StatusPlaying
	first.StartTime = &start
	first.Players = append(first.Players, models.Player{
		Name:     "Ana",
		Progress: map[string]models.LetterStatus{"A": models.LetterCorrect},
		Score:    3,
	})
	if err := repo.SaveSession(first); err != nil {
		t.Fatalf("SaveSession() error = %v", err)
	}
	if first.Version != 2 {
		t.Errorf("Version after save = %d, want 2", first.Version)
	}

	second.Status = models.StatusFinished
	if err := repo.SaveSession(second); !errors.Is(err, ErrVersionConflict) {
		t.Errorf("stale SaveSession() error = %v, want ErrVersionConflict", err)
	}

	got, _ := repo.GetSessionByCode("QWERTY")
	if got.Status != models.StatusPlaying || got.Version != 2 {
		t.Errorf("stored session = status %s version %d", got.Status, got.Version)
	}
	if got.StartTime == nil || !got.StartTime.Equal(start) {
		t.Errorf("StartTime = %v, want %v", got.StartTime, start)
	}
	p := got.FindPlayer("Ana")
	if p == nil || p.Score != 3 || p.Progress["A"] != models.LetterCorrect {
		t.Errorf("stored player = %+v", p)
	}
}

func TestDeleteStaleSessions(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepository(db)
	host := createHost(t, db, "maestra")
	cfg := createHangmanConfig(t, db, host.ID)

	now := time.Now().UTC()
	longAgo := now.Add(-48 * time.Hour)
	recent := now.Add(-time.Minute)

	finishedOld := newSession("FINOLD", host, cfg)
	finishedNew := newSession("FINNEW", host, cfg)
	waiting := newSession("WAITNG", host, cfg)
	playing := newSession("PLAYNG", host, cfg)
	for _, s := range []*models.GameSession{finishedOld, finishedNew, waiting, playing} {
		if err := repo.CreateSession(s); err != nil {
			t.Fatalf("CreateSession(%s) error = %v", s.Code, err)
		}
	}

	finishedOld.Status = models.StatusFinished
	finishedOld.FinishedAt = &longAgo
	finishedNew.Status = models.StatusFinished
	finishedNew.FinishedAt = &recent
	playing.Status = models.StatusPlaying
	for _, s := range []*models.GameSession{finishedOld, finishedNew, playing} {
		if err := repo.SaveSession(s); err != nil {
			t.Fatalf("SaveSession(%s) error = %v", s.Code, err)
		}
	}

	// Only the old finished session is past the finished cutoff; the waiting
	// session was created just now so it survives a 24h waiting cutoff.
	deleted, err := repo.DeleteStaleSessions(now.Add(-time.Hour), now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteStaleSessions() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	// A waiting cutoff in the future sweeps the waiting session too.
	deleted, err = repo.DeleteStaleSessions(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteStaleSessions() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	for code, want := range map[string]bool{"FINOLD": false, "FINNEW": true, "WAITNG": false, "PLAYNG": true} {
		s, err := repo.GetSessionByCode(code)
		if err != nil {
			t.Fatalf("GetSessionByCode(%s) error = %v", code, err)
		}
		if (s != nil) != want {
			t.Errorf("session %s present = %v, want %v", code, s != nil, want)
		}
	}
}

func TestDeleteConfigCascadesSessions(t *testing.T) {
	db := setupTestDB(t)
	host := createHost(t, db, "maestra")
	cfg := createHangmanConfig(t, db, host.ID)
	sessions := NewSessionRepository(db)
	if err := sessions.CreateSession(newSession("CASCAD", host, cfg)); err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if err := NewConfigRepository(db).DeleteConfig(cfg.ID); err != nil {
		t.Fatalf("DeleteConfig() error = %v", err)
	}
	s, err := sessions.GetSessionByCode("CASCAD")
	if err != nil || s != nil {
		t.Errorf("session after config delete = %v, %v", s, err)
	}
}
