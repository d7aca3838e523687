package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"jugayaprende/internal/database"
	"jugayaprende/internal/lock"
	"jugayaprende/internal/logging"
	"jugayaprende/internal/metrics"
	"jugayaprende/internal/models"
	"jugayaprende/internal/repository"
	"jugayaprende/internal/security"
)

var ctx = context.Background()

type testEnv struct {
	db       *database.DB
	users    *repository.UserRepository
	configs  *repository.ConfigRepository
	sessions *repository.SessionRepository
	metrics  *metrics.Metrics
	auth     *AuthService
	config   *ConfigService
	session  *SessionService
	clock    *testClock
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	env := &testEnv{
		db:       db,
		users:    repository.NewUserRepository(db),
		configs:  repository.NewConfigRepository(db),
		sessions: repository.NewSessionRepository(db),
		metrics:  metrics.New(),
		clock:    &testClock{now: time.Now().UTC().Truncate(time.Second)},
	}
	env.auth = NewAuthService(env.users, security.NewTokenManager("test-secret", time.Hour), security.NewCSRFGenerator("test-secret"))
	env.config = NewConfigService(env.configs)
	env.session = NewSessionService(env.sessions, env.configs, lock.NewLocalLocker(), env.metrics, logging.Discard(), SessionOptions{})
	env.session.now = env.clock.Now
	return env
}

func (e *testEnv) createHost(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := e.users.CreateUser(username, "hash")
	if err != nil {
		t.Fatalf("CreateUser(%s) error = %v", username, err)
	}
	return user
}

func (e *testEnv) createConfig(t *testing.T, hostID int64, gameType models.GameType, questions interface{}) *models.GameConfig {
	t.Helper()
	raw, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal questions: %v", err)
	}
	cfg, err := e.config.CreateConfig(hostID, ConfigInput{Title: "Test " + string(gameType), Type: gameType, Questions: raw})
	if err != nil {
		t.Fatalf("CreateConfig(%s) error = %v", gameType, err)
	}
	return cfg
}

// openSession creates a session of cfg and joins the given players
func (e *testEnv) openSession(t *testing.T, hostID int64, cfg *models.GameConfig, players ...string) string {
	t.Helper()
	view, err := e.session.CreateSession(ctx, hostID, cfg.ID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	for _, name := range players {
		if _, err := e.session.Join(ctx, view.Session.Code, name); err != nil {
			t.Fatalf("Join(%s) error = %v", name, err)
		}
	}
	return view.Session.Code
}

func intPtr(i int) *int {
	return &i
}
