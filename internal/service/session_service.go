package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jugayaprende/internal/credentials"
	"jugayaprende/internal/game"
	"jugayaprende/internal/lock"
	"jugayaprende/internal/metrics"
	"jugayaprende/internal/models"
	"jugayaprende/internal/repository"
	"jugayaprende/internal/validation"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrCodeExhausted   = errors.New("could not allocate a free join code")
)

const (
	maxCodeAttempts = 10
	maxSaveAttempts = 3
	defaultLockWait = 5 * time.Second
)

// SessionView is what clients poll: the session and the config it plays
type SessionView struct {
	Session *models.GameSession `json:"session"`
	Config  models.GameConfig   `json:"config"`
}

// JoinView is returned to a joining player
type JoinView struct {
	Player models.Player `json:"player"`
	SessionView
}

// SessionOptions tunes the stale session sweep and lock waits
type SessionOptions struct {
	StaleFinishedAfter time.Duration
	StaleWaitingAfter  time.Duration
	// LockWait bounds how long a mutation waits for the session lock
	LockWait time.Duration
}

// SessionService runs live game sessions. Every mutation is serialized per
// session through the locker and saved with an optimistic version check.
type SessionService struct {
	sessionRepo *repository.SessionRepository
	configRepo  *repository.ConfigRepository
	locker      lock.Locker
	metrics     *metrics.Metrics
	logger      *slog.Logger
	opts        SessionOptions

	now     func() time.Time
	newCode func() (string, error)
}

// NewSessionService creates a new session service
func NewSessionService(
	sessionRepo *repository.SessionRepository,
	configRepo *repository.ConfigRepository,
	locker lock.Locker,
	m *metrics.Metrics,
	logger *slog.Logger,
	opts SessionOptions,
) *SessionService {
	if opts.StaleFinishedAfter <= 0 {
		opts.StaleFinishedAfter = time.Hour
	}
	if opts.StaleWaitingAfter <= 0 {
		opts.StaleWaitingAfter = 24 * time.Hour
	}
	if opts.LockWait <= 0 {
		opts.LockWait = defaultLockWait
	}
	return &SessionService{
		sessionRepo: sessionRepo,
		configRepo:  configRepo,
		locker:      locker,
		metrics:     m,
		logger:      logger,
		opts:        opts,
		now:         func() time.Time { return time.Now().UTC() },
		newCode:     credentials.GenerateJoinCode,
	}
}

// CreateSession opens a WAITING session of a config owned by hostID
func (s *SessionService) CreateSession(ctx context.Context, hostID, configID int64) (*SessionView, error) {
	cfg, err := s.configRepo.GetConfigByID(configID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrConfigNotFound
	}
	if cfg.CreatorID != hostID {
		return nil, ErrNotOwner
	}

	if _, err := s.PurgeStale(ctx); err != nil {
		s.logger.Warn("stale session purge failed", "error", err)
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate join code: %w", err)
		}
		session := &models.GameSession{
			Code:     code,
			ConfigID: cfg.ID,
			HostID:   hostID,
			Status:   models.StatusWaiting,
			SessionState: models.SessionState{
				Players: []models.Player{},
			},
		}
		err = s.sessionRepo.CreateSession(session)
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Debug("join code collision", "code", code, "attempt", attempt+1)
			continue
		}
		if err != nil {
			return nil, err
		}
		s.metrics.SessionsCreated.Inc()
		s.logger.Info("session created", "code", code, "config_id", cfg.ID, "type", cfg.Type, "host_id", hostID)
		return &SessionView{Session: session, Config: *cfg}, nil
	}
	return nil, ErrCodeExhausted
}

// Join adds a player to a session, or returns the existing player with that name
func (s *SessionService) Join(ctx context.Context, code, name string) (*JoinView, error) {
	name, err := validation.NormalizePlayerName(name)
	if err != nil {
		return nil, err
	}

	var (
		player models.Player
		added  bool
	)
	session, cfg, err := s.mutate(ctx, code, func(sess *models.GameSession, cfg *models.GameConfig, now time.Time) (bool, error) {
		p, isNew, err := game.Join(sess, name, now)
		if err != nil {
			return false, err
		}
		player, added = *p, isNew
		return isNew, nil
	})
	if err != nil {
		return nil, err
	}
	if added {
		s.metrics.PlayersJoined.Inc()
		s.logger.Info("player joined", "code", session.Code, "player", name)
	}
	return &JoinView{Player: player, SessionView: s.view(session, cfg, 0)}, nil
}

// StartSession moves a session owned by hostID from WAITING to PLAYING
func (s *SessionService) StartSession(ctx context.Context, code string, hostID int64) (*SessionView, error) {
	return s.hostMutate(ctx, code, hostID, "start", func(sess *models.GameSession, cfg *models.GameConfig, now time.Time) error {
		return game.Start(sess, cfg, now)
	})
}

// UpdateSession applies a host update (status, kahoot phase or host action)
func (s *SessionService) UpdateSession(ctx context.Context, code string, hostID int64, update game.HostUpdate) (*SessionView, error) {
	return s.hostMutate(ctx, code, hostID, hostUpdateLabel(update), func(sess *models.GameSession, cfg *models.GameConfig, now time.Time) error {
		return game.ApplyHostUpdate(sess, cfg, update, now)
	})
}

// FinishSession ends a session owned by hostID
func (s *SessionService) FinishSession(ctx context.Context, code string, hostID int64) (*SessionView, error) {
	return s.hostMutate(ctx, code, hostID, "finish", func(sess *models.GameSession, _ *models.GameConfig, now time.Time) error {
		return game.Finish(sess, now)
	})
}

func (s *SessionService) hostMutate(ctx context.Context, code string, hostID int64, label string, fn func(*models.GameSession, *models.GameConfig, time.Time) error) (*SessionView, error) {
	var gameType models.GameType
	session, cfg, err := s.mutate(ctx, code, func(sess *models.GameSession, cfg *models.GameConfig, now time.Time) (bool, error) {
		gameType = cfg.Type
		if sess.HostID != hostID {
			return false, ErrNotOwner
		}
		if err := fn(sess, cfg, now); err != nil {
			return false, err
		}
		return true, nil
	})
	if gameType != "" {
		s.metrics.ObserveAction(string(gameType), label, resultLabel(err))
	}
	if err != nil {
		return nil, err
	}
	return &SessionView{Session: session, Config: *cfg}, nil
}

// Answer applies a player action
func (s *SessionService) Answer(ctx context.Context, code string, action game.Action) (game.Result, error) {
	var (
		result   game.Result
		gameType models.GameType
	)
	_, _, err := s.mutate(ctx, code, func(sess *models.GameSession, cfg *models.GameConfig, now time.Time) (bool, error) {
		gameType = cfg.Type
		res, err := game.Apply(sess, cfg, action, now)
		if err != nil {
			return false, err
		}
		result = res
		return true, nil
	})
	if gameType != "" {
		s.metrics.ObserveAction(string(gameType), actionLabel(action.Action), resultLabel(err))
	}
	return result, err
}

// GetSession returns the current view of a session. Expired deadlines are
// settled and persisted first. Answers are redacted unless viewerID is the host.
func (s *SessionService) GetSession(ctx context.Context, code string, viewerID int64) (*SessionView, error) {
	session, cfg, err := s.load(code)
	if err != nil {
		return nil, err
	}

	settled := session.Clone()
	if game.Tick(settled, cfg, s.now()) {
		session, cfg, err = s.mutate(ctx, code, func(*models.GameSession, *models.GameConfig, time.Time) (bool, error) {
			return false, nil
		})
		if err != nil {
			return nil, err
		}
	}

	view := s.view(session, cfg, viewerID)
	return &view, nil
}

// PurgeStale deletes finished and abandoned sessions
func (s *SessionService) PurgeStale(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	now := s.now()
	deleted, err := s.sessionRepo.DeleteStaleSessions(now.Add(-s.opts.StaleFinishedAfter), now.Add(-s.opts.StaleWaitingAfter))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.metrics.StaleSessionsDeleted.Add(float64(deleted))
		s.logger.Info("stale sessions deleted", "count", deleted)
	}
	return deleted, nil
}

func (s *SessionService) view(session *models.GameSession, cfg *models.GameConfig, viewerID int64) SessionView {
	if viewerID != 0 && viewerID == session.HostID {
		return SessionView{Session: session, Config: *cfg}
	}
	return SessionView{Session: session, Config: cfg.Redacted()}
}

func (s *SessionService) load(code string) (*models.GameSession, *models.GameConfig, error) {
	code = normalizeCode(code)
	if !credentials.IsJoinCode(code) {
		return nil, nil, ErrSessionNotFound
	}
	session, err := s.sessionRepo.GetSessionByCode(code)
	if err != nil {
		return nil, nil, err
	}
	if session == nil {
		return nil, nil, ErrSessionNotFound
	}
	cfg, err := s.configRepo.GetConfigByID(session.ConfigID)
	if err != nil {
		return nil, nil, err
	}
	if cfg == nil {
		return nil, nil, ErrSessionNotFound
	}
	return session, cfg, nil
}

// mutate loads the session under its lock, settles deadlines, runs fn and
// saves when anything changed. A version conflict reruns the whole cycle.
// Settled deadlines are saved even when fn rejects the request.
func (s *SessionService) mutate(
	ctx context.Context,
	code string,
	fn func(*models.GameSession, *models.GameConfig, time.Time) (bool, error),
) (*models.GameSession, *models.GameConfig, error) {
	var (
		session *models.GameSession
		cfg     *models.GameConfig
	)
	lockCtx, cancel := context.WithTimeout(ctx, s.opts.LockWait)
	defer cancel()

	err := s.locker.WithLock(lockCtx, "session:"+normalizeCode(code), func(ctx context.Context) error {
		for attempt := 1; ; attempt++ {
			var err error
			session, cfg, err = s.load(code)
			if err != nil {
				return err
			}

			now := s.now()
			ticked := game.Tick(session, cfg, now)
			changed, fnErr := fn(session, cfg, now)
			if fnErr != nil && !ticked {
				return fnErr
			}

			if changed || ticked {
				err = s.sessionRepo.SaveSession(session)
				if errors.Is(err, repository.ErrVersionConflict) && attempt < maxSaveAttempts {
					s.metrics.VersionConflicts.Inc()
					s.logger.Debug("session version conflict, retrying", "code", session.Code, "attempt", attempt)
					continue
				}
				if err != nil {
					return err
				}
			}
			return fnErr
		}
	})
	if err != nil {
		return nil, nil, err
	}
	return session, cfg, nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// unknownLabel buckets client-supplied names that are not known actions,
// keeping metric label values bounded and valid UTF-8
const unknownLabel = "unknown"

func actionLabel(action string) string {
	if action == "" || game.KnownAction(action) {
		return action
	}
	return unknownLabel
}

func hostUpdateLabel(update game.HostUpdate) string {
	switch {
	case update.Action != "":
		return actionLabel(update.Action)
	case update.Phase != "":
		if !update.Phase.Valid() {
			return "phase_" + unknownLabel
		}
		return "phase_" + string(update.Phase)
	case update.Status.Valid():
		return "status_" + string(update.Status)
	default:
		return "status_" + unknownLabel
	}
}

func resultLabel(err error) string {
	if err == nil {
		return "ok"
	}
	var actionErr *game.ActionError
	if errors.As(err, &actionErr) || errors.Is(err, ErrNotOwner) {
		return "rejected"
	}
	return "error"
}
