package repository

import (
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"jugayaprende/internal/database"
	"jugayaprende/internal/models"
)

// SessionRepository stores live game sessions. Players and per-type state
// are kept as one JSON document next to the indexed columns.
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, code, config_id, host_id, status, version, state, start_time, finished_at, created_at, updated_at`

// CreateSession inserts s with version 1. Returns ErrDuplicate when the code is taken.
func (r *SessionRepository) CreateSession(s *models.GameSession) error {
	state, err := encodeState(s)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	s.Version = 1
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO game_sessions (code, config_id, host_id, status, version, state, start_time, finished_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		s.Code, s.ConfigID, s.HostID, string(s.Status), s.Version, state,
		utcPtr(s.StartTime), utcPtr(s.FinishedAt), s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		if r.db.Dialect.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create game session: %w", err)
	}
	s.ID = id
	return nil
}

// GetSessionByCode retrieves a session; nil when no session has that code
func (r *SessionRepository) GetSessionByCode(code string) (*models.GameSession, error) {
	var (
		s          models.GameSession
		status     string
		state      []byte
		startTime  sql.NullTime
		finishedAt sql.NullTime
	)
	err := r.db.QueryRow(`SELECT `+sessionColumns+` FROM game_sessions WHERE code = ?`, code).Scan(
		&s.ID, &s.Code, &s.ConfigID, &s.HostID, &status, &s.Version, &state,
		&startTime, &finishedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game session: %w", err)
	}

	s.Status = models.SessionStatus(status)
	if startTime.Valid {
		t := startTime.Time
		s.StartTime = &t
	}
	if finishedAt.Valid {
		t := finishedAt.Time
		s.FinishedAt = &t
	}
	if err := json.Unmarshal(state, &s.SessionState); err != nil {
		return nil, fmt.Errorf("failed to decode state of session %s: %w", code, err)
	}
	if s.Players == nil {
		s.Players = []models.Player{}
	}
	return &s, nil
}

// SaveSession writes s if nobody else saved it since it was loaded, then bumps
// s.Version. Returns ErrVersionConflict otherwise.
func (r *SessionRepository) SaveSession(s *models.GameSession) error {
	state, err := encodeState(s)
	if err != nil {
		return err
	}
	now := time.Now().UTC()

	query := `
		UPDATE game_sessions
		SET status = ?, state = ?, start_time = ?, finished_at = ?, updated_at = ?, version = version + 1
		WHERE id = ? AND version = ?
	`
	result, err := r.db.Exec(query, string(s.Status), state, utcPtr(s.StartTime), utcPtr(s.FinishedAt), now, s.ID, s.Version)
	if err != nil {
		return fmt.Errorf("failed to save game session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save game session: %w", err)
	}
	if affected == 0 {
		return ErrVersionConflict
	}
	s.Version++
	s.UpdatedAt = now
	return nil
}

// DeleteStaleSessions removes sessions finished before finishedBefore and
// sessions still waiting since before waitingBefore
func (r *SessionRepository) DeleteStaleSessions(finishedBefore, waitingBefore time.Time) (int64, error) {
	query := `
		DELETE FROM game_sessions
		WHERE (status = ? AND COALESCE(finished_at, updated_at) < ?)
		   OR (status = ? AND created_at < ?)
	`
	result, err := r.db.Exec(query,
		string(models.StatusFinished), finishedBefore.UTC(),
		string(models.StatusWaiting), waitingBefore.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale sessions: %w", err)
	}
	return result.RowsAffected()
}

func encodeState(s *models.GameSession) (string, error) {
	if s.Players == nil {
		s.Players = []models.Player{}
	}
	data, err := json.Marshal(s.SessionState)
	if err != nil {
		return "", fmt.Errorf("failed to encode session state: %w", err)
	}
	return string(data), nil
}

func utcPtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}
