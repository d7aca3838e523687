package repository

import (
	"database/sql"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"jugayaprende/internal/database"
	"jugayaprende/internal/models"
)

// ConfigRepository stores authored question sets
type ConfigRepository struct {
	db database.DBTX
}

// NewConfigRepository creates a new config repository
func NewConfigRepository(db database.DBTX) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// WithTx returns a repository running its queries inside tx
func (r *ConfigRepository) WithTx(tx database.DBTX) *ConfigRepository {
	return &ConfigRepository{db: tx}
}

const configColumns = `id, creator_id, title, type, questions, created_at, updated_at`

// CreateConfig inserts cfg and fills in its ID and timestamps
func (r *ConfigRepository) CreateConfig(cfg *models.GameConfig) error {
	payload, err := json.Marshal(cfg.Questions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}

	now := time.Now().UTC()
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}
	cfg.UpdatedAt = now

	query := `
		INSERT INTO game_configs (creator_id, title, type, questions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, cfg.CreatorID, cfg.Title, string(cfg.Type), string(payload), cfg.CreatedAt.UTC(), cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create game config: %w", err)
	}
	cfg.ID = id
	return nil
}

// GetConfigByID retrieves a config; nil when it does not exist
func (r *ConfigRepository) GetConfigByID(id int64) (*models.GameConfig, error) {
	cfg, err := scanConfig(r.db.QueryRow(`SELECT `+configColumns+` FROM game_configs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game config: %w", err)
	}
	return cfg, nil
}

// ListConfigsByCreator returns a host's configs, newest first
func (r *ConfigRepository) ListConfigsByCreator(creatorID int64) ([]models.GameConfig, error) {
	return r.list(`SELECT `+configColumns+` FROM game_configs WHERE creator_id = ? ORDER BY updated_at DESC, id DESC`, creatorID)
}

// ListAllConfigs returns every config, for backups
func (r *ConfigRepository) ListAllConfigs() ([]models.GameConfig, error) {
	return r.list(`SELECT ` + configColumns + ` FROM game_configs ORDER BY id`)
}

func (r *ConfigRepository) list(query string, args ...interface{}) ([]models.GameConfig, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query game configs: %w", err)
	}
	defer rows.Close()

	configs := []models.GameConfig{}
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game config: %w", err)
		}
		configs = append(configs, *cfg)
	}
	return configs, rows.Err()
}

func scanConfig(row rowScanner) (*models.GameConfig, error) {
	var (
		cfg      models.GameConfig
		gameType string
		payload  []byte
	)
	if err := row.Scan(&cfg.ID, &cfg.CreatorID, &cfg.Title, &gameType, &payload, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return nil, err
	}
	cfg.Type = models.GameType(gameType)
	questions, err := models.DecodeQuestions(cfg.Type, payload)
	if err != nil {
		return nil, fmt.Errorf("config %d: %w", cfg.ID, err)
	}
	cfg.Questions = questions
	return &cfg, nil
}

// UpdateConfig saves title, type and questions
func (r *ConfigRepository) UpdateConfig(cfg *models.GameConfig) error {
	payload, err := json.Marshal(cfg.Questions)
	if err != nil {
		return fmt.Errorf("failed to encode questions: %w", err)
	}
	cfg.UpdatedAt = time.Now().UTC()

	query := `UPDATE game_configs SET title = ?, type = ?, questions = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.Exec(query, cfg.Title, string(cfg.Type), string(payload), cfg.UpdatedAt, cfg.ID); err != nil {
		return fmt.Errorf("failed to update game config: %w", err)
	}
	return nil
}

// DeleteConfig removes a config; its sessions go with it
func (r *ConfigRepository) DeleteConfig(id int64) error {
	if _, err := r.db.Exec(`DELETE FROM game_configs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete game config: %w", err)
	}
	return nil
}
