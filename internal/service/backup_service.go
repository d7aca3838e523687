package service

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"jugayaprende/internal/database"
	"jugayaprende/internal/models"
	"jugayaprende/internal/repository"
)

const backupVersion = "1.0"

// BackupData represents the complete backup structure. Live sessions are not
// part of it; they are short-lived and swept anyway.
type BackupData struct {
	Version      string         `json:"version"`
	ExportedAt   time.Time      `json:"exported_at"`
	DatabaseType string         `json:"database_type"`
	Users        []UserBackup   `json:"users"`
	Configs      []ConfigBackup `json:"configs"`
}

// UserBackup represents a user record for backup
type UserBackup struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"password_hash"`
	OAuthProvider string    `json:"oauth_provider"`
	OAuthSubject  string    `json:"oauth_subject"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ConfigBackup represents a question set for backup
type ConfigBackup struct {
	ID        int64           `json:"id"`
	CreatorID int64           `json:"creator_id"`
	Title     string          `json:"title"`
	Type      models.GameType `json:"type"`
	Questions json.RawMessage `json:"questions"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ImportStats counts what an import added and skipped
type ImportStats struct {
	UsersCreated   int
	UsersExisting  int
	ConfigsCreated int
	ConfigsSkipped int
}

// BackupService handles backup and restore of accounts and question sets
type BackupService struct {
	db           *database.DB
	userRepo     *repository.UserRepository
	configRepo   *repository.ConfigRepository
	databaseType string
	logger       *slog.Logger
}

// NewBackupService creates a new backup service
func NewBackupService(db *database.DB, databaseType string, logger *slog.Logger) *BackupService {
	return &BackupService{
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		configRepo:   repository.NewConfigRepository(db),
		databaseType: databaseType,
		logger:       logger,
	}
}

// Export writes a complete backup to a file
func (s *BackupService) Export(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	if err := s.ExportTo(file); err != nil {
		return err
	}
	s.logger.Info("backup exported", "path", outputPath)
	return nil
}

// ExportTo writes a complete backup as indented JSON
func (s *BackupService) ExportTo(w io.Writer) error {
	backup := &BackupData{
		Version:      backupVersion,
		ExportedAt:   time.Now().UTC(),
		DatabaseType: s.databaseType,
		Users:        []UserBackup{},
		Configs:      []ConfigBackup{},
	}

	users, err := s.userRepo.GetAllUsers()
	if err != nil {
		return fmt.Errorf("failed to export users: %w", err)
	}
	for _, u := range users {
		backup.Users = append(backup.Users, UserBackup{
			ID:            u.ID,
			Username:      u.Username,
			PasswordHash:  u.PasswordHash,
			OAuthProvider: u.OAuthProvider,
			OAuthSubject:  u.OAuthSubject,
			CreatedAt:     u.CreatedAt,
			UpdatedAt:     u.UpdatedAt,
		})
	}

	configs, err := s.configRepo.ListAllConfigs()
	if err != nil {
		return fmt.Errorf("failed to export configs: %w", err)
	}
	for _, c := range configs {
		payload, err := json.Marshal(c.Questions)
		if err != nil {
			return fmt.Errorf("failed to encode config %d: %w", c.ID, err)
		}
		backup.Configs = append(backup.Configs, ConfigBackup{
			ID:        c.ID,
			CreatorID: c.CreatorID,
			Title:     c.Title,
			Type:      c.Type,
			Questions: payload,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return fmt.Errorf("failed to encode backup: %w", err)
	}

	s.logger.Info("backup written", "users", len(backup.Users), "configs", len(backup.Configs))
	return nil
}

// Import restores a backup file
func (s *BackupService) Import(inputPath string) (ImportStats, error) {
	file, err := os.Open(inputPath)
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.ImportFrom(file)
}

// ImportFrom restores a backup in a single transaction: either every record
// lands or none does. Users are matched by username; a config is skipped when
// its creator already owns one with the same title and type.
func (s *BackupService) ImportFrom(r io.Reader) (ImportStats, error) {
	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return ImportStats{}, fmt.Errorf("failed to decode backup: %w", err)
	}
	s.logger.Info("importing backup", "version", backup.Version, "exported_at", backup.ExportedAt)

	tx, err := s.db.Begin()
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to begin import: %w", err)
	}
	defer tx.Rollback()

	stats, err := s.importRecords(backup, s.userRepo.WithTx(tx), s.configRepo.WithTx(tx))
	if err != nil {
		return ImportStats{}, err
	}
	if err := tx.Commit(); err != nil {
		return ImportStats{}, fmt.Errorf("failed to commit import: %w", err)
	}

	s.logger.Info("backup imported",
		"users_created", stats.UsersCreated,
		"users_existing", stats.UsersExisting,
		"configs_created", stats.ConfigsCreated,
		"configs_skipped", stats.ConfigsSkipped,
	)
	return stats, nil
}

func (s *BackupService) importRecords(backup BackupData, users *repository.UserRepository, configs *repository.ConfigRepository) (ImportStats, error) {
	var stats ImportStats

	// old id -> id in this database
	userIDs := make(map[int64]int64, len(backup.Users))
	for _, u := range backup.Users {
		imported, created, err := users.ImportUser(models.User{
			Username:      u.Username,
			PasswordHash:  u.PasswordHash,
			OAuthProvider: u.OAuthProvider,
			OAuthSubject:  u.OAuthSubject,
			CreatedAt:     u.CreatedAt,
			UpdatedAt:     u.UpdatedAt,
		})
		if err != nil {
			return stats, fmt.Errorf("failed to import users: %w", err)
		}
		userIDs[u.ID] = imported.ID
		if created {
			stats.UsersCreated++
		} else {
			stats.UsersExisting++
		}
	}

	owned := map[int64][]models.GameConfig{}
	for _, c := range backup.Configs {
		creatorID, ok := userIDs[c.CreatorID]
		if !ok {
			s.logger.Warn("skipping config with unknown creator", "config_id", c.ID, "creator_id", c.CreatorID)
			stats.ConfigsSkipped++
			continue
		}

		if _, loaded := owned[creatorID]; !loaded {
			existing, err := configs.ListConfigsByCreator(creatorID)
			if err != nil {
				return stats, fmt.Errorf("failed to import configs: %w", err)
			}
			owned[creatorID] = existing
		}
		if hasConfig(owned[creatorID], c.Title, c.Type) {
			stats.ConfigsSkipped++
			continue
		}

		questions, err := models.DecodeQuestions(c.Type, c.Questions)
		if err != nil {
			s.logger.Warn("skipping unreadable config", "config_id", c.ID, "error", err)
			stats.ConfigsSkipped++
			continue
		}
		cfg := &models.GameConfig{
			CreatorID: creatorID,
			Title:     c.Title,
			Type:      c.Type,
			Questions: questions,
			CreatedAt: c.CreatedAt,
		}
		if err := configs.CreateConfig(cfg); err != nil {
			return stats, fmt.Errorf("failed to import configs: %w", err)
		}
		owned[creatorID] = append(owned[creatorID], *cfg)
		stats.ConfigsCreated++
	}
	return stats, nil
}

func hasConfig(configs []models.GameConfig, title string, gameType models.GameType) bool {
	for _, c := range configs {
		if c.Title == title && c.Type == gameType {
			return true
		}
	}
	return false
}
