package service

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"jugayaprende/internal/models"
	"jugayaprende/internal/repository"
	"jugayaprende/internal/validation"
)

var (
	ErrConfigNotFound = errors.New("game config not found")
	ErrNotOwner       = errors.New("not the owner")
)

// ConfigInput is an authored question set as submitted by a host
type ConfigInput struct {
	Title     string          `json:"title"`
	Type      models.GameType `json:"type"`
	Questions json.RawMessage `json:"questions"`
}

// ConfigService handles question set authoring
type ConfigService struct {
	configRepo *repository.ConfigRepository
}

// NewConfigService creates a new config service
func NewConfigService(configRepo *repository.ConfigRepository) *ConfigService {
	return &ConfigService{configRepo: configRepo}
}

// decode validates input and turns it into a config owned by creatorID
func (s *ConfigService) decode(creatorID int64, input ConfigInput) (*models.GameConfig, error) {
	title := strings.TrimSpace(input.Title)
	if err := validation.ValidateTitle(title); err != nil {
		return nil, err
	}
	questions, err := models.DecodeQuestions(input.Type, input.Questions)
	if err != nil {
		return nil, err
	}
	if err := questions.Validate(); err != nil {
		return nil, err
	}
	return &models.GameConfig{
		CreatorID: creatorID,
		Title:     title,
		Type:      input.Type,
		Questions: questions,
	}, nil
}

// CreateConfig stores a new question set for creatorID
func (s *ConfigService) CreateConfig(creatorID int64, input ConfigInput) (*models.GameConfig, error) {
	cfg, err := s.decode(creatorID, input)
	if err != nil {
		return nil, err
	}
	if err := s.configRepo.CreateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetConfig returns a config owned by userID
func (s *ConfigService) GetConfig(id, userID int64) (*models.GameConfig, error) {
	cfg, err := s.configRepo.GetConfigByID(id)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, ErrConfigNotFound
	}
	if cfg.CreatorID != userID {
		return nil, ErrNotOwner
	}
	return cfg, nil
}

// ListConfigs returns the configs created by userID
func (s *ConfigService) ListConfigs(userID int64) ([]models.GameConfig, error) {
	return s.configRepo.ListConfigsByCreator(userID)
}

// UpdateConfig replaces the title and payload of a config owned by userID
func (s *ConfigService) UpdateConfig(id, userID int64, input ConfigInput) (*models.GameConfig, error) {
	existing, err := s.GetConfig(id, userID)
	if err != nil {
		return nil, err
	}
	cfg, err := s.decode(userID, input)
	if err != nil {
		return nil, err
	}
	cfg.ID = existing.ID
	cfg.CreatedAt = existing.CreatedAt
	if err := s.configRepo.UpdateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DeleteConfig removes a config owned by userID together with its sessions
func (s *ConfigService) DeleteConfig(id, userID int64) error {
	if _, err := s.GetConfig(id, userID); err != nil {
		return err
	}
	if err := s.configRepo.DeleteConfig(id); err != nil {
		return fmt.Errorf("failed to delete config %d: %w", id, err)
	}
	return nil
}
