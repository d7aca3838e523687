package service

import (
	"errors"
	"testing"

	"jugayaprende/internal/models"
	"jugayaprende/internal/validation"
)

func TestConfigServiceCreateValidation(t *testing.T) {
	env := setupTestEnv(t)
	host := env.createHost(t, "maestra")

	tests := []struct {
		name    string
		input   ConfigInput
		wantErr error
	}{
		{
			name:  "valid rosco",
			input: ConfigInput{Title: " Abecedario ", Type: models.GameTypeRosco, Questions: []byte(`[{"letter":"a","question":"Fruta roja","answer":"manzana"}]`)},
		},
		{
			name:    "unknown type",
			input:   ConfigInput{Title: "X", Type: "BINGO", Questions: []byte(`{}`)},
			wantErr: models.ErrUnknownGameType,
		},
		{
			name:    "repeated rosco letter",
			input:   ConfigInput{Title: "X", Type: models.GameTypeRosco, Questions: []byte(`[{"letter":"A","question":"q","answer":"a"},{"letter":"a","question":"q","answer":"a"}]`)},
			wantErr: models.ErrInvalidQuestions,
		},
		{
			name:    "kahoot index out of range",
			input:   ConfigInput{Title: "X", Type: models.GameTypeKahoot, Questions: []byte(`{"questions":[{"question":"q","options":["a","b"],"correctIndex":2}]}`)},
			wantErr: models.ErrInvalidQuestions,
		},
		{
			name:    "missing payload",
			input:   ConfigInput{Title: "X", Type: models.GameTypeHangman},
			wantErr: models.ErrInvalidQuestions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := env.config.CreateConfig(host.ID, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateConfig() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateConfig() error = %v", err)
			}
			if cfg.ID == 0 || cfg.Title != "Abecedario" {
				t.Errorf("CreateConfig() = %+v", cfg)
			}
		})
	}

	var vErr validation.ValidationError
	_, err := env.config.CreateConfig(host.ID, ConfigInput{Title: "  ", Type: models.GameTypeHangman, Questions: []byte(`{"word":"gato"}`)})
	if !errors.As(err, &vErr) {
		t.Errorf("blank title error = %v, want ValidationError", err)
	}
}

func TestConfigServiceOwnership(t *testing.T) {
	env := setupTestEnv(t)
	owner := env.createHost(t, "maestra")
	other := env.createHost(t, "otra")
	cfg := env.createConfig(t, owner.ID, models.GameTypeHangman, models.HangmanQuestions{Word: "gato"})

	if _, err := env.config.GetConfig(cfg.ID, other.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("GetConfig() by other error = %v, want ErrNotOwner", err)
	}
	if _, err := env.config.GetConfig(9999, owner.ID); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("GetConfig() unknown error = %v, want ErrConfigNotFound", err)
	}
	if err := env.config.DeleteConfig(cfg.ID, other.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("DeleteConfig() by other error = %v, want ErrNotOwner", err)
	}

	update := ConfigInput{Title: "Perro", Type: models.GameTypeHangman, Questions: []byte(`{"word":"perro","hints":["ladra"]}`)}
	if _, err := env.config.UpdateConfig(cfg.ID, other.ID, update); !errors.Is(err, ErrNotOwner) {
		t.Errorf("UpdateConfig() by other error = %v, want ErrNotOwner", err)
	}
	updated, err := env.config.UpdateConfig(cfg.ID, owner.ID, update)
	if err != nil {
		t.Fatalf("UpdateConfig() error = %v", err)
	}
	if updated.ID != cfg.ID || updated.Questions.(*models.HangmanQuestions).Word != "perro" {
		t.Errorf("UpdateConfig() = %+v", updated)
	}

	list, err := env.config.ListConfigs(owner.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListConfigs() = %d, %v", len(list), err)
	}
	if others, _ := env.config.ListConfigs(other.ID); len(others) != 0 {
		t.Errorf("ListConfigs(other) = %d configs, want 0", len(others))
	}

	if err := env.config.DeleteConfig(cfg.ID, owner.ID); err != nil {
		t.Fatalf("DeleteConfig() error = %v", err)
	}
	if _, err := env.config.GetConfig(cfg.ID, owner.ID); !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("GetConfig() after delete error = %v, want ErrConfigNotFound", err)
	}
}
