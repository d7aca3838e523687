package validation

import (
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{
			name:     "valid username",
			username: "profe.ana",
			wantErr:  false,
		},
		{
			name:     "with digits and dash",
			username: "aula-3b_2024",
			wantErr:  false,
		},
		{
			name:     "too short",
			username: "ab",
			wantErr:  true,
		},
		{
			name:     "too long",
			username: strings.Repeat("a", 33),
			wantErr:  true,
		},
		{
			name:     "spaces",
			username: "profe ana",
			wantErr:  true,
		},
		{
			name:     "accented letters",
			username: "profesoría",
			wantErr:  true,
		},
		{
			name:     "empty",
			username: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateUsername(%q) error = %v, wantErr %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "exactly 8 characters",
			password: "12345678",
			wantErr:  false,
		},
		{
			name:     "too short",
			password: "1234567",
			wantErr:  true,
		},
		{
			name:     "too long for bcrypt",
			password: strings.Repeat("x", 73),
			wantErr:  true,
		},
		{
			name:     "empty",
			password: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNormalizePlayerName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "trims spaces",
			input: "  Lucía ",
			want:  "Lucía",
		},
		{
			name:  "thirty runes",
			input: strings.Repeat("ñ", 30),
			want:  strings.Repeat("ñ", 30),
		},
		{
			name:    "too long",
			input:   strings.Repeat("a", 31),
			wantErr: true,
		},
		{
			name:    "only spaces",
			input:   "   ",
			wantErr: true,
		},
		{
			name:    "control character",
			input:   "Ana\x00",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePlayerName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizePlayerName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizePlayerName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateTitle(t *testing.T) {
	if err := ValidateTitle("Animales de la granja"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTitle(" "); err == nil {
		t.Error("expected error for blank title")
	}
	if err := ValidateTitle(strings.Repeat("t", 121)); err == nil {
		t.Error("expected error for long title")
	}
}
