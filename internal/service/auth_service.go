package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"jugayaprende/internal/models"
	"jugayaprende/internal/repository"
	"jugayaprende/internal/security"
	"jugayaprende/internal/validation"
)

var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("not signed in")
)

// maxOAuthUsernameAttempts bounds the suffixes tried when deriving a username for a new OAuth user
const maxOAuthUsernameAttempts = 20

// AuthSession is a signed-in host together with the credentials handed to the client
type AuthSession struct {
	User      *models.User
	Token     string
	Claims    security.TokenClaims
	CSRFToken string
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo *repository.UserRepository
	tokens   *security.TokenManager
	csrf     *security.CSRFGenerator
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenManager, csrf *security.CSRFGenerator) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		csrf:     csrf,
	}
}

// Register creates a host account and signs it in
func (s *AuthService) Register(username, password string) (*AuthSession, error) {
	username = strings.TrimSpace(username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(username, passwordHash)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.issue(user)
}

// Login authenticates a host by username and password
func (s *AuthService) Login(username, password string) (*AuthSession, error) {
	user, err := s.userRepo.GetUserByUsername(strings.TrimSpace(username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	// OAuth-only accounts have no password hash
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	ok, err := security.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, fmt.Errorf("failed to check password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Authenticate resolves a host token to its user
func (s *AuthService) Authenticate(token string) (*models.User, security.TokenClaims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, security.TokenClaims{}, ErrUnauthorized
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		return nil, security.TokenClaims{}, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, security.TokenClaims{}, ErrUnauthorized
	}
	return user, claims, nil
}

// CSRFToken returns the CSRF token bound to a host token
func (s *AuthService) CSRFToken(claims security.TokenClaims) (string, error) {
	return s.csrf.GenerateToken(claims.TokenID)
}

// ValidateCSRF checks a CSRF token against the host token it was issued for
func (s *AuthService) ValidateCSRF(claims security.TokenClaims, csrf string) bool {
	return s.csrf.ValidateToken(claims.TokenID, csrf)
}

// OAuthLogin signs in the user linked to a provider subject, creating one when needed.
// The username of a new user is derived from hint (usually the email address).
func (s *AuthService) OAuthLogin(provider, subject, hint string) (*AuthSession, error) {
	if provider == "" || subject == "" {
		return nil, errors.New("missing oauth provider information")
	}

	user, err := s.userRepo.GetUserByOAuth(provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup oauth user: %w", err)
	}

	if user == nil {
		base := usernameFromHint(hint)
		for attempt := 1; attempt <= maxOAuthUsernameAttempts && user == nil; attempt++ {
			candidate := base
			if attempt > 1 {
				candidate = base + "-" + strconv.Itoa(attempt)
			}
			user, err = s.userRepo.CreateOAuthUser(candidate, provider, subject)
			if errors.Is(err, repository.ErrDuplicate) {
				// Either the username is taken or a concurrent callback linked the subject
				if linked, lookupErr := s.userRepo.GetUserByOAuth(provider, subject); lookupErr == nil && linked != nil {
					user = linked
				}
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("failed to create oauth user: %w", err)
			}
		}
		if user == nil {
			return nil, ErrUsernameTaken
		}
	}

	return s.issue(user)
}

func (s *AuthService) issue(user *models.User) (*AuthSession, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	csrf, err := s.csrf.GenerateToken(claims.TokenID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate csrf token: %w", err)
	}
	return &AuthSession{User: user, Token: token, Claims: claims, CSRFToken: csrf}, nil
}

// usernameFromHint keeps the allowed username characters of the local part of an email
func usernameFromHint(hint string) string {
	if at := strings.IndexByte(hint, '@'); at >= 0 {
		hint = hint[:at]
	}
	var b strings.Builder
	for _, r := range strings.ToLower(hint) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
			b.WriteRune(r)
		}
	}
	name := b.String()
	if len(name) > 28 {
		name = name[:28]
	}
	if len(name) < 3 {
		name = "host" + name
	}
	return name
}
