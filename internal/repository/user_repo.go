package repository

import (
	"database/sql"
	"fmt"
	"time"

	"jugayaprende/internal/database"
	"jugayaprende/internal/models"
)

// UserRepository handles database operations for host accounts
type UserRepository struct {
	db database.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db database.DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// WithTx returns a repository running its queries inside tx
func (r *UserRepository) WithTx(tx database.DBTX) *UserRepository {
	return &UserRepository{db: tx}
}

const userColumns = `id, username, password_hash, COALESCE(oauth_provider, ''), COALESCE(oauth_subject, ''), created_at, updated_at`

// CreateUser inserts a new user. Returns ErrDuplicate when the username is taken.
func (r *UserRepository) CreateUser(username, passwordHash string) (*models.User, error) {
	return r.insert(username, passwordHash, nil, nil)
}

// CreateOAuthUser inserts a user that signs in through an OAuth provider
func (r *UserRepository) CreateOAuthUser(username, provider, subject string) (*models.User, error) {
	return r.insert(username, "", &provider, &subject)
}

func (r *UserRepository) insert(username, passwordHash string, provider, subject *string) (*models.User, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO users (username, password_hash, oauth_provider, oauth_subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, username, passwordHash, provider, subject, now, now)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user := &models.User{
		ID:           id,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if provider != nil {
		user.OAuthProvider = *provider
		user.OAuthSubject = *subject
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username
func (r *UserRepository) GetUserByUsername(username string) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetUserByOAuth retrieves the user linked to a provider subject
func (r *UserRepository) GetUserByOAuth(provider, subject string) (*models.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE oauth_provider = ? AND oauth_subject = ?`, provider, subject)
}

func (r *UserRepository) getOne(query string, args ...interface{}) (*models.User, error) {
	user, err := scanUser(r.db.QueryRow(query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.OAuthProvider,
		&user.OAuthSubject,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// LinkOAuth attaches a provider subject to an existing user
func (r *UserRepository) LinkOAuth(userID int64, provider, subject string) error {
	query := `UPDATE users SET oauth_provider = ?, oauth_subject = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.Exec(query, provider, subject, time.Now().UTC(), userID)
	if err != nil {
		if r.db.GetDialect().IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to link oauth account: %w", err)
	}
	return nil
}

// GetAllUsers retrieves all users, oldest first
func (r *UserRepository) GetAllUsers() ([]models.User, error) {
	rows, err := r.db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

// ImportUser inserts a user carried over from a backup, keeping its hash and timestamps.
// An existing user with the same username is returned unchanged.
func (r *UserRepository) ImportUser(u models.User) (*models.User, bool, error) {
	existing, err := r.GetUserByUsername(u.Username)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	var provider, subject *string
	if u.OAuthProvider != "" {
		provider, subject = &u.OAuthProvider, &u.OAuthSubject
	}
	query := `
		INSERT INTO users (username, password_hash, oauth_provider, oauth_subject, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query, u.Username, u.PasswordHash, provider, subject, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if err != nil {
		return nil, false, fmt.Errorf("failed to import user %s: %w", u.Username, err)
	}
	u.ID = id
	return &u, true, nil
}
