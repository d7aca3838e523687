package models

import "time"

// User represents a host account that can author question sets and host sessions
type User struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	OAuthProvider string    `json:"oauthProvider,omitempty"`
	OAuthSubject  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
