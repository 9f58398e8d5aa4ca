// Package session stores the CLI's GitHub credentials on disk.
//
// A session pairs a personal access token with the verified user it belongs
// to, plus an expiry. The CLI keeps exactly one session, saved as JSON under
// ~/.config/marketmap/sessions/.
package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/ayeeff/marketmap/pkg/github"
)

// DefaultTTL is the default session duration.
const DefaultTTL = 30 * 24 * time.Hour

// Session stores an authenticated GitHub user and their token.
type Session struct {
	ID          string       `json:"id"`
	AccessToken string       `json:"access_token"`
	User        *github.User `json:"user"`
	ExpiresAt   time.Time    `json:"expires_at"`
	CreatedAt   time.Time    `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserID returns a storage-compatible user identifier ("github:{id}").
func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return fmt.Sprintf("github:%d", s.User.ID)
}

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// New creates a new session with the given token and user.
func New(accessToken string, user *github.User, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:          id,
		AccessToken: accessToken,
		User:        user,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}, nil
}
