package models

import (
	"strings"
	"time"
)

// UserInfo identifies a user signed in through the identity provider.
//
// CID is the provider's stable user id and doubles as the name of the user's custom list.
type UserInfo struct {
	CID  string `json:"cid"`
	Nick string `json:"nick"`
}

var _ Model = (*Session)(nil)

// Session is a browser login. Only the digest of the cookie value is kept.
type Session struct {
	id          string
	tokenDigest string
	user        UserInfo
	createdAt   time.Time
	expiresAt   time.Time
}

// NewSession creates an unsaved session for user lasting ttl.
func NewSession(user UserInfo, tokenDigest string, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		tokenDigest: tokenDigest,
		user:        user,
		createdAt:   now,
		expiresAt:   now.Add(ttl),
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) TokenDigest() string  { return s.tokenDigest }
func (s *Session) User() UserInfo       { return s.user }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) UpdatedAt() time.Time { return s.createdAt }
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

func (s *Session) SetID(id string)          { s.id = id }
func (s *Session) SetCreatedAt(t time.Time) { s.createdAt = t }
func (s *Session) SetExpiresAt(t time.Time) { s.expiresAt = t }

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.expiresAt)
}

// Validate requires a user id and a digest.
func (s *Session) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(s.user.CID) == "" {
		errs.Add("cid", msgBlank)
	}
	if s.tokenDigest == "" {
		errs.Add("token_digest", msgBlank)
	}
	return errs.Err()
}
