package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// SessionRepository stores browser logins by cookie digest.
type SessionRepository struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

// NewSessionRepository creates a SessionRepository whose sessions last ttl.
func NewSessionRepository(db *sql.DB, ttl time.Duration) *SessionRepository {
	return &SessionRepository{db: db, ttl: ttl, now: time.Now}
}

// Issue starts a session for user and returns the cookie value.
//
// The plaintext is not recoverable afterwards.
func (r *SessionRepository) Issue(user models.UserInfo) (string, error) {
	token, err := shared.GenerateToken()
	if err != nil {
		return "", err
	}

	session := models.NewSession(user, shared.Digest([]byte(token)), r.ttl)
	if err := session.Validate(); err != nil {
		return "", err
	}

	id := shared.GenerateID()
	_, err = r.db.Exec(
		"INSERT INTO sessions (id, token_digest, user_id, nick, created_at, expires_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, session.TokenDigest(), user.CID, user.Nick, session.CreatedAt(), session.ExpiresAt(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert session: %w", err)
	}

	return token, nil
}

// Lookup returns the user of a live session, or [shared.ErrSessionNotFound].
func (r *SessionRepository) Lookup(token string) (*models.UserInfo, error) {
	if token == "" {
		return nil, shared.ErrSessionNotFound
	}

	var (
		user      models.UserInfo
		expiresAt time.Time
	)
	err := r.db.QueryRow(
		"SELECT user_id, nick, expires_at FROM sessions WHERE token_digest = ?",
		shared.Digest([]byte(token)),
	).Scan(&user.CID, &user.Nick, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	if !r.now().Before(expiresAt) {
		return nil, shared.ErrSessionNotFound
	}
	return &user, nil
}

// Revoke ends the session for token. Unknown tokens are ignored.
func (r *SessionRepository) Revoke(token string) error {
	if _, err := r.db.Exec("DELETE FROM sessions WHERE token_digest = ?", shared.Digest([]byte(token))); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Prune deletes expired sessions and returns how many were removed.
func (r *SessionRepository) Prune() (int64, error) {
	result, err := r.db.Exec("DELETE FROM sessions WHERE expires_at <= ?", r.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", err)
	}
	return result.RowsAffected()
}
