package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// APIKeyRepository stores registered access tokens by digest.
type APIKeyRepository struct {
	db *sql.DB
}

// NewAPIKeyRepository creates a new APIKeyRepository with the given database connection
func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

// Issue generates a token, stores its digest under name and returns the plaintext token.
//
// The plaintext is not recoverable afterwards.
func (r *APIKeyRepository) Issue(name string) (string, *models.APIKey, error) {
	token, err := shared.GenerateToken()
	if err != nil {
		return "", nil, err
	}

	key := models.NewAPIKey(name, shared.Digest([]byte(token)))
	if err := r.Create(key); err != nil {
		return "", nil, err
	}

	return token, key, nil
}

// Create inserts a key with a generated ID
func (r *APIKeyRepository) Create(key *models.APIKey) error {
	if err := key.Validate(); err != nil {
		return err
	}

	id := shared.GenerateID()
	_, err := r.db.Exec(
		"INSERT INTO api_keys (id, name, token_digest, created_at) VALUES (?, ?, ?, ?)",
		id, key.Name(), key.TokenDigest(), key.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert api key: %w", err)
	}

	key.SetID(id)
	return nil
}

// Exists reports whether token matches a registered key.
func (r *APIKeyRepository) Exists(token string) (bool, error) {
	if token == "" {
		return false, nil
	}

	var exists bool
	err := r.db.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM api_keys WHERE token_digest = ?)",
		shared.Digest([]byte(token)),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to look up api key: %w", err)
	}

	return exists, nil
}

// List returns all keys, oldest first
func (r *APIKeyRepository) List() ([]*models.APIKey, error) {
	rows, err := r.db.Query("SELECT id, name, token_digest, created_at FROM api_keys ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query api keys: %w", err)
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		var (
			id, name, digest string
			createdAt        time.Time
		)
		if err := rows.Scan(&id, &name, &digest, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan api key: %w", err)
		}
		key := models.NewAPIKey(name, digest)
		key.SetID(id)
		key.SetCreatedAt(createdAt)
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return keys, nil
}

// Delete revokes a key by ID
func (r *APIKeyRepository) Delete(id string) error {
	result, err := r.db.Exec("DELETE FROM api_keys WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete api key: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrAPIKeyNotFound, id)
	}

	return nil
}

// Verifier adapts the repository to the token check used by the HTTP layer.
type Verifier struct {
	repo *APIKeyRepository
}

// NewVerifier wraps repo as a token verifier.
func NewVerifier(repo *APIKeyRepository) *Verifier {
	return &Verifier{repo: repo}
}

// Verify returns [shared.ErrNotAuthenticated] unless token is registered.
func (v *Verifier) Verify(token string) error {
	ok, err := v.repo.Exists(token)
	if err != nil {
		return err
	}
	if !ok {
		return shared.ErrNotAuthenticated
	}
	return nil
}

