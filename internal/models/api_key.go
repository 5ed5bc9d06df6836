package models

import (
	"strings"
	"time"
)

var _ Model = (*APIKey)(nil)

// APIKey is a registered access token. Only the digest of the token is kept.
type APIKey struct {
	id          string
	name        string
	tokenDigest string
	createdAt   time.Time
}

// NewAPIKey creates an unsaved key for the given token digest.
func NewAPIKey(name, tokenDigest string) *APIKey {
	return &APIKey{
		name:        name,
		tokenDigest: tokenDigest,
		createdAt:   time.Now().UTC(),
	}
}

func (k *APIKey) ID() string           { return k.id }
func (k *APIKey) Name() string         { return k.name }
func (k *APIKey) TokenDigest() string  { return k.tokenDigest }
func (k *APIKey) CreatedAt() time.Time { return k.createdAt }
func (k *APIKey) UpdatedAt() time.Time { return k.createdAt }

func (k *APIKey) SetID(id string)          { k.id = id }
func (k *APIKey) SetCreatedAt(t time.Time) { k.createdAt = t }

// Validate requires a name and a digest.
func (k *APIKey) Validate() error {
	errs := ValidationErrors{}
	if strings.TrimSpace(k.name) == "" {
		errs.Add("name", msgBlank)
	}
	if k.tokenDigest == "" {
		errs.Add("token_digest", msgBlank)
	}
	return errs.Err()
}
