package models

import (
	"strings"
	"time"
	"unicode"
)

const MaxListNameLength = 128

var _ Model = (*CustomList)(nil)

// CustomList is a named set of song hashes. A list is named after the user that owns it,
// so only that user may change its entries.
type CustomList struct {
	id        string
	sequence  int
	name      string
	createdAt time.Time
	updatedAt time.Time
}

// NewCustomList initializes an unsaved, empty list.
func NewCustomList(name string) *CustomList {
	now := time.Now().UTC()
	return &CustomList{name: name, createdAt: now, updatedAt: now}
}

func (l *CustomList) ID() string           { return l.id }
func (l *CustomList) Sequence() int        { return l.sequence }
func (l *CustomList) Name() string         { return l.name }
func (l *CustomList) CreatedAt() time.Time { return l.createdAt }
func (l *CustomList) UpdatedAt() time.Time { return l.updatedAt }

func (l *CustomList) SetID(id string)          { l.id = id }
func (l *CustomList) SetSequence(seq int)      { l.sequence = seq }
func (l *CustomList) SetName(name string)      { l.name = name }
func (l *CustomList) SetCreatedAt(t time.Time) { l.createdAt = t }
func (l *CustomList) SetUpdatedAt(t time.Time) { l.updatedAt = t }

// OwnedBy reports whether user may edit the list.
func (l *CustomList) OwnedBy(user UserInfo) bool {
	return user.CID != "" && user.CID == l.name
}

// Validate requires a non-blank name without whitespace or slashes.
func (l *CustomList) Validate() error {
	errs := ValidationErrors{}
	switch {
	case strings.TrimSpace(l.name) == "":
		errs.Add("name", msgBlank)
	case strings.IndexFunc(l.name, func(r rune) bool { return unicode.IsSpace(r) || r == '/' }) >= 0:
		errs.Add("name", msgInvalid)
	}
	checkLength(errs, "name", l.name, MaxListNameLength)
	return errs.Err()
}

// ValidateEntry checks a song hash before it is added to a list.
func ValidateEntry(hash string) error {
	errs := ValidationErrors{}
	validateHash(errs, hash)
	return errs.Err()
}
