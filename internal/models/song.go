package models

import (
	"encoding/json"
	"strings"
	"time"
	"unicode"
)

const (
	MaxSongHashLength = 128
	MaxTitleLength    = 255
	MaxArtistLength   = 255
	MaxGenreLength    = 255
	MaxCoverLength    = 2048
)

var _ Model = (*Song)(nil)

// Song is a catalog entry identified by its content hash.
//
// The surrogate id addresses the single-resource routes; song_hash is the
// identity used for ingestion. created_at is set once and never rewritten.
type Song struct {
	id        string
	sequence  int
	songHash  string
	title     string
	artist    string
	cover     string
	genre     string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSong initializes an unsaved Song for hash with empty attributes.
func NewSong(sequence int, hash string) *Song {
	now := time.Now().UTC()
	return &Song{
		sequence:  sequence,
		songHash:  hash,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Song) ID() string            { return s.id }
func (s *Song) Sequence() int         { return s.sequence }
func (s *Song) SongHash() string      { return s.songHash }
func (s *Song) Title() string         { return s.title }
func (s *Song) Artist() string        { return s.artist }
func (s *Song) Cover() string         { return s.cover }
func (s *Song) Genre() string         { return s.genre }
func (s *Song) CreatedAt() time.Time  { return s.createdAt }
func (s *Song) UpdatedAt() time.Time  { return s.updatedAt }
func (s *Song) DeletedAt() *time.Time { return s.deletedAt }

func (s *Song) SetID(id string)               { s.id = id }
func (s *Song) SetSequence(seq int)           { s.sequence = seq }
func (s *Song) SetTitle(title string)         { s.title = title }
func (s *Song) SetArtist(artist string)       { s.artist = artist }
func (s *Song) SetCover(cover string)         { s.cover = cover }
func (s *Song) SetGenre(genre string)         { s.genre = genre }
func (s *Song) SetCreatedAt(t time.Time)      { s.createdAt = t }
func (s *Song) SetUpdatedAt(t time.Time)      { s.updatedAt = t }
func (s *Song) SetDeletedAt(t *time.Time)     { s.deletedAt = t }
func (s *Song) IsDeleted() bool               { return s.deletedAt != nil }
func (s *Song) IsPersisted() bool             { return s.id != "" }
func (s *Song) String() string                { return s.artist + " - " + s.title }

// Apply copies every supplied descriptor field onto s. Unsupplied fields are left unchanged
// and the hash is never rewritten.
func (s *Song) Apply(d SongDescriptor) {
	if d.Title != nil {
		s.title = *d.Title
	}
	if d.Artist != nil {
		s.artist = *d.Artist
	}
	if d.Cover != nil {
		s.cover = *d.Cover
	}
	if d.Genre != nil {
		s.genre = *d.Genre
	}
}

// Browsable reports whether the song has the title and artist needed to be listed and searched.
func (s *Song) Browsable() bool {
	return strings.TrimSpace(s.title) != "" && strings.TrimSpace(s.artist) != ""
}

// Validate checks field rules and returns [ValidationErrors] when any fail.
func (s *Song) Validate() error {
	errs := ValidationErrors{}
	validateHash(errs, s.songHash)
	checkLength(errs, "title", s.title, MaxTitleLength)
	checkLength(errs, "artist", s.artist, MaxArtistLength)
	checkLength(errs, "genre", s.genre, MaxGenreLength)
	checkLength(errs, "cover", s.cover, MaxCoverLength)
	return errs.Err()
}

func validateHash(errs ValidationErrors, hash string) {
	if strings.TrimSpace(hash) == "" {
		errs.Add("song_hash", msgBlank)
		return
	}
	if strings.IndexFunc(hash, unicode.IsSpace) >= 0 {
		errs.Add("song_hash", msgInvalid)
	}
	checkLength(errs, "song_hash", hash, MaxSongHashLength)
}

// songJSON is the wire representation shared by the server and its clients.
type songJSON struct {
	ID        string    `json:"id"`
	SongHash  string    `json:"song_hash"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	Cover     *string   `json:"cover"`
	Genre     *string   `json:"genre"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *Song) MarshalJSON() ([]byte, error) {
	return json.Marshal(songJSON{
		ID:        s.id,
		SongHash:  s.songHash,
		Title:     s.title,
		Artist:    s.artist,
		Cover:     optional(s.cover),
		Genre:     optional(s.genre),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	})
}

func (s *Song) UnmarshalJSON(data []byte) error {
	var raw songJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Song{
		id:        raw.ID,
		songHash:  raw.SongHash,
		title:     raw.Title,
		artist:    raw.Artist,
		createdAt: raw.CreatedAt,
		updatedAt: raw.UpdatedAt,
	}
	if raw.Cover != nil {
		s.cover = *raw.Cover
	}
	if raw.Genre != nil {
		s.genre = *raw.Genre
	}
	return nil
}

// SongDescriptor is one ingestion item: a content hash plus the attributes the client supplies.
//
// A nil field was not supplied; a pointer to "" was supplied empty.
type SongDescriptor struct {
	SongHash string  `json:"song_hash"`
	Title    *string `json:"title,omitempty"`
	Artist   *string `json:"artist,omitempty"`
	Cover    *string `json:"cover,omitempty"`
	Genre    *string `json:"genre,omitempty"`
}

// Validate checks the rules that can be decided before touching the store.
func (d SongDescriptor) Validate() error {
	errs := ValidationErrors{}
	validateHash(errs, d.SongHash)
	return errs.Err()
}

// Field returns a pointer to v, for building descriptors.
func Field(v string) *string {
	return &v
}

// DescriptorFor builds a descriptor supplying every attribute of s.
func DescriptorFor(s *Song) SongDescriptor {
	return SongDescriptor{
		SongHash: s.songHash,
		Title:    Field(s.title),
		Artist:   Field(s.artist),
		Cover:    Field(s.cover),
		Genre:    Field(s.genre),
	}
}
