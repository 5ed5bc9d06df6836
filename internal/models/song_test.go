package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestSong(t *testing.T) {
	t.Run("Apply only touches supplied fields", func(t *testing.T) {
		song := NewSong(1, "abc123")
		song.Apply(SongDescriptor{SongHash: "abc123", Title: Field("One"), Artist: Field("Band"), Genre: Field("Rock")})
		song.Apply(SongDescriptor{SongHash: "abc123", Title: Field("Two")})

		if song.Title() != "Two" {
			t.Errorf("expected title Two, got %s", song.Title())
		}
		if song.Artist() != "Band" {
			t.Errorf("unsupplied artist should be unchanged, got %s", song.Artist())
		}
		if song.Genre() != "Rock" {
			t.Errorf("unsupplied genre should be unchanged, got %s", song.Genre())
		}
	})

	t.Run("Apply supplied empty clears field", func(t *testing.T) {
		song := NewSong(1, "abc123")
		song.Apply(SongDescriptor{Genre: Field("Pop")})
		song.Apply(SongDescriptor{Genre: Field("")})

		if song.Genre() != "" {
			t.Errorf("expected empty genre, got %s", song.Genre())
		}
	})

	t.Run("Apply never rewrites hash", func(t *testing.T) {
		song := NewSong(1, "abc123")
		song.Apply(SongDescriptor{SongHash: "other"})
		if song.SongHash() != "abc123" {
			t.Errorf("hash should be immutable, got %s", song.SongHash())
		}
	})

	t.Run("Browsable", func(t *testing.T) {
		tc := []struct {
			name   string
			title  string
			artist string
			want   bool
		}{
			{name: "both present", title: "Song", artist: "Artist", want: true},
			{name: "empty title", title: "", artist: "Artist", want: false},
			{name: "empty artist", title: "Song", artist: "", want: false},
			{name: "blank title", title: "   ", artist: "Artist", want: false},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				song := NewSong(0, "h")
				song.SetTitle(tt.title)
				song.SetArtist(tt.artist)
				if got := song.Browsable(); got != tt.want {
					t.Errorf("Browsable() = %v, want %v", got, tt.want)
				}
			})
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name  string
			build func() *Song
			field string
		}{
			{
				name:  "blank hash",
				build: func() *Song { return NewSong(0, "") },
				field: "song_hash",
			},
			{
				name:  "hash with whitespace",
				build: func() *Song { return NewSong(0, "ab cd") },
				field: "song_hash",
			},
			{
				name:  "hash too long",
				build: func() *Song { return NewSong(0, strings.Repeat("a", MaxSongHashLength+1)) },
				field: "song_hash",
			},
			{
				name: "title too long",
				build: func() *Song {
					s := NewSong(0, "h")
					s.SetTitle(strings.Repeat("t", MaxTitleLength+1))
					return s
				},
				field: "title",
			},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				err := tt.build().Validate()
				verrs, ok := err.(ValidationErrors)
				if !ok {
					t.Fatalf("expected ValidationErrors, got %T (%v)", err, err)
				}
				if _, ok := verrs[tt.field]; !ok {
					t.Errorf("expected error on %s, got %v", tt.field, verrs)
				}
			})
		}

		t.Run("empty title is storable", func(t *testing.T) {
			if err := NewSong(0, "abc").Validate(); err != nil {
				t.Errorf("song with only a hash should be valid, got %v", err)
			}
		})
	})

	t.Run("JSON round trip keeps wire names", func(t *testing.T) {
		created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		song := NewSong(3, "hash1")
		song.SetID("id-1")
		song.SetTitle("Title")
		song.SetArtist("Artist")
		song.SetCreatedAt(created)
		song.SetUpdatedAt(created)

		data, err := json.Marshal(song)
		if err != nil {
			t.Fatalf("failed to marshal: %v", err)
		}

		out := string(data)
		for _, want := range []string{`"song_hash":"hash1"`, `"cover":null`, `"created_at":"2024-01-02T03:04:05Z"`} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %s in %s", want, out)
			}
		}
		if strings.Contains(out, "sequence") {
			t.Error("sequence is internal and should not be serialized")
		}

		var decoded Song
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("failed to unmarshal: %v", err)
		}
		if decoded.ID() != "id-1" || decoded.SongHash() != "hash1" || !decoded.CreatedAt().Equal(created) {
			t.Errorf("decoded song mismatch: %+v", decoded)
		}
	})
}

func TestSongDescriptor(t *testing.T) {
	t.Run("decoding distinguishes absent from empty", func(t *testing.T) {
		var d SongDescriptor
		if err := json.Unmarshal([]byte(`{"song_hash":"h","title":"","artist":"A"}`), &d); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}

		if d.Title == nil || *d.Title != "" {
			t.Error("title should be supplied empty")
		}
		if d.Artist == nil || *d.Artist != "A" {
			t.Error("artist should be supplied")
		}
		if d.Cover != nil || d.Genre != nil {
			t.Error("cover and genre should be absent")
		}
	})

	t.Run("Validate requires hash", func(t *testing.T) {
		err := SongDescriptor{Title: Field("x")}.Validate()
		verrs, ok := err.(ValidationErrors)
		if !ok {
			t.Fatalf("expected ValidationErrors, got %v", err)
		}
		if verrs["song_hash"] != "can't be blank" {
			t.Errorf("unexpected message: %v", verrs)
		}
	})
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{}
	if errs.Err() != nil {
		t.Error("empty errors should be nil")
	}

	errs.Add("title", "first")
	errs.Add("title", "second")
	errs.Add("artist", "bad")

	if errs["title"] != "first" {
		t.Errorf("first message should win, got %s", errs["title"])
	}

	want := "validation failed: artist bad; title first"
	if got := errs.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
