package repositories

import (
	"errors"
	"testing"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

func TestSongRepositoryErrors(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			song := newSong("", "Untitled", "Nobody")

			err := repo.Create(song)
			var verrs models.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if _, ok := verrs["song_hash"]; !ok {
				t.Errorf("expected song_hash error, got %v", verrs)
			}
		})

		t.Run("DuplicateHash", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			if err := repo.Create(newSong("dup", "One", "A")); err != nil {
				t.Fatalf("failed to create first song: %v", err)
			}

			err := repo.Create(newSong("dup", "Two", "B"))
			if !errors.Is(err, shared.ErrDuplicateSong) {
				t.Fatalf("expected ErrDuplicateSong, got %v", err)
			}
		})
	})

	t.Run("Get", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			_, err := NewSongRepository(db).Get("nonexistent-id")
			if !errors.Is(err, shared.ErrSongNotFound) {
				t.Fatalf("expected ErrSongNotFound, got %v", err)
			}
		})
	})

	t.Run("Update", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			song := newSong("h", "T", "A")
			song.SetID("nonexistent-id")

			if err := NewSongRepository(db).Update(song); !errors.Is(err, shared.ErrSongNotFound) {
				t.Fatalf("expected ErrSongNotFound, got %v", err)
			}
		})

		t.Run("Deleted", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			song := newSong("h", "T", "A")
			if err := repo.Create(song); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}
			if err := repo.Delete(song.ID()); err != nil {
				t.Fatalf("failed to delete song: %v", err)
			}

			if err := repo.Update(song); !errors.Is(err, shared.ErrSongNotFound) {
				t.Fatalf("expected ErrSongNotFound for deleted song, got %v", err)
			}
		})

		t.Run("ValidationError", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			repo := NewSongRepository(db)
			song := newSong("h", "T", "A")
			if err := repo.Create(song); err != nil {
				t.Fatalf("failed to create song: %v", err)
			}

			long := make([]byte, models.MaxTitleLength+1)
			for i := range long {
				long[i] = 'x'
			}
			song.SetTitle(string(long))

			if err := repo.Update(song); err == nil {
				t.Fatal("expected validation error for long title")
			}
		})
	})

	t.Run("Delete", func(t *testing.T) {
		t.Run("NotFound", func(t *testing.T) {
			db := setupTestDB(t)
			defer db.Close()

			if err := NewSongRepository(db).Delete("nonexistent-id"); !errors.Is(err, shared.ErrSongNotFound) {
				t.Fatalf("expected ErrSongNotFound, got %v", err)
			}
		})
	})

	t.Run("ClosedDatabase", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSongRepository(db)
		db.Close()

		if _, err := repo.List(nil); err == nil {
			t.Error("expected error listing on closed database")
		}
		if err := repo.Create(newSong("h", "T", "A")); err == nil {
			t.Error("expected error creating on closed database")
		}
	})
}

func TestAPIKeyRepositoryErrors(t *testing.T) {
	t.Run("DuplicateDigest", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewAPIKeyRepository(db)
		if err := repo.Create(models.NewAPIKey("a", "digest")); err != nil {
			t.Fatalf("failed to create key: %v", err)
		}
		if err := repo.Create(models.NewAPIKey("b", "digest")); err == nil {
			t.Fatal("expected error for duplicate digest")
		}
	})

	t.Run("ValidationError", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		if err := NewAPIKeyRepository(db).Create(models.NewAPIKey("", "digest")); err == nil {
			t.Fatal("expected validation error for empty name")
		}
	})
}
