package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

const msgTaken = "has already been taken"

// Catalog is the set of song operations exposed by the server.
type Catalog struct {
	store SongStore
	*Ingester
	*Lister
}

// New creates a Catalog over store with the given list cache.
func New(store SongStore, cache Cache, ttl time.Duration, logger *log.Logger) *Catalog {
	return &Catalog{
		store:    store,
		Ingester: NewIngester(store, logger),
		Lister:   NewLister(store, cache, ttl, logger),
	}
}

// Get returns the live song with id.
func (c *Catalog) Get(ctx context.Context, id string) (*models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return c.store.Get(id)
}

// Create stores a new song. Unlike [Ingester.Upsert], a hash already held by a
// live song is a validation failure.
func (c *Catalog) Create(ctx context.Context, d models.SongDescriptor) (*models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}

	song := models.NewSong(0, d.SongHash)
	song.Apply(d)

	err := c.store.Create(song)
	if errors.Is(err, shared.ErrDuplicateSong) {
		return nil, models.ValidationErrors{"song_hash": msgTaken}
	}
	if err != nil {
		return nil, err
	}
	return song, nil
}

// Update applies the supplied fields of d to the song with id. The hash is never changed.
func (c *Catalog) Update(ctx context.Context, id string, d models.SongDescriptor) (*models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	song, err := c.store.Get(id)
	if err != nil {
		return nil, err
	}

	song.Apply(d)
	if err := c.store.Update(song); err != nil {
		return nil, err
	}
	return song, nil
}

// Delete removes the song with id from the catalog.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.store.Delete(id)
}
