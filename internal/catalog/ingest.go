package catalog

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// SongStore is the persistence the catalog runs against.
type SongStore interface {
	Create(song *models.Song) error
	Get(id string) (*models.Song, error)
	GetByHash(hash string) (*models.Song, error)
	Update(song *models.Song) error
	Delete(id string) error
	List(criteria map[string]any) ([]*models.Song, error)
}

// ItemResult is the outcome of one descriptor: either Song or Errors is set.
type ItemResult struct {
	Song   *models.Song
	Errors models.ValidationErrors
}

// OK reports whether the item was persisted.
func (r ItemResult) OK() bool {
	return len(r.Errors) == 0 && r.Song != nil
}

// BatchResult holds one [ItemResult] per input descriptor, in input order.
type BatchResult struct {
	Items []ItemResult
}

// AllSucceeded is true only when every item was persisted.
func (b *BatchResult) AllSucceeded() bool {
	for _, item := range b.Items {
		if !item.OK() {
			return false
		}
	}
	return true
}

// Songs returns the persisted songs in input order. Failed items are skipped.
func (b *BatchResult) Songs() []*models.Song {
	songs := make([]*models.Song, 0, len(b.Items))
	for _, item := range b.Items {
		if item.OK() {
			songs = append(songs, item.Song)
		}
	}
	return songs
}

// Errors returns one error map per item, aligned with the input. Successful items map to an empty object.
func (b *BatchResult) Errors() []models.ValidationErrors {
	out := make([]models.ValidationErrors, len(b.Items))
	for i, item := range b.Items {
		if item.OK() {
			out[i] = models.ValidationErrors{}
			continue
		}
		out[i] = item.Errors
	}
	return out
}

// Ingester upserts songs by content hash.
type Ingester struct {
	store  SongStore
	logger *log.Logger
}

// NewIngester creates an Ingester over store.
func NewIngester(store SongStore, logger *log.Logger) *Ingester {
	return &Ingester{store: store, logger: shared.WithLogger(logger, "component", "ingest")}
}

// Ingest upserts every descriptor independently and reports the per-item outcome.
//
// Items already persisted stay persisted when a later item fails or ctx is cancelled.
func (i *Ingester) Ingest(ctx context.Context, descriptors []models.SongDescriptor) *BatchResult {
	result := &BatchResult{Items: make([]ItemResult, len(descriptors))}

	for idx, d := range descriptors {
		if err := ctx.Err(); err != nil {
			result.Items[idx] = ItemResult{Errors: baseError(err)}
			continue
		}

		song, err := i.Upsert(d)
		result.Items[idx] = itemFor(song, err)
	}

	i.logger.Debug("batch ingested", "items", len(descriptors), "ok", result.AllSucceeded())
	return result
}

// Upsert validates d, resolves the live song holding its hash (or starts a new one),
// applies the supplied fields and persists it.
func (i *Ingester) Upsert(d models.SongDescriptor) (*models.Song, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	song, err := i.store.GetByHash(d.SongHash)
	switch {
	case errors.Is(err, shared.ErrSongNotFound):
		song = models.NewSong(0, d.SongHash)
		song.Apply(d)
		err = i.store.Create(song)
		if !errors.Is(err, shared.ErrDuplicateSong) {
			return song, err
		}

		// Lost an insert race. The other writer's row now holds the hash.
		i.logger.Debug("retrying as update", "song_hash", d.SongHash)
		song, err = i.store.GetByHash(d.SongHash)
		if err != nil {
			return nil, err
		}
		song.Apply(d)
		return song, i.store.Update(song)
	case err != nil:
		return nil, err
	}

	song.Apply(d)
	return song, i.store.Update(song)
}

func itemFor(song *models.Song, err error) ItemResult {
	if err == nil {
		return ItemResult{Song: song}
	}

	var verrs models.ValidationErrors
	if errors.As(err, &verrs) {
		return ItemResult{Errors: verrs}
	}
	return ItemResult{Errors: baseError(err)}
}

func baseError(err error) models.ValidationErrors {
	return models.ValidationErrors{"base": err.Error()}
}
