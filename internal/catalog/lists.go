package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// ListStore is the persistence behind custom lists.
type ListStore interface {
	GetByName(name string) (*models.CustomList, error)
	Ensure(name string) (*models.CustomList, error)
	List(criteria map[string]any) ([]*models.CustomList, error)
	Entries(listID string) ([]string, error)
	AddEntry(listID, hash string) (bool, error)
	RemoveEntry(listID, hash string) error
}

// Lists exposes custom lists. Reads are public; only a list's owner may change it.
type Lists struct {
	store  ListStore
	songs  SongStore
	logger *log.Logger
}

// NewLists creates a Lists over store. Added hashes must belong to a live song in songs.
func NewLists(store ListStore, songs SongStore, logger *log.Logger) *Lists {
	return &Lists{store: store, songs: songs, logger: shared.WithLogger(logger, "component", "lists")}
}

// Names returns every list name in creation order.
func (l *Lists) Names(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lists, err := l.store.List(map[string]any{})
	if err != nil {
		return nil, err
	}

	names := make([]string, len(lists))
	for i, list := range lists {
		names[i] = list.Name()
	}
	return names, nil
}

// Entries returns the song hashes on the named list.
func (l *Lists) Entries(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	list, err := l.store.GetByName(name)
	if err != nil {
		return nil, err
	}
	return l.store.Entries(list.ID())
}

// Add puts hash on the named list, creating the list on first use. It reports whether the
// hash was newly added.
func (l *Lists) Add(ctx context.Context, user models.UserInfo, name, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if err := l.authorize(user, name); err != nil {
		return false, err
	}
	if err := models.ValidateEntry(hash); err != nil {
		return false, err
	}

	if _, err := l.songs.GetByHash(hash); err != nil {
		if errors.Is(err, shared.ErrSongNotFound) {
			return false, models.ValidationErrors{"song_hash": "does not exist"}
		}
		return false, err
	}

	list, err := l.store.Ensure(name)
	if err != nil {
		return false, err
	}

	added, err := l.store.AddEntry(list.ID(), hash)
	if err == nil && added {
		l.logger.Info("added to custom list", "list", name, "song_hash", hash)
	}
	return added, err
}

// Remove takes hash off the named list.
func (l *Lists) Remove(ctx context.Context, user models.UserInfo, name, hash string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := l.authorize(user, name); err != nil {
		return err
	}

	list, err := l.store.GetByName(name)
	if err != nil {
		return err
	}

	if err := l.store.RemoveEntry(list.ID(), hash); err != nil {
		return err
	}
	l.logger.Info("removed from custom list", "list", name, "song_hash", hash)
	return nil
}

func (l *Lists) authorize(user models.UserInfo, name string) error {
	owner := models.NewCustomList(name)
	if !owner.OwnedBy(user) {
		l.logger.Warn("custom list edit refused", "user", user.CID, "list", name)
		return fmt.Errorf("%w: %s may not edit list %s", shared.ErrForbidden, user.CID, name)
	}
	return nil
}
