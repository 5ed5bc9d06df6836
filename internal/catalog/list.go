package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

const listKeyPrefix = "songbook:songs:"

// Listing is an encoded song list and the digest identifying its content.
type Listing struct {
	Songs  []*models.Song
	Body   []byte
	Digest string
	Cached bool
}

// ETag returns the quoted entity tag for the listing.
func (l *Listing) ETag() string {
	return strconv.Quote(l.Digest)
}

// Matches reports whether an If-None-Match header value names this listing.
func (l *Listing) Matches(ifNoneMatch string) bool {
	if ifNoneMatch == "" {
		return false
	}
	for _, tag := range strings.Split(ifNoneMatch, ",") {
		tag = strings.TrimSpace(tag)
		tag = strings.TrimPrefix(tag, "W/")
		if tag == "*" || tag == l.ETag() {
			return true
		}
	}
	return false
}

// Lister serves the full song list in stored order.
type Lister struct {
	store  SongStore
	cache  Cache
	ttl    time.Duration
	logger *log.Logger
}

// NewLister creates a Lister. A nil cache disables caching.
func NewLister(store SongStore, cache Cache, ttl time.Duration, logger *log.Logger) *Lister {
	if cache == nil {
		cache = NopCache{}
	}
	return &Lister{store: store, cache: cache, ttl: ttl, logger: shared.WithLogger(logger, "component", "list")}
}

// List returns the live songs in stored order.
func (l *Lister) List(ctx context.Context) ([]*models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.store.List(nil)
}

// ListJSON returns the JSON encoded song list.
//
// The encoding is cached under the list digest, which changes whenever a song is
// added, removed or updated. Cache failures are logged and the list is encoded directly.
func (l *Lister) ListJSON(ctx context.Context) (*Listing, error) {
	songs, err := l.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list songs: %w", err)
	}

	listing := &Listing{Songs: songs, Digest: ListDigest(songs)}
	key := listKeyPrefix + listing.Digest

	body, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.Warn("cache read failed", "error", err)
	}
	if ok {
		listing.Body = body
		listing.Cached = true
		return listing, nil
	}

	body, err = json.Marshal(songs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode songs: %w", err)
	}
	listing.Body = body

	if err := l.cache.Set(ctx, key, body, l.ttl); err != nil {
		l.logger.Warn("cache write failed", "error", err)
	}

	return listing, nil
}

// ListDigest hashes the identity and last update of every song, in order.
func ListDigest(songs []*models.Song) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(len(songs)))
	for _, s := range songs {
		b.WriteByte('\n')
		b.WriteString(s.ID())
		b.WriteByte(' ')
		b.WriteString(s.UpdatedAt().UTC().Format(time.RFC3339Nano))
	}
	return shared.Digest([]byte(b.String()))
}
