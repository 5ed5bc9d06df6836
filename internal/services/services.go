// package services defines interface SongService for talking to a running catalog server over HTTP
package services

import (
	"context"

	"github.com/desertthunder/songbook/internal/models"
)

// SongService defines the catalog operations available to clients of the server.
type SongService interface {
	// FetchSongs retrieves the full song list in stored order.
	FetchSongs(ctx context.Context) ([]*models.Song, error)

	// PostBatch submits descriptors for upsert.
	// A batch with failing items is not an error: the response carries the per-item errors.
	PostBatch(ctx context.Context, descriptors []models.SongDescriptor) (*BatchResponse, error)

	// Health checks that the server is reachable.
	Health(ctx context.Context) error

	// FetchLists retrieves the custom list names.
	FetchLists(ctx context.Context) ([]string, error)

	// FetchList retrieves the song hashes on one custom list.
	FetchList(ctx context.Context, name string) ([]string, error)
}

// BatchResponse is the decoded answer to a batch submission.
//
// Exactly one of Songs or Errors is set. Errors is aligned with the submitted
// descriptors, with an empty map for items that were persisted.
type BatchResponse struct {
	StatusCode int
	Songs      []*models.Song
	Errors     []models.ValidationErrors
}

// Rejected reports whether any item failed.
func (b *BatchResponse) Rejected() bool {
	return b.Errors != nil
}

// Failures returns the index and errors of each failed item.
func (b *BatchResponse) Failures() map[int]models.ValidationErrors {
	failures := map[int]models.ValidationErrors{}
	for i, errs := range b.Errors {
		if len(errs) > 0 {
			failures[i] = errs
		}
	}
	return failures
}
