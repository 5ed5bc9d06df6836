package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/desertthunder/songbook/internal/catalog"
	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// Catalog is the song catalog the song routes act on.
type Catalog interface {
	Get(ctx context.Context, id string) (*models.Song, error)
	Create(ctx context.Context, d models.SongDescriptor) (*models.Song, error)
	Update(ctx context.Context, id string, d models.SongDescriptor) (*models.Song, error)
	Delete(ctx context.Context, id string) error
	ListJSON(ctx context.Context) (*catalog.Listing, error)
	Ingest(ctx context.Context, descriptors []models.SongDescriptor) *catalog.BatchResult
}

// SongActions holds the song route actions.
type SongActions struct {
	catalog Catalog
}

func NewSongActions(c Catalog) *SongActions {
	return &SongActions{catalog: c}
}

// Index lists every song. JSON responses carry the list digest as ETag and honor If-None-Match.
func (a *SongActions) Index(ctx context.Context, req Request) (Result, error) {
	listing, err := a.catalog.ListJSON(ctx)
	if err != nil {
		return Result{}, err
	}

	if req.Format == FormatHTML {
		return Result{View: viewSongs, Title: "Songs", Value: listing.Songs}, nil
	}

	header := http.Header{}
	header.Set("ETag", listing.ETag())
	header.Set("Cache-Control", "no-cache")

	if listing.Matches(req.Header.Get("If-None-Match")) {
		return Result{Status: http.StatusNotModified, Header: header}, nil
	}

	return Result{Header: header, Raw: listing.Body}, nil
}

// Show returns one song.
func (a *SongActions) Show(ctx context.Context, req Request) (Result, error) {
	song, err := a.catalog.Get(ctx, req.Vars["id"])
	if err != nil {
		return Result{}, err
	}
	return songResult(http.StatusOK, song, nil), nil
}

// Create stores a new song from a `{"song": {...}}` or bare object body.
func (a *SongActions) Create(ctx context.Context, req Request) (Result, error) {
	d, err := decodeSong(req.Body)
	if err != nil {
		return Result{}, err
	}

	song, err := a.catalog.Create(ctx, d)
	if err != nil {
		return Result{}, err
	}
	return songResult(http.StatusCreated, song, location(req, song)), nil
}

// Batch upserts every item of a `{"songs": [...]}` body.
//
// All items persisted → 201 with the songs. Otherwise 422 with one error object per item,
// empty for items that were persisted.
func (a *SongActions) Batch(ctx context.Context, req Request) (Result, error) {
	descriptors, malformed, err := decodeBatch(req.Body)
	if err != nil {
		return Result{}, err
	}

	result := a.ingest(ctx, descriptors, malformed)
	if result.AllSucceeded() {
		return Result{Status: http.StatusCreated, Value: result.Songs(), View: viewSongs, Title: "Songs"}, nil
	}

	errs := result.Errors()
	flat := map[string]string{}
	for i, item := range errs {
		for field, msg := range item {
			flat[fmt.Sprintf("item %d %s", i, field)] = msg
		}
	}

	return Result{
		Status: http.StatusUnprocessableEntity,
		Value:  errs,
		View:   viewErrors,
		Title:  "Unprocessable Entity",
		HTML:   flat,
	}, nil
}

// Update applies the supplied fields of the body to an existing song.
func (a *SongActions) Update(ctx context.Context, req Request) (Result, error) {
	d, err := decodeSong(req.Body)
	if err != nil {
		return Result{}, err
	}

	song, err := a.catalog.Update(ctx, req.Vars["id"], d)
	if err != nil {
		return Result{}, err
	}
	return songResult(http.StatusOK, song, location(req, song)), nil
}

// Destroy deletes a song.
func (a *SongActions) Destroy(ctx context.Context, req Request) (Result, error) {
	if err := a.catalog.Delete(ctx, req.Vars["id"]); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusNoContent}, nil
}

// Health reports that the server is up.
func Health(_ context.Context, _ Request) (Result, error) {
	status := map[string]string{"status": "ok"}
	return Result{Value: status, View: viewErrors, Title: "OK", HTML: status}, nil
}

func songResult(status int, song *models.Song, header http.Header) Result {
	return Result{Status: status, Header: header, Value: song, View: viewSong, Title: song.Title()}
}

func location(req Request, song *models.Song) http.Header {
	path := "/songs/" + song.ID()
	if req.Format == FormatJSON {
		path += ".json"
	}
	header := http.Header{}
	header.Set("Location", path)
	return header
}

func decodeSong(body []byte) (models.SongDescriptor, error) {
	var d models.SongDescriptor

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return d, fmt.Errorf("%w: malformed JSON body", shared.ErrInvalidInput)
	}

	raw, ok := envelope["song"]
	if !ok {
		raw = body
	}
	if err := decodeDescriptor(raw, &d); err != nil {
		return d, fmt.Errorf("%w: malformed song: %v", shared.ErrInvalidInput, err)
	}
	return d, nil
}

// ingest runs the decodable items through the catalog and slots the malformed ones back
// in at their input positions.
func (a *SongActions) ingest(ctx context.Context, descriptors []models.SongDescriptor, malformed map[int]models.ValidationErrors) *catalog.BatchResult {
	if len(malformed) == 0 {
		return a.catalog.Ingest(ctx, descriptors)
	}

	valid := make([]models.SongDescriptor, 0, len(descriptors)-len(malformed))
	for i, d := range descriptors {
		if _, bad := malformed[i]; !bad {
			valid = append(valid, d)
		}
	}

	ingested := a.catalog.Ingest(ctx, valid)
	result := &catalog.BatchResult{Items: make([]catalog.ItemResult, len(descriptors))}
	next := 0
	for i := range descriptors {
		if errs, bad := malformed[i]; bad {
			result.Items[i] = catalog.ItemResult{Errors: errs}
			continue
		}
		result.Items[i] = ingested.Items[next]
		next++
	}
	return result
}

// decodeBatch decodes a `{"songs": [...]}` body. Items that fail to decode are reported by
// index instead of failing the request.
func decodeBatch(body []byte) ([]models.SongDescriptor, map[int]models.ValidationErrors, error) {
	var envelope struct {
		Songs *[]json.RawMessage `json:"songs"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, nil, fmt.Errorf("%w: malformed JSON body", shared.ErrInvalidInput)
	}
	if envelope.Songs == nil {
		return nil, nil, fmt.Errorf("%w: param is missing or the value is empty: songs", shared.ErrInvalidInput)
	}

	descriptors := make([]models.SongDescriptor, len(*envelope.Songs))
	malformed := map[int]models.ValidationErrors{}
	for i, raw := range *envelope.Songs {
		if err := decodeDescriptor(raw, &descriptors[i]); err != nil {
			malformed[i] = decodeErrors(err)
		}
	}
	return descriptors, malformed, nil
}

// decodeErrors names the offending attribute when the decoder reports one.
func decodeErrors(err error) models.ValidationErrors {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return models.ValidationErrors{typeErr.Field: "is invalid"}
	}
	return models.ValidationErrors{"base": "is invalid"}
}

// decodeDescriptor decodes one song object. Unknown attributes are ignored; wrong types are not.
func decodeDescriptor(raw []byte, d *models.SongDescriptor) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return fmt.Errorf("song is null")
	}
	return json.Unmarshal(raw, d)
}
