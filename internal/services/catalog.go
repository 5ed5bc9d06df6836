package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

var _ SongService = (*CatalogClient)(nil)

// CatalogClient implements [SongService] against the catalog server's JSON routes.
type CatalogClient struct {
	api *APIService
}

// NewCatalogClient creates a client for baseURL. A non-empty token is sent as a bearer token.
func NewCatalogClient(baseURL, token string, client *http.Client) *CatalogClient {
	api := NewAPIService(baseURL, client)
	if token != "" {
		api.SetHeader("Authorization", "Bearer "+token)
	}
	return &CatalogClient{api: api}
}

// FetchSongs gets /songs.json.
func (c *CatalogClient) FetchSongs(ctx context.Context) ([]*models.Song, error) {
	resp, err := c.api.Get(ctx, "/songs.json")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var songs []*models.Song
	if err := resp.Decode(&songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// FetchLists gets /custom/lists.json.
func (c *CatalogClient) FetchLists(ctx context.Context) ([]string, error) {
	return c.fetchNames(ctx, "/custom/lists.json")
}

// FetchList gets the song hashes on one custom list. An unknown list is [shared.ErrListNotFound].
func (c *CatalogClient) FetchList(ctx context.Context, name string) ([]string, error) {
	hashes, err := c.fetchNames(ctx, "/custom/list/"+url.PathEscape(name)+".json")
	if errors.Is(err, shared.ErrSongNotFound) {
		return nil, fmt.Errorf("%w: %s", shared.ErrListNotFound, name)
	}
	return hashes, err
}

func (c *CatalogClient) fetchNames(ctx context.Context, path string) ([]string, error) {
	resp, err := c.api.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	names := []string{}
	if err := resp.Decode(&names); err != nil {
		return nil, err
	}
	return names, nil
}

type batchRequest struct {
	Songs []models.SongDescriptor `json:"songs"`
}

// PostBatch posts descriptors to /songs/batch.json.
//
// 201 and 422 both decode into a [BatchResponse]; 401 is [shared.ErrNotAuthenticated].
func (c *CatalogClient) PostBatch(ctx context.Context, descriptors []models.SongDescriptor) (*BatchResponse, error) {
	if descriptors == nil {
		descriptors = []models.SongDescriptor{}
	}

	data, err := json.Marshal(batchRequest{Songs: descriptors})
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}

	resp, err := c.api.Post(ctx, "/songs/batch.json", data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}

	out := &BatchResponse{StatusCode: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		if err := resp.Decode(&out.Songs); err != nil {
			return nil, err
		}
	case http.StatusUnprocessableEntity:
		if err := resp.Decode(&out.Errors); err != nil {
			return nil, err
		}
		if out.Errors == nil {
			out.Errors = []models.ValidationErrors{}
		}
	default:
		return nil, statusError(resp)
	}

	return out, nil
}

// Health gets /health.
func (c *CatalogClient) Health(ctx context.Context) error {
	resp, err := c.api.Get(ctx, "/health")
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func statusError(resp *APIResponse) error {
	msg := strings.TrimSpace(string(resp.Body))
	if len(msg) > 200 {
		msg = msg[:200]
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrNotAuthenticated, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, msg)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return fmt.Errorf("%w: status %d", shared.ErrServiceUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}
