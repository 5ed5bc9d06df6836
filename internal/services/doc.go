// Package services implements HTTP clients for the catalog server.
//
// # SongService Interface
//
// [SongService] is what the browser and the ingestion run need from a catalog: the song list,
// batch submission, custom lists and a health check. [CatalogClient] implements it over the JSON routes.
//
// # Raw Requests
//
// [APIService] performs the raw requests and leaves status interpretation to its caller.
// Headers set with [APIService.SetHeader] (the bearer token) are sent on every request.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrServiceUnavailable] : server unreachable or answering 502/503/504
//   - [shared.ErrNotAuthenticated] : token missing or not registered (401)
//   - [shared.ErrSongNotFound] : 404 ([shared.ErrListNotFound] from [CatalogClient.FetchList])
//   - [shared.ErrAPIRequest] : any other unexpected status
//
// A 422 batch answer is not an error: [BatchResponse.Errors] carries one object per submitted item.
package services
