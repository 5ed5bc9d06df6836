// Package repositories implements SQLite persistence for the song catalog.
//
// Key Implementations:
//   - [SongRepository] : Song persistence with content hash lookups and soft deletes
//   - [APIKeyRepository] : Registered access tokens, stored as digests
//
// Songs carry a sequence number from [NextSequence] recording insertion order.
// Listing returns songs by sequence, so the catalog order is the order songs were first stored.
//
// [Verifier] adapts [APIKeyRepository] to the token check the HTTP layer runs before any mutation.
package repositories
