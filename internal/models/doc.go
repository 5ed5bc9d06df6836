// Package models defines domain entities and persistence interfaces for the songbook catalog.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): input shapes decoded from API requests
//   - [SongDescriptor] : one ingestion item, a content hash plus optionally supplied attributes
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Song] : catalog entry identified by its content hash
//   - [APIKey] : registered access token, stored as a digest
//
// All persistent entities implement the Model interface providing ID, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
//
// Validation failures are reported as [ValidationErrors], a field to message map that
// serializes directly into API error responses.
package models
