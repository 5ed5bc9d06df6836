// Package catalog implements the song catalog operations served over HTTP.
//
// [Ingester] applies batches of [models.SongDescriptor] as independent upserts keyed
// by content hash. Each item is validated and persisted on its own; there is no
// rollback across a batch, so a [BatchResult] can mix saved songs and field errors.
//
// [Lister] produces the JSON song list with a content digest that serves as the
// cache key and the HTTP entity tag. [Catalog] composes both with the single-song
// operations.
package catalog
