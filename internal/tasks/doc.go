// Package tasks implements the client side of catalog ingestion with real-time progress reporting.
//
// # Sources
//
// Descriptors come from a JSON file ([ReadDescriptors]) or from a directory scan ([ScanDirectory]).
// The scan sniffs each file's format, reads its tags and derives the song hash from the audio
// payload alone, so the same recording keeps its identity when retagged. Files are read by a
// small worker pool; results keep path order.
//
// # Submission
//
// [Ingestor.Run] posts descriptors in fixed-size chunks through a [services.SongService], paced
// by a token bucket limiter. A 422 chunk records its failing items and the run continues; a
// transport or authentication failure ends the run with a partial [IngestRunResult].
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
