package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/services"
	"github.com/desertthunder/songbook/internal/shared"
)

// IngestOpts configures an ingestion run.
type IngestOpts struct {
	BatchSize int     // Descriptors per request (default: 50)
	RateLimit float64 // Requests per second (default: 2)
}

// ItemFailure is one descriptor the server rejected.
type ItemFailure struct {
	Index    int                     // Position in the full descriptor list
	SongHash string                  // Hash of the rejected descriptor
	Errors   models.ValidationErrors // Field errors reported by the server
}

// IngestRunResult summarizes an ingestion run.
type IngestRunResult struct {
	Total     int           // Descriptors to submit
	Submitted int           // Descriptors sent in completed batches
	Succeeded int           // Descriptors stored
	Failed    int           // Descriptors rejected
	Batches   int           // Batches completed
	Failures  []ItemFailure // Rejections in submission order
	Duration  time.Duration // Wall time of the run
}

// Ingestor submits descriptors to a catalog server in rate-limited batches.
type Ingestor struct {
	client services.SongService
	logger *log.Logger
}

// NewIngestor creates an Ingestor using client.
func NewIngestor(client services.SongService, logger *log.Logger) *Ingestor {
	return &Ingestor{client: client, logger: shared.WithLogger(logger, "component", "ingest")}
}

// Run submits descriptors in chunks of opts.BatchSize.
//
// A rejected chunk (422) records its failing items and the run continues. A transport
// failure or an authentication failure stops the run; the partial result is returned
// with the error.
func (e *Ingestor) Run(ctx context.Context, descriptors []models.SongDescriptor, opts IngestOpts, progress chan<- ProgressUpdate) (*IngestRunResult, error) {
	if e.client == nil {
		return nil, fmt.Errorf("%w: catalog client not initialized", shared.ErrServiceUnavailable)
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	start := time.Now()
	result := &IngestRunResult{Total: len(descriptors)}
	defer func() { result.Duration = time.Since(start) }()

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	chunks := Chunk(descriptors, opts.BatchSize)

	for i, chunk := range chunks {
		if err := limiter.Wait(ctx); err != nil {
			return result, err
		}

		sendProgress(progress, submitBatchUpdate(i+1, len(chunks), len(chunk)))

		resp, err := e.client.PostBatch(ctx, chunk)
		if err != nil {
			if errors.Is(err, shared.ErrNotAuthenticated) {
				return result, fmt.Errorf("batch %d/%d: %w", i+1, len(chunks), err)
			}
			return result, fmt.Errorf("%w: batch %d/%d: %v", shared.ErrBatchRejected, i+1, len(chunks), err)
		}

		offset := i * opts.BatchSize
		result.Batches++
		result.Submitted += len(chunk)

		if !resp.Rejected() {
			result.Succeeded += len(chunk)
			continue
		}

		failures := make([]ItemFailure, 0)
		for j := range chunk {
			if j >= len(resp.Errors) || len(resp.Errors[j]) == 0 {
				result.Succeeded++
				continue
			}
			failures = append(failures, ItemFailure{
				Index:    offset + j,
				SongHash: chunk[j].SongHash,
				Errors:   resp.Errors[j],
			})
		}

		result.Failed += len(failures)
		result.Failures = append(result.Failures, failures...)
		e.logger.Warn("batch rejected", "batch", i+1, "failed", len(failures))
		sendProgress(progress, batchRejectedUpdate(i+1, len(chunks), failures))
	}

	sendProgress(progress, completeUpdate(result))
	return result, nil
}

// Chunk splits descriptors into consecutive slices of at most size items.
func Chunk(descriptors []models.SongDescriptor, size int) [][]models.SongDescriptor {
	if size <= 0 {
		size = len(descriptors)
	}

	var chunks [][]models.SongDescriptor
	for i := 0; i < len(descriptors); i += size {
		end := min(i+size, len(descriptors))
		chunks = append(chunks, descriptors[i:end])
	}
	return chunks
}
