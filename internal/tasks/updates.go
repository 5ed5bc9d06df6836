package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ScanFiles Phase = iota
	ReadSource
	SubmitBatch
	BatchRejected
	Complete
)

func (p Phase) String() string {
	switch p {
	case ScanFiles:
		return "scan_files"
	case ReadSource:
		return "read_source"
	case SubmitBatch:
		return "submit_batch"
	case BatchRejected:
		return "batch_rejected"
	case Complete:
		return "complete"
	default:
		return ""
	}
}

func scanStartedUpdate(dir string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanFiles,
		Message: fmt.Sprintf("Scanning %s...", dir),
	}
}

func scannedFileUpdate(step int, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ScanFiles,
		Step:    step,
		Message: fmt.Sprintf("[%d] %s", step, path),
	}
}

func sourceReadUpdate(path string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadSource,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Read %d songs from %s", count, path),
	}
}

func submitBatchUpdate(step, total, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SubmitBatch,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Submitting %d songs...", step, total, size),
	}
}

func batchRejectedUpdate(step, total int, failures []ItemFailure) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BatchRejected,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %d songs rejected", step, total, len(failures)),
		Data:    failures,
	}
}

func completeUpdate(result *IngestRunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Complete,
		Step:    result.Batches,
		Total:   result.Batches,
		Message: fmt.Sprintf("✓ %d stored, %d failed", result.Succeeded, result.Failed),
		Data:    result,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
