package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
	"github.com/desertthunder/songbook/internal/tasks"
)

// Ingest reads descriptors from a file or scans a directory, then submits them in batches.
func (r *Runner) Ingest(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	file := cmd.StringArg("file")
	dir := cmd.String("dir")
	switch {
	case file == "" && dir == "":
		return fmt.Errorf("%w: a descriptor file or --dir must be provided", shared.ErrMissingArgument)
	case file != "" && dir != "":
		return fmt.Errorf("%w: cannot specify both a file and --dir", shared.ErrInvalidArgument)
	}

	progress := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.logProgress(progress)
	}()

	descriptors, err := r.collectDescriptors(ctx, cmd, config, file, dir, progress)
	if err != nil {
		close(progress)
		wg.Wait()
		return err
	}

	if cmd.Bool("dry-run") {
		close(progress)
		wg.Wait()
		return r.writeJSON(descriptors, true)
	}

	client, err := r.songService(cmd, config)
	if err != nil {
		close(progress)
		wg.Wait()
		return err
	}

	opts := tasks.IngestOpts{
		BatchSize: config.Client.BatchSize,
		RateLimit: config.Client.RateLimit,
	}
	if n := cmd.Int("batch-size"); n > 0 {
		opts.BatchSize = int(n)
	}
	if rate := cmd.Float("rate"); rate > 0 {
		opts.RateLimit = rate
	}

	result, runErr := tasks.NewIngestor(client, r.logger).Run(ctx, descriptors, opts, progress)
	close(progress)
	wg.Wait()

	if result != nil {
		r.writeIngestSummary(result)
	}
	return runErr
}

func (r *Runner) collectDescriptors(ctx context.Context, cmd *cli.Command, config *shared.Config, file, dir string, progress chan<- tasks.ProgressUpdate) ([]models.SongDescriptor, error) {
	if file != "" {
		return tasks.ReadDescriptors(file, progress)
	}

	coversDir := cmd.String("covers-dir")
	if coversDir == "" {
		coversDir = config.Server.CoversDir
	}

	scan, err := tasks.ScanDirectory(ctx, dir, tasks.ScanOpts{
		NumWorkers: int(cmd.Int("workers")),
		CoversDir:  coversDir,
	}, progress)
	if err != nil {
		return nil, err
	}

	for _, skip := range scan.Skipped {
		r.logger.Warn("skipped file", "path", skip.Path, "reason", skip.Reason)
	}
	return scan.Descriptors, nil
}

func (r *Runner) logProgress(progress <-chan tasks.ProgressUpdate) {
	for update := range progress {
		switch update.Phase {
		case tasks.BatchRejected:
			r.logger.Warn(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		case tasks.ScanFiles:
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step)
		default:
			r.logger.Info(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}
}

func (r *Runner) writeIngestSummary(result *tasks.IngestRunResult) {
	r.writePlainHeader("Ingest Summary")
	r.writePlain("Descriptors: %d\n", result.Total)
	r.writePlain("Batches:     %d\n", result.Batches)
	r.writePlain("Stored:      %d\n", result.Succeeded)
	r.writePlain("Rejected:    %d\n", result.Failed)
	r.writePlain("Duration:    %s\n", result.Duration.Round(time.Millisecond))

	if len(result.Failures) == 0 {
		return
	}

	r.writePlainln("Rejected descriptors:")
	for _, f := range result.Failures {
		r.writePlain("  #%d %s: %s\n", f.Index, f.SongHash, f.Errors.Error())
	}
}
