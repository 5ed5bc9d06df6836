package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/formatter"
)

// SongsList fetches the catalog and renders it in the requested format.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := r.songService(cmd, config)
	if err != nil {
		return err
	}

	songs, err := client.FetchSongs(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch songs: %w", err)
	}
	r.logger.Debug("fetched songs", "count", len(songs))

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, format, songs); err != nil {
			return err
		}
		r.logger.Info("songs written", "path", path, "format", format, "count", len(songs))
		return nil
	}

	return formatter.Write(r.output, format, songs)
}

// SongsHealth reports whether the server answers.
func (r *Runner) SongsHealth(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := r.songService(cmd, config)
	if err != nil {
		return err
	}

	if err := client.Health(ctx); err != nil {
		return fmt.Errorf("server unavailable: %w", err)
	}
	return r.writePlain("ok\n")
}

// SongsLists prints the custom list names, or the song hashes on one list when named.
func (r *Runner) SongsLists(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := r.songService(cmd, config)
	if err != nil {
		return err
	}

	var items []string
	if name := cmd.Args().First(); name != "" {
		items, err = client.FetchList(ctx, name)
	} else {
		items, err = client.FetchLists(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch custom lists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}
	for _, item := range items {
		if err := r.writePlain("%s\n", item); err != nil {
			return err
		}
	}
	return nil
}
