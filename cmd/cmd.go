// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/formatter"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

func clientFlags() []cli.Flag {
	return []cli.Flag{
		configFlag(),
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Catalog server URL (default: client.server_url)",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "API token (default: client.token or $SONGBOOK_TOKEN)",
			Sources: cli.EnvVars("SONGBOOK_TOKEN"),
		},
	}
}

// serveCommand runs the catalog HTTP server.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the catalog HTTP server",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default: server.host)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listen port (default: server.port)",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles setup operations for the configuration file and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "status",
				Usage:  "Show applied and pending migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupStatus,
			},
			{
				Name:  "rollback",
				Usage: "Roll back the most recent migration",
				Flags: []cli.Flag{
					configFlag(),
					&cli.IntFlag{
						Name:  "to",
						Usage: "Roll back every migration newer than this version",
					},
				},
				Action: r.SetupRollback,
			},
		},
	}
}

// tokenCommand manages API keys accepted by the write routes.
func tokenCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Manage API tokens",
		Commands: []*cli.Command{
			{
				Name:      "create",
				Usage:     "Issue a new token; it is printed once",
				Arguments: []cli.Argument{&cli.StringArg{Name: "name"}},
				Flags:     []cli.Flag{configFlag()},
				Action:    r.TokenCreate,
			},
			{
				Name:   "list",
				Usage:  "List issued tokens",
				Flags:  []cli.Flag{configFlag()},
				Action: r.TokenList,
			},
			{
				Name:      "revoke",
				Usage:     "Revoke a token by id",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     []cli.Flag{configFlag()},
				Action:    r.TokenRevoke,
			},
		},
	}
}

// ingestCommand submits song descriptors from a JSON file or an audio directory.
func ingestCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "ingest",
		Usage:     "Upsert songs from a descriptor file or an audio directory",
		Arguments: []cli.Argument{&cli.StringArg{Name: "file"}},
		Flags: append(clientFlags(),
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Scan this directory for audio files instead of reading a file",
			},
			&cli.StringFlag{
				Name:  "covers-dir",
				Usage: "Write embedded cover art here (default: server.covers_dir)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Concurrent file readers when scanning",
				Value: 4,
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Descriptors per request (default: client.batch_size)",
			},
			&cli.FloatFlag{
				Name:  "rate",
				Usage: "Requests per second (default: client.rate_limit)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Print the descriptors instead of submitting them",
			},
		),
		Action: r.Ingest,
	}
}

// songsCommand queries the catalog server.
func songsCommand(r *Runner) *cli.Command {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}

	return &cli.Command{
		Name:  "songs",
		Usage: "Song catalog queries",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List songs in stored order",
				Flags: append(clientFlags(),
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format: " + strings.Join(names, ", "),
						Value:   string(formatter.FormatText),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write to this file instead of stdout",
					},
				),
				Action: r.SongsList,
			},
			{
				Name:      "lists",
				Usage:     "Print custom list names, or the song hashes on one list",
				ArgsUsage: "[list]",
				Flags: append(clientFlags(),
					&cli.BoolFlag{Name: "json", Usage: "Print as a JSON array"},
				),
				Action: r.SongsLists,
			},
			{
				Name:   "health",
				Usage:  "Check that the server is reachable",
				Flags:  clientFlags(),
				Action: r.SongsHealth,
			},
		},
	}
}

// browseCommand launches the interactive browser.
func browseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "browse",
		Aliases: []string{"ui"},
		Usage:   "Search and sort the catalog interactively",
		Flags:   clientFlags(),
		Action:  r.Browse,
	}
}
