package main

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/songbook/internal/repositories"
	"github.com/desertthunder/songbook/internal/shared"
)

// TokenCreate issues a token and prints it. Only its digest is stored.
func (r *Runner) TokenCreate(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: token name is required", shared.ErrMissingArgument)
	}

	keys, closeDB, err := r.apiKeys(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	token, key, err := keys.Issue(name)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	r.logger.Info("token issued", "id", key.ID(), "name", key.Name())
	r.writePlain("Token for %s (id %s):\n%s\n", key.Name(), key.ID(), token)
	return r.writePlainln("Store it now; it cannot be shown again.")
}

// TokenList prints issued tokens without their secrets.
func (r *Runner) TokenList(ctx context.Context, cmd *cli.Command) error {
	keys, closeDB, err := r.apiKeys(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	all, err := keys.List()
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}

	if len(all) == 0 {
		return r.writePlain("No tokens issued.\n")
	}

	tw := tabwriter.NewWriter(r.output, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, k := range all {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k.ID(), k.Name(), k.CreatedAt().Format("2006-01-02 15:04"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// TokenRevoke deletes a token by id.
func (r *Runner) TokenRevoke(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.StringArg("id"))
	if id == "" {
		return fmt.Errorf("%w: token id is required", shared.ErrMissingArgument)
	}

	keys, closeDB, err := r.apiKeys(cmd)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := keys.Delete(id); err != nil {
		return err
	}

	r.logger.Info("token revoked", "id", id)
	return r.writePlain("Revoked %s\n", id)
}

func (r *Runner) apiKeys(cmd *cli.Command) (*repositories.APIKeyRepository, func() error, error) {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	db, err := r.openDatabase(config)
	if err != nil {
		return nil, nil, err
	}
	return repositories.NewAPIKeyRepository(db), db.Close, nil
}
