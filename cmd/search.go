package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/phonos/internal/shared"
	"github.com/urfave/cli/v3"
)

// SearchOnce runs a single search against the backend. The debounced
// searcher only matters for interactive typing, so the CLI goes straight
// to the gateway.
func (r *Runner) SearchOnce(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	results, err := r.gateway.Search(ctx, query)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(results, cmd.Bool("pretty"))
	}

	if len(results.Albums) == 0 && len(results.Songs) == 0 {
		return r.writePlain("No results for %q\n", query)
	}

	if len(results.Albums) > 0 {
		r.writePlain("Albums:\n")
		for _, album := range results.Albums {
			r.writePlain("  %s (%s)\n", album.Name, album.SpotifyID)
		}
	}
	if len(results.Songs) > 0 {
		r.writePlain("Songs:\n")
		for _, song := range results.Songs {
			r.writePlain("  %s (%s)\n", song.Name, song.SpotifyID)
		}
	}
	return nil
}
