package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/phonos/internal/formatter"
	"github.com/desertthunder/phonos/internal/models"
	"github.com/desertthunder/phonos/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlaylistsList prints every playlist in the library.
func (r *Runner) PlaylistsList(ctx context.Context, cmd *cli.Command) error {
	playlists, err := r.library.Playlists(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	if len(playlists) == 0 {
		return r.writePlain("No playlists yet. Create one with 'phonos playlists create <name>'\n")
	}

	for _, playlist := range playlists {
		r.writePlain("%4d  %s (%d elements)\n", playlist.ID, playlist.Name, len(playlist.Elements))
	}
	return nil
}

// PlaylistsShow prints one playlist with its elements and songs.
func (r *Runner) PlaylistsShow(ctx context.Context, cmd *cli.Command) error {
	playlist, err := r.library.Playlist(ctx, cmd.IntArg("id"))
	if err != nil {
		return describeNotFound(err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(playlist, cmd.Bool("pretty"))
	}

	r.writePlain("%s (id %d, version %d)\n", playlist.Name, playlist.ID, playlist.Version)
	for i, element := range playlist.Elements {
		r.writePlain("\n[%d] %s — %s\n", i, element.Name, element.Artists)
		for j, song := range element.Songs {
			r.writePlain("    %2d. %s\n", j, song.Name)
		}
	}
	return nil
}

// PlaylistsCreate creates an empty playlist.
func (r *Runner) PlaylistsCreate(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}

	playlist, err := r.library.Create(ctx, name)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Created playlist '%s' (id %d)\n", playlist.Name, playlist.ID)
}

// PlaylistsRename renames a playlist, preserving its elements.
func (r *Runner) PlaylistsRename(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: new playlist name", shared.ErrMissingArgument)
	}

	playlist, err := r.library.Playlist(ctx, cmd.IntArg("id"))
	if err != nil {
		return describeNotFound(err)
	}

	playlist.Name = name
	updated, err := r.updateWithRetry(ctx, playlist)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Renamed playlist %d to '%s'\n", updated.ID, updated.Name)
}

// PlaylistsDelete removes a playlist.
func (r *Runner) PlaylistsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.IntArg("id")
	if err := r.library.Delete(ctx, id); err != nil {
		return describeNotFound(err)
	}
	return r.writePlain("✓ Deleted playlist %d\n", id)
}

// PlaylistsAddAlbum searches for an album and appends the best hit as a new element.
func (r *Runner) PlaylistsAddAlbum(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: album search query", shared.ErrMissingArgument)
	}

	playlist, err := r.library.Playlist(ctx, cmd.IntArg("id"))
	if err != nil {
		return describeNotFound(err)
	}

	results, err := r.gateway.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(results.Albums) == 0 {
		return fmt.Errorf("%w: no album matched %q", shared.ErrInvalidInput, query)
	}

	album := results.Albums[0]
	element, err := r.gateway.AlbumElement(ctx, album)
	if err != nil {
		return err
	}

	updated, err := r.updateWithRetry(ctx, models.AddElement(playlist, element))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Added '%s' to playlist '%s' (%d songs)\n", element.Name, updated.Name, len(element.Songs))
}

// PlaylistsRemoveElement removes the element at the given position.
func (r *Runner) PlaylistsRemoveElement(ctx context.Context, cmd *cli.Command) error {
	index := cmd.IntArg("index")

	playlist, err := r.library.Playlist(ctx, cmd.IntArg("id"))
	if err != nil {
		return describeNotFound(err)
	}
	if index < 0 || index >= len(playlist.Elements) {
		return fmt.Errorf("%w: element index %d out of range", shared.ErrInvalidArgument, index)
	}

	removed := playlist.Elements[index].Name
	updated, err := r.updateWithRetry(ctx, models.RemoveElement(playlist, index))
	if err != nil {
		return err
	}
	return r.writePlain("✓ Removed '%s' from playlist '%s'\n", removed, updated.Name)
}

// PlaylistsRemoveSong removes one song from an element.
func (r *Runner) PlaylistsRemoveSong(ctx context.Context, cmd *cli.Command) error {
	elementIndex := cmd.IntArg("element")
	songIndex := cmd.IntArg("song")

	playlist, err := r.library.Playlist(ctx, cmd.IntArg("id"))
	if err != nil {
		return describeNotFound(err)
	}
	if elementIndex < 0 || elementIndex >= len(playlist.Elements) {
		return fmt.Errorf("%w: element index %d out of range", shared.ErrInvalidArgument, elementIndex)
	}
	element := playlist.Elements[elementIndex]
	if songIndex < 0 || songIndex >= len(element.Songs) {
		return fmt.Errorf("%w: song index %d out of range", shared.ErrInvalidArgument, songIndex)
	}

	removed := element.Songs[songIndex].Name
	edited := models.UpdateElement(playlist, elementIndex, models.RemoveSong(element, songIndex))
	updated, err := r.updateWithRetry(ctx, edited)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Removed '%s' from '%s' in playlist '%s'\n", removed, element.Name, updated.Name)
}

// PlaylistsExport writes a playlist to disk in the requested format.
func (r *Runner) PlaylistsExport(ctx context.Context, cmd *cli.Command) error {
	playlist, err := r.library.Playlist(ctx, cmd.IntArg("id"))
	if err != nil {
		return describeNotFound(err)
	}

	output := cmd.String("output")
	switch format := cmd.String("format"); format {
	case "csv":
		result, err := formatter.WriteCSVExport(playlist, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported songs to %s\n", result.SongsFile)
		return r.writePlain("✓ Exported metadata to %s\n", result.MetadataFile)
	case "markdown", "md":
		written, err := formatter.WriteMarkdownExport(playlist, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", written)
	case "text", "txt":
		written, err := formatter.WriteTextExport(playlist, output)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported to %s\n", written)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// updateWithRetry performs a versioned write, refetching and retrying once if
// a concurrent writer bumped the version first.
func (r *Runner) updateWithRetry(ctx context.Context, playlist models.Playlist) (models.Playlist, error) {
	updated, err := r.library.Update(ctx, playlist)
	var serverErr *shared.ServerError
	if errors.As(err, &serverErr) && serverErr.Status == 409 {
		r.logger.Warn("playlist changed concurrently, retrying against current version", "id", playlist.ID)
		current, fetchErr := r.library.Playlist(ctx, playlist.ID)
		if fetchErr != nil {
			return models.Playlist{}, fetchErr
		}
		playlist.Version = current.Version
		return r.library.Update(ctx, playlist)
	}
	return updated, err
}

func describeNotFound(err error) error {
	var serverErr *shared.ServerError
	if errors.As(err, &serverErr) && serverErr.Status == 404 {
		return shared.ErrPlaylistNotFound
	}
	return err
}
