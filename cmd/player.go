package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/phonos/internal/models"
	"github.com/urfave/cli/v3"
)

// PlayerPlay starts playback of a playlist, optionally from a specific
// element and song.
func (r *Runner) PlayerPlay(ctx context.Context, cmd *cli.Command) error {
	var element, song *int
	if v := cmd.Int("element"); v >= 0 {
		element = &v
	}
	if v := cmd.Int("song"); v >= 0 {
		song = &v
	}

	if err := r.dispatcher.Play(ctx, cmd.IntArg("id"), element, song); err != nil {
		return err
	}
	return r.writePlain("▶ Playing playlist %d\n", cmd.IntArg("id"))
}

func (r *Runner) PlayerPause(ctx context.Context, cmd *cli.Command) error {
	if err := r.dispatcher.Pause(ctx); err != nil {
		return err
	}
	return r.writePlain("⏸ Paused\n")
}

func (r *Runner) PlayerResume(ctx context.Context, cmd *cli.Command) error {
	if err := r.dispatcher.Resume(ctx); err != nil {
		return err
	}
	return r.writePlain("▶ Resumed\n")
}

func (r *Runner) PlayerNextSong(ctx context.Context, cmd *cli.Command) error {
	if err := r.dispatcher.NextSong(ctx); err != nil {
		return err
	}
	return r.writePlain("⏭ Next song\n")
}

func (r *Runner) PlayerPrevSong(ctx context.Context, cmd *cli.Command) error {
	if err := r.dispatcher.PrevSong(ctx); err != nil {
		return err
	}
	return r.writePlain("⏮ Previous song\n")
}

func (r *Runner) PlayerNextElement(ctx context.Context, cmd *cli.Command) error {
	if err := r.dispatcher.NextElement(ctx); err != nil {
		return err
	}
	return r.writePlain("⏭ Next element\n")
}

func (r *Runner) PlayerPrevElement(ctx context.Context, cmd *cli.Command) error {
	if err := r.dispatcher.PrevElement(ctx); err != nil {
		return err
	}
	return r.writePlain("⏮ Previous element\n")
}

// PlayerStatus subscribes to the realtime channel just long enough to
// capture the current state.
func (r *Runner) PlayerStatus(ctx context.Context, cmd *cli.Command) error {
	r.channel.Connect(ctx)
	defer r.channel.Disconnect()

	var state *models.PlaybackState
	select {
	case state = <-r.channel.States():
	case <-time.After(10 * time.Second):
		return fmt.Errorf("timed out waiting for playback state")
	case <-ctx.Done():
		return ctx.Err()
	}

	if cmd.Bool("json") {
		return r.writeJSON(state, true)
	}

	if state == nil {
		return r.writePlain("Nothing playing\n")
	}

	marker := "▶"
	if state.Status == models.StatusPaused {
		marker = "⏸"
	}
	r.writePlain("%s %s - %s\n", marker, state.ArtistName, state.SongName)
	return r.writePlain("  from %s\n", state.AlbumName)
}
