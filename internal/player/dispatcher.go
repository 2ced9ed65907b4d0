package player

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/phonos/internal/models"
	"github.com/desertthunder/phonos/internal/shared"
)

// CommandSender posts a playback command to the backend.
type CommandSender interface {
	SendPlayerCommand(ctx context.Context, command models.PlaybackCommand) error
}

// Dispatcher sends playback commands fire-and-forget. Results arrive
// as state updates on the Channel, never as command responses, so a
// failed send is only logged.
type Dispatcher struct {
	sender CommandSender
	logger *log.Logger
}

func NewDispatcher(sender CommandSender, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Dispatcher{sender: sender, logger: logger}
}

// Dispatch sends the command without waiting for a playback effect.
// The returned error reports transport or auth failure only.
func (d *Dispatcher) Dispatch(ctx context.Context, command models.PlaybackCommand) error {
	if err := d.sender.SendPlayerCommand(ctx, command); err != nil {
		d.logger.Error("playback command failed", "type", command.Type, "error", err)
		return err
	}
	d.logger.Debug("playback command sent", "type", command.Type)
	return nil
}

func (d *Dispatcher) Play(ctx context.Context, playlistID int, elementIndex, songIndex *int) error {
	command := models.PlayCommand(playlistID, elementIndex)
	command.SongIndex = songIndex
	return d.Dispatch(ctx, command)
}

func (d *Dispatcher) Pause(ctx context.Context) error {
	return d.Dispatch(ctx, models.PlaybackCommand{Type: models.CommandPause})
}

func (d *Dispatcher) Resume(ctx context.Context) error {
	return d.Dispatch(ctx, models.PlaybackCommand{Type: models.CommandResume})
}

func (d *Dispatcher) NextSong(ctx context.Context) error {
	return d.Dispatch(ctx, models.PlaybackCommand{Type: models.CommandNextSong})
}

func (d *Dispatcher) PrevSong(ctx context.Context) error {
	return d.Dispatch(ctx, models.PlaybackCommand{Type: models.CommandPrevSong})
}

func (d *Dispatcher) NextElement(ctx context.Context) error {
	return d.Dispatch(ctx, models.PlaybackCommand{Type: models.CommandNextElement})
}

func (d *Dispatcher) PrevElement(ctx context.Context) error {
	return d.Dispatch(ctx, models.PlaybackCommand{Type: models.CommandPrevElement})
}
