package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// PlaybackStatus enumerates the states the player reports.
type PlaybackStatus string

const (
	StatusPlaying PlaybackStatus = "playing"
	StatusPaused  PlaybackStatus = "paused"
)

// PlaybackState is what the realtime channel pushes while something is
// playing. A nil *PlaybackState means nothing is playing.
type PlaybackState struct {
	AlbumName  string         `json:"album_name"`
	ArtistName string         `json:"artist_name"`
	ImageURL   string         `json:"image_url"`
	SongName   string         `json:"song_name"`
	Status     PlaybackStatus `json:"status"`
}

// playbackStateWire mirrors PlaybackState with pointer fields so that absent
// keys are distinguishable from zero values.
type playbackStateWire struct {
	AlbumName  *string `json:"album_name"`
	ArtistName *string `json:"artist_name"`
	ImageURL   *string `json:"image_url"`
	SongName   *string `json:"song_name"`
	Status     *string `json:"status"`
}

// ParsePlaybackState decodes a realtime payload.
//
// The distinguished empty payload (the literal "null" or an empty body) means
// nothing is playing and yields (nil, nil). Anything else must be an object
// carrying every declared field with the correct type; partial or malformed
// payloads are rejected so the caller can drop them and keep the last state.
func ParsePlaybackState(data []byte) (*PlaybackState, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()

	var wire playbackStateWire
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("malformed playback payload: %w", err)
	}

	if wire.AlbumName == nil || wire.ArtistName == nil || wire.ImageURL == nil ||
		wire.SongName == nil || wire.Status == nil {
		return nil, fmt.Errorf("malformed playback payload: missing fields")
	}

	status := PlaybackStatus(*wire.Status)
	switch status {
	case StatusPlaying, StatusPaused:
	default:
		return nil, fmt.Errorf("malformed playback payload: unknown status %q", *wire.Status)
	}

	return &PlaybackState{
		AlbumName:  *wire.AlbumName,
		ArtistName: *wire.ArtistName,
		ImageURL:   *wire.ImageURL,
		SongName:   *wire.SongName,
		Status:     status,
	}, nil
}

// CommandType enumerates the playback commands the backend accepts.
type CommandType string

const (
	CommandPlay        CommandType = "play"
	CommandPause       CommandType = "pause"
	CommandResume      CommandType = "resume"
	CommandNextSong    CommandType = "next_song"
	CommandPrevSong    CommandType = "prev_song"
	CommandNextElement CommandType = "next_element"
	CommandPrevElement CommandType = "prev_element"
)

// PlaybackCommand is the tagged command variant sent to POST /player.
//
// Commands are fire and forget: the response is a bare ack and the effect is
// only observable through the next channel push.
type PlaybackCommand struct {
	Type         CommandType `json:"type"`
	PlaylistID   int         `json:"playlist_id,omitempty"`
	ElementIndex *int        `json:"element_index,omitempty"`
	SongIndex    *int        `json:"song_index,omitempty"`
}

// PlayCommand builds a play command for the given playlist. elementIndex may
// be nil to let the player pick the starting element.
func PlayCommand(playlistID int, elementIndex *int) PlaybackCommand {
	return PlaybackCommand{Type: CommandPlay, PlaylistID: playlistID, ElementIndex: elementIndex}
}
