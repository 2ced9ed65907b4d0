package player

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/phonos/internal/models"
)

type staticIssuer struct {
	token string
	err   error
	calls atomic.Int64
}

func (s *staticIssuer) RealtimeToken(ctx context.Context) (string, error) {
	s.calls.Add(1)
	return s.token, s.err
}

// sseServer streams the given frames once per connection, then holds
// the connection open until the client goes away.
func sseServer(t *testing.T, wantToken string, frames []string, connections *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/player" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("token") != wantToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if connections != nil {
			connections.Add(1)
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
		<-r.Context().Done()
	}))
}

func waitForState(t *testing.T, states <-chan *models.PlaybackState) *models.PlaybackState {
	t.Helper()
	select {
	case state := <-states:
		return state
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for playback state")
		return nil
	}
}

func TestChannel(t *testing.T) {
	playing := `{"album_name":"In Rainbows","artist_name":"Radiohead","image_url":"http://img","song_name":"Weird Fishes","status":"playing"}`

	t.Run("Delivers Decoded States", func(t *testing.T) {
		issuer := &staticIssuer{token: "tok1"}
		srv := sseServer(t, "tok1", []string{playing}, nil)
		defer srv.Close()

		channel := NewChannel(srv.URL, issuer, srv.Client(), nil)
		channel.Connect(context.Background())
		defer channel.Disconnect()

		state := waitForState(t, channel.States())
		if state == nil || state.SongName != "Weird Fishes" {
			t.Errorf("unexpected state %+v", state)
		}
		if got := channel.Last(); got == nil || got.SongName != "Weird Fishes" {
			t.Errorf("expected last state retained, got %+v", got)
		}
	})

	t.Run("Null Payload Means Idle", func(t *testing.T) {
		issuer := &staticIssuer{token: "tok1"}
		srv := sseServer(t, "tok1", []string{"null"}, nil)
		defer srv.Close()

		channel := NewChannel(srv.URL, issuer, srv.Client(), nil)
		channel.Connect(context.Background())
		defer channel.Disconnect()

		if state := waitForState(t, channel.States()); state != nil {
			t.Errorf("expected nil idle state, got %+v", state)
		}
	})

	t.Run("Malformed Frame Keeps Last State", func(t *testing.T) {
		issuer := &staticIssuer{token: "tok1"}
		srv := sseServer(t, "tok1", []string{playing, `{"status":"launched"}`, `{not json`}, nil)
		defer srv.Close()

		channel := NewChannel(srv.URL, issuer, srv.Client(), nil)
		channel.Connect(context.Background())
		defer channel.Disconnect()

		waitForState(t, channel.States())

		select {
		case state := <-channel.States():
			t.Errorf("expected malformed frames dropped, got %+v", state)
		case <-time.After(200 * time.Millisecond):
		}
		if got := channel.Last(); got == nil || got.SongName != "Weird Fishes" {
			t.Errorf("expected last good state retained, got %+v", got)
		}
	})

	t.Run("Reconnects With Fresh Token", func(t *testing.T) {
		issuer := &staticIssuer{token: "tok1"}
		var connections atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			connections.Add(1)
			flusher := w.(http.Flusher)
			w.Header().Set("Content-Type", "text/event-stream")
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "data: %s\n\n", playing)
			flusher.Flush()
			// drop the connection to force a reconnect
		}))
		defer srv.Close()

		channel := NewChannel(srv.URL, issuer, srv.Client(), nil)
		channel.Connect(context.Background())
		defer channel.Disconnect()

		waitForState(t, channel.States())

		deadline := time.Now().Add(5 * time.Second)
		for connections.Load() < 2 {
			if time.Now().After(deadline) {
				t.Fatal("channel never reconnected")
			}
			time.Sleep(20 * time.Millisecond)
		}
		if issuer.calls.Load() < 2 {
			t.Errorf("expected a fresh token per connection, got %d requests", issuer.calls.Load())
		}

		state := waitForState(t, channel.States())
		if state == nil || state.SongName != "Weird Fishes" {
			t.Errorf("expected post-reconnect state to replace the last one, got %+v", state)
		}
	})

	t.Run("Subscribe Reports Whether The Stream Carried Frames", func(t *testing.T) {
		issuer := &staticIssuer{token: "tok1"}

		healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "data: %s\n\n", playing)
		}))
		defer healthy.Close()

		channel := NewChannel(healthy.URL, issuer, healthy.Client(), nil)
		states := make(chan *models.PlaybackState, 8)
		streamed, _ := channel.subscribe(context.Background(), states)
		if !streamed {
			t.Error("expected a connection that delivered a frame to report streaming")
		}

		silent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, ": keepalive\n\n")
		}))
		defer silent.Close()

		channel = NewChannel(silent.URL, issuer, silent.Client(), nil)
		streamed, _ = channel.subscribe(context.Background(), states)
		if streamed {
			t.Error("expected a connection that never delivered a frame to report no streaming")
		}
	})

	t.Run("Disconnect Stops Retrying And Clears State", func(t *testing.T) {
		issuer := &staticIssuer{token: "tok1"}
		srv := sseServer(t, "tok1", []string{playing}, nil)
		defer srv.Close()

		channel := NewChannel(srv.URL, issuer, srv.Client(), nil)
		channel.Connect(context.Background())
		states := channel.States()
		waitForState(t, states)

		channel.Disconnect()
		if _, open := <-states; open {
			// drain the buffered update, the channel must close after
			if _, open := <-states; open {
				t.Error("expected states channel closed after Disconnect")
			}
		}
		if channel.Last() != nil {
			t.Error("expected retained state cleared after Disconnect")
		}

		before := issuer.calls.Load()
		time.Sleep(100 * time.Millisecond)
		if issuer.calls.Load() != before {
			t.Error("expected no reconnect attempts after Disconnect")
		}
	})
}

type recordingSender struct {
	commands []models.PlaybackCommand
	err      error
}

func (r *recordingSender) SendPlayerCommand(ctx context.Context, command models.PlaybackCommand) error {
	r.commands = append(r.commands, command)
	return r.err
}

func TestDispatcher(t *testing.T) {
	t.Run("Encodes Play With Position", func(t *testing.T) {
		sender := &recordingSender{}
		d := NewDispatcher(sender, nil)

		element, song := 2, 5
		if err := d.Play(context.Background(), 7, &element, &song); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		raw, err := json.Marshal(sender.commands[0])
		if err != nil {
			t.Fatal(err)
		}
		want := `{"type":"play","playlist_id":7,"element_index":2,"song_index":5}`
		if string(raw) != want {
			t.Errorf("expected %s, got %s", want, raw)
		}
	})

	t.Run("Transport Commands Carry Only A Type", func(t *testing.T) {
		sender := &recordingSender{}
		d := NewDispatcher(sender, nil)
		ctx := context.Background()

		for _, send := range []func(context.Context) error{
			d.Pause, d.Resume, d.NextSong, d.PrevSong, d.NextElement, d.PrevElement,
		} {
			if err := send(ctx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}

		wantTypes := []models.CommandType{
			models.CommandPause, models.CommandResume,
			models.CommandNextSong, models.CommandPrevSong,
			models.CommandNextElement, models.CommandPrevElement,
		}
		for i, command := range sender.commands {
			if command.Type != wantTypes[i] {
				t.Errorf("command %d: expected %s, got %s", i, wantTypes[i], command.Type)
			}
			if command.PlaylistID != 0 || command.ElementIndex != nil || command.SongIndex != nil {
				t.Errorf("command %s: expected bare type, got %+v", command.Type, command)
			}
		}
	})

	t.Run("Surfaces Send Failure", func(t *testing.T) {
		wantErr := errors.New("boom")
		d := NewDispatcher(&recordingSender{err: wantErr}, nil)

		if err := d.Pause(context.Background()); !errors.Is(err, wantErr) {
			t.Errorf("expected send error surfaced, got %v", err)
		}
	})
}
