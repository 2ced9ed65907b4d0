package models

import "testing"

func TestParsePlaybackState(t *testing.T) {
	t.Run("Valid Payload", func(t *testing.T) {
		data := []byte(`{"album_name":"Blue","artist_name":"Joni Mitchell","image_url":"http://img","song_name":"River","status":"playing"}`)

		state, err := ParsePlaybackState(data)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state == nil {
			t.Fatal("expected state, got nil")
		}
		if state.SongName != "River" || state.Status != StatusPlaying {
			t.Errorf("unexpected state: %+v", state)
		}
	})

	t.Run("Empty Payload Means Nothing Playing", func(t *testing.T) {
		for _, data := range [][]byte{[]byte("null"), []byte(""), []byte("  \n")} {
			state, err := ParsePlaybackState(data)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", data, err)
			}
			if state != nil {
				t.Errorf("expected nil state for %q, got %+v", data, state)
			}
		}
	})

	t.Run("Missing Field Is Rejected", func(t *testing.T) {
		data := []byte(`{"album_name":"Blue","artist_name":"Joni Mitchell","image_url":"http://img","status":"playing"}`)

		if _, err := ParsePlaybackState(data); err == nil {
			t.Error("expected error for missing song_name")
		}
	})

	t.Run("Wrong Type Is Rejected", func(t *testing.T) {
		data := []byte(`{"album_name":42,"artist_name":"x","image_url":"y","song_name":"z","status":"playing"}`)

		if _, err := ParsePlaybackState(data); err == nil {
			t.Error("expected error for non-string album_name")
		}
	})

	t.Run("Unknown Status Is Rejected", func(t *testing.T) {
		data := []byte(`{"album_name":"a","artist_name":"b","image_url":"c","song_name":"d","status":"buffering"}`)

		if _, err := ParsePlaybackState(data); err == nil {
			t.Error("expected error for unknown status")
		}
	})

	t.Run("Non Object Payload Is Rejected", func(t *testing.T) {
		if _, err := ParsePlaybackState([]byte(`"playing"`)); err == nil {
			t.Error("expected error for string payload")
		}
	})
}
