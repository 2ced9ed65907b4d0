// package testing contains shared testing utilities
package testing

import (
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/desertthunder/phonos/internal/models"
)

// SamplePlaylist builds a populated playlist fixture.
func SamplePlaylist(id int) models.Playlist {
	return models.Playlist{
		ID:      id,
		Name:    "Road Trip",
		Version: 1,
		Elements: []models.PlaylistElement{
			{
				Name:     "In Rainbows",
				Artists:  "Radiohead",
				ImageURL: "http://img/in-rainbows",
				Songs: []models.Song{
					{Name: "15 Step", Artists: "Radiohead", SpotifyID: "sp1"},
					{Name: "Weird Fishes", Artists: "Radiohead", SpotifyID: "sp2"},
				},
			},
		},
	}
}

// StaticTokens builds a token source yielding a fixed bearer token.
func StaticTokens(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
