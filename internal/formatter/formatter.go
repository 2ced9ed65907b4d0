// package formatter provides functions to export playlist data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/desertthunder/phonos/internal/models"
	"github.com/desertthunder/phonos/internal/shared"
)

// ExportToCSV converts a Playlist to CSV format with columns: Element, Song, Artists, SpotifyID
func ExportToCSV(playlist models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Element", "Song", "Artists", "SpotifyID"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, element := range playlist.Elements {
		for _, song := range element.Songs {
			record := []string{
				element.Name,
				song.Name,
				song.Artists,
				song.SpotifyID,
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func countSongs(playlist models.Playlist) int {
	total := 0
	for _, element := range playlist.Elements {
		total += len(element.Songs)
	}
	return total
}

// ExportToMarkdown converts a Playlist to Markdown format, one section per element
func ExportToMarkdown(playlist models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("**Elements**: %d\n", len(playlist.Elements)))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", countSongs(playlist)))

	for _, element := range playlist.Elements {
		buf.WriteString(fmt.Sprintf("## %s\n\n", element.Name))
		if element.Artists != "" {
			buf.WriteString(fmt.Sprintf("**Artists**: %s\n\n", element.Artists))
		}
		for i, song := range element.Songs {
			buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, song.Artists, song.Name))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Playlist to plain text format
func ExportToText(playlist models.Playlist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", playlist.Name))
	buf.WriteString(fmt.Sprintf("Elements: %d\n\n", len(playlist.Elements)))

	for _, element := range playlist.Elements {
		buf.WriteString(fmt.Sprintf("%s (%s)\n", element.Name, element.Artists))
		for i, song := range element.Songs {
			buf.WriteString(fmt.Sprintf("  %d. %s - %s\n", i+1, song.Artists, song.Name))
		}
	}

	return buf.Bytes(), nil
}

// ToMetadataJSON generates a JSON representation of playlist metadata (without elements)
func ToMetadataJSON(playlist models.Playlist) ([]byte, error) {
	metadata := struct {
		ID      int    `json:"id"`
		Name    string `json:"name"`
		Version int    `json:"version"`
		Songs   int    `json:"songs"`
	}{playlist.ID, playlist.Name, playlist.Version, countSongs(playlist)}
	return shared.MarshalJSON(metadata, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	SongsFile    string
	MetadataFile string
}

// WriteCSVExport exports a playlist to CSV format with accompanying metadata JSON file.
//
// Defaults to playlist ID as the base filename & creates {base}_songs.csv and {base}_metadata.json
func WriteCSVExport(playlist models.Playlist, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = strconv.Itoa(playlist.ID)
	}

	csvData, err := ExportToCSV(playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	songsFile := baseFilepath + "_songs.csv"
	if err := os.WriteFile(songsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(playlist)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		SongsFile:    songsFile,
		MetadataFile: metadataFile,
	}, nil
}

// WriteMarkdownExport exports a playlist to Markdown.
//
// Defaults to {playlist.ID}.md as the filename.
func WriteMarkdownExport(playlist models.Playlist, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%d.md", playlist.ID)
	}

	mdData, err := ExportToMarkdown(playlist)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}

// WriteTextExport exports a playlist to plain text format.
//
// Defaults to {playlist.ID}_songs.txt as the filename.
func WriteTextExport(playlist models.Playlist, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%d_songs.txt", playlist.ID)
	}

	textData, err := ExportToText(playlist)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}
