// package formatter renders song lists as CSV, Markdown, plain text, or JSON for the songs command
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/shared"
)

// Format names an output encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatText, FormatCSV, FormatMarkdown, FormatJSON}

// ParseFormat resolves a format name, accepting "md" and "txt" as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, name)
	}
}

// Render encodes songs in format.
func Render(format Format, songs []*models.Song) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(songs)
	case FormatMarkdown:
		return ExportToMarkdown("Songs", songs)
	case FormatJSON:
		return ExportToJSON(songs)
	case FormatText, "":
		return ExportToText(songs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// Write renders songs to w.
func Write(w io.Writer, format Format, songs []*models.Song) error {
	data, err := Render(format, songs)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteFile renders songs to path.
func WriteFile(path string, format Format, songs []*models.Song) error {
	data, err := Render(format, songs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ExportToCSV converts songs to CSV with columns: ID, Hash, Title, Artist, Genre, Cover, Created
func ExportToCSV(songs []*models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Hash", "Title", "Artist", "Genre", "Cover", "Created"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{
			song.ID(),
			song.SongHash(),
			song.Title(),
			song.Artist(),
			song.Genre(),
			song.Cover(),
			song.CreatedAt().UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a numbered list under a heading
func ExportToMarkdown(title string, songs []*models.Song) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(songs))

	for i, song := range songs {
		genre := ""
		if song.Genre() != "" {
			genre = fmt.Sprintf(" _%s_", song.Genre())
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s\n", i+1, orUnknown(song.Artist()), orUnknown(song.Title()), genre)
	}

	return buf.Bytes(), nil
}

// ExportToText renders one "N. Artist - Title" line per song
func ExportToText(songs []*models.Song) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Songs: %d\n\n", len(songs))
	for i, song := range songs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, orUnknown(song.Artist()), orUnknown(song.Title()))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the list with the same field layout the server uses.
func ExportToJSON(songs []*models.Song) ([]byte, error) {
	if songs == nil {
		songs = []*models.Song{}
	}
	data, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unknown)"
	}
	return s
}
