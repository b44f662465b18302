// package formatter provides functions to export song lists to various formats (CSV, Markdown, plain text, JSON)
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

	"github.com/desertthunder/songcart/internal/models"
	"github.com/desertthunder/songcart/internal/shared"
)

// Format names an export format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "text"
	JSON     Format = "json"
)

// Formats lists every supported export format.
var Formats = []Format{CSV, Markdown, Text, JSON}

// ParseFormat resolves a format name. "md" and "txt" are accepted as aliases.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "text", "txt", "":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, name)
	}
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case Markdown:
		return "md"
	case Text:
		return "txt"
	default:
		return string(f)
	}
}

// ExportToCSV converts songs to CSV format with columns: UID, Artist, Title, Album, Price, Added
func ExportToCSV(songs []*models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"UID", "Artist", "Title", "Album", "Price", "Added"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{
			song.UID,
			song.ArtistName,
			song.Title,
			song.AlbumName,
			song.Price,
			song.CreatedAt.UTC().Format(time.RFC3339),
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

// ExportToMarkdown converts songs to a Markdown document headed by title
func ExportToMarkdown(title string, songs []*models.Song) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(songs)))

	if len(songs) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Artist | Title | Album | Price |\n")
	buf.WriteString("|---|--------|-------|-------|-------|\n")
	for i, song := range songs {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1, escapeCell(song.ArtistName), escapeCell(song.Title), escapeCell(song.AlbumName), escapeCell(song.Price)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts songs to plain text format
func ExportToText(title string, songs []*models.Song) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", title))
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(songs)))

	for i, song := range songs {
		albumPart := ""
		if song.AlbumName != "" {
			albumPart = fmt.Sprintf(" (%s)", song.AlbumName)
		}
		pricePart := ""
		if song.Price != "" {
			pricePart = fmt.Sprintf(" [%s]", song.Price)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s%s\n", i+1, song.ArtistName, song.Title, albumPart, pricePart))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts songs to an indented JSON array
func ExportToJSON(songs []*models.Song) ([]byte, error) {
	if songs == nil {
		songs = []*models.Song{}
	}
	data, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal songs: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders songs in format. title heads the Markdown and text formats.
func Export(format Format, title string, songs []*models.Song) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(songs)
	case Markdown:
		return ExportToMarkdown(title, songs)
	case Text:
		return ExportToText(title, songs)
	case JSON:
		return ExportToJSON(songs)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteExport renders songs in format and writes them to w.
func WriteExport(w io.Writer, format Format, title string, songs []*models.Song) error {
	data, err := Export(format, title, songs)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteFileExport renders songs in format to a file and returns its path.
//
// An empty path defaults to {base}.{ext}.
func WriteFileExport(path, base string, format Format, title string, songs []*models.Song) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s.%s", base, format.Extension())
	}

	data, err := Export(format, title, songs)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
