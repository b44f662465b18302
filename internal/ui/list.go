package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/songcart/internal/models"
)

var (
	_ list.Item = genreItem{}
	_ list.Item = songItem{}
)

// genreItem wraps a catalog partition name to implement [list.Item].
type genreItem struct {
	name      string
	isDefault bool
}

func (i genreItem) FilterValue() string { return i.name }
func (i genreItem) Title() string {
	if i.name == "" {
		return "(no genre)"
	}
	return i.name
}
func (i genreItem) Description() string {
	if i.isDefault {
		return "default genre"
	}
	return "catalog"
}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song     *models.Song
	selected bool
}

func (i songItem) FilterValue() string { return i.song.ArtistName + " " + i.song.Title }
func (i songItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	return fmt.Sprintf("%s %s", mark, i.song.Title)
}
func (i songItem) Description() string {
	parts := []string{i.song.ArtistName}
	if i.song.AlbumName != "" {
		parts = append(parts, i.song.AlbumName)
	}
	if i.song.Price != "" {
		parts = append(parts, i.song.Price)
	}
	return strings.Join(parts, " • ")
}

func genreItems(genres []string, defaultGenre string) []list.Item {
	items := make([]list.Item, 0, len(genres)+1)
	seen := false
	for _, g := range genres {
		seen = seen || g == defaultGenre
		items = append(items, genreItem{name: g, isDefault: g == defaultGenre})
	}
	if !seen {
		items = append([]list.Item{genreItem{name: defaultGenre, isDefault: true}}, items...)
	}
	return items
}

func songItems(songs []*models.Song) []list.Item {
	items := make([]list.Item, len(songs))
	for i, song := range songs {
		items[i] = songItem{song: song}
	}
	return items
}
