package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/songbook/internal/models"
)

// rowCache holds the rendered lines for items [start, start+len(lines)) of the filtered list.
type rowCache struct {
	start int
	lines []string
}

// line returns the cached line for item i.
func (c rowCache) line(i int) (string, bool) {
	j := i - c.start
	if j < 0 || j >= len(c.lines) {
		return "", false
	}
	return c.lines[j], true
}

func renderRow(song *models.Song, width int) string {
	row := fmt.Sprintf("%s  %s", styles.title.Render(song.Title()), styles.artist.Render(song.Artist()))
	if song.Genre() != "" {
		row += "  " + styles.help.Render(song.Genre())
	}
	if width > 0 {
		row = lipgloss.NewStyle().MaxWidth(width).Render(row)
	}
	return row
}
