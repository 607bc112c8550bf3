package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"sunwave/internal/models"
)

var _ list.Item = songItem{}

// songItem wraps [models.Song] to implement [list.Item].
type songItem struct {
	song models.Song
}

func (i songItem) FilterValue() string { return i.song.Title }

func (i songItem) Title() string {
	title := i.song.Title
	if title == "" {
		title = "Untitled"
	}
	if i.song.IsLiked {
		title = "♥ " + title
	}
	return title
}

func (i songItem) Description() string {
	desc := statusBadge(i.song.Status)
	if i.song.ModelName != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.ModelName)
	}
	if i.song.Duration > 0 {
		desc = fmt.Sprintf("%s • %.0fs", desc, i.song.Duration)
	}
	if i.song.Tags != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.song.Tags)
	}
	return desc
}

func statusBadge(status models.Status) string {
	switch status {
	case models.StatusComplete:
		return styles.ok.Render("✓ complete")
	case models.StatusError:
		return styles.err.Render("✗ failed")
	case models.StatusStreaming:
		return styles.warn.Render("▶ streaming")
	default:
		return styles.warn.Render("… " + string(status))
	}
}
