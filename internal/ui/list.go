package ui

import (
	"fmt"

	"packtrack/internal/models"
)

// seriesItem wraps [models.Series] to implement list.Item.
type seriesItem struct {
	series *models.Series
}

func (i seriesItem) FilterValue() string { return i.series.Album() }
func (i seriesItem) Title() string       { return i.series.Album() }
func (i seriesItem) Description() string { return i.series.Artist() }

// trackItem wraps [models.TracklistItem] to implement list.Item.
type trackItem struct {
	item models.TracklistItem
}

func (i trackItem) FilterValue() string { return i.item.Title }

func (i trackItem) Title() string {
	prefix := "○"
	if i.item.InPack {
		prefix = "●"
	}
	return fmt.Sprintf("%s %d.%s %s", prefix, i.item.DiscNumber, trackNumber(i.item.TrackNumber), i.item.Title)
}

func (i trackItem) Description() string {
	desc := "unmatched"
	if i.item.InPack {
		desc = i.item.Status
	}
	if i.item.Official {
		desc += " • official"
	}
	if i.item.PreExisting {
		desc += " • pre-existing"
	}
	if i.item.Irrelevant {
		desc += " • irrelevant"
	}
	return desc
}

func trackNumber(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}
