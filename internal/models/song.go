package models

import (
	"fmt"
	"time"
)

// Song is a persisted local work item: a song a user is writing or has
// written, optionally assigned to a series. Songs without a series still
// participate in global same-artist matching.
type Song struct {
	id        string
	sequence  int
	seriesID  string
	title     string
	artist    string
	status    string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSong creates a Song. seriesID may be empty for songs not assigned to a
// series. status defaults to "planned" when empty.
func NewSong(sequence int, seriesID, title, artist, status string) *Song {
	if status == "" {
		status = "planned"
	}
	now := time.Now()
	return &Song{
		sequence:  sequence,
		seriesID:  seriesID,
		title:     title,
		artist:    artist,
		status:    status,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Song) ID() string            { return s.id }
func (s *Song) Sequence() int         { return s.sequence }
func (s *Song) SeriesID() string      { return s.seriesID }
func (s *Song) Title() string         { return s.title }
func (s *Song) Artist() string        { return s.artist }
func (s *Song) Status() string        { return s.status }
func (s *Song) CreatedAt() time.Time  { return s.createdAt }
func (s *Song) UpdatedAt() time.Time  { return s.updatedAt }
func (s *Song) DeletedAt() *time.Time { return s.deletedAt }

func (s *Song) SetID(id string)           { s.id = id }
func (s *Song) SetSequence(sequence int)  { s.sequence = sequence }
func (s *Song) SetSeriesID(id string)     { s.seriesID = id }
func (s *Song) SetTitle(title string)     { s.title = title }
func (s *Song) SetStatus(status string)   { s.status = status }
func (s *Song) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *Song) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Song) SetDeletedAt(t *time.Time) { s.deletedAt = t }

// Validate checks that the song has a title and artist.
func (s *Song) Validate() error {
	if s.title == "" {
		return fmt.Errorf("song title is required")
	}
	if s.artist == "" {
		return fmt.Errorf("song artist is required")
	}
	return nil
}
