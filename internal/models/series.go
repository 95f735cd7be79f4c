package models

import (
	"fmt"
	"time"
)

// Series is a persisted grouping of tracked songs under one external
// artist+album pair. Overrides and flags are scoped to a series and removed
// with it.
type Series struct {
	id        string
	sequence  int
	artist    string
	album     string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewSeries creates a Series for the given artist and album.
func NewSeries(sequence int, artist, album string) *Series {
	now := time.Now()
	return &Series{
		sequence:  sequence,
		artist:    artist,
		album:     album,
		createdAt: now,
		updatedAt: now,
	}
}

func (s *Series) ID() string            { return s.id }
func (s *Series) Sequence() int         { return s.sequence }
func (s *Series) Artist() string        { return s.artist }
func (s *Series) Album() string         { return s.album }
func (s *Series) CreatedAt() time.Time  { return s.createdAt }
func (s *Series) UpdatedAt() time.Time  { return s.updatedAt }
func (s *Series) DeletedAt() *time.Time { return s.deletedAt }

func (s *Series) SetID(id string)           { s.id = id }
func (s *Series) SetUpdatedAt(t time.Time)  { s.updatedAt = t }
func (s *Series) SetDeletedAt(t *time.Time) { s.deletedAt = t }
func (s *Series) SetCreatedAt(t time.Time)  { s.createdAt = t }
func (s *Series) SetSequence(sequence int)  { s.sequence = sequence }
func (s *Series) SetArtist(artist string)   { s.artist = artist }
func (s *Series) SetAlbum(album string)     { s.album = album }

// Validate checks that the series has an artist and album.
func (s *Series) Validate() error {
	if s.artist == "" {
		return fmt.Errorf("series artist is required")
	}
	if s.album == "" {
		return fmt.Errorf("series album is required")
	}
	return nil
}
