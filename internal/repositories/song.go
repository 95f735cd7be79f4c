package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"packtrack/internal/models"
	"packtrack/internal/shared"
)

// SongRepository implements models.Repository[*models.Song].
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a new song into the database with generated ID and sequence
func (r *SongRepository) Create(song *models.Song) error {
	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	song.SetID(id)
	song.SetSequence(sequence)

	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO songs (id, sequence, series_id, title, artist, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		nullableID(song.SeriesID()),
		song.Title(),
		song.Artist(),
		song.Status(),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}

	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := `
		SELECT id, sequence, series_id, title, artist, status, created_at, updated_at, deleted_at
		FROM songs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing song in the database
func (r *SongRepository) Update(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)

	query := `
		UPDATE songs
		SET series_id = ?, title = ?, artist = ?, status = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		nullableID(song.SeriesID()),
		song.Title(),
		song.Artist(),
		song.Status(),
		now,
		song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: song %s", shared.ErrNotFound, song.ID())
	}

	return nil
}

// Delete soft-deletes a song by ID
func (r *SongRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE songs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: song %s", shared.ErrNotFound, id)
	}

	return nil
}

// List retrieves all songs matching the given criteria, excluding soft-deleted songs
func (r *SongRepository) List(criteria map[string]any) ([]*models.Song, error) {
	query := `
		SELECT id, sequence, series_id, title, artist, status, created_at, updated_at, deleted_at
		FROM songs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if seriesID, ok := criteria["series_id"].(string); ok && seriesID != "" {
		query += " AND series_id = ?"
		args = append(args, seriesID)
	}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND lower(artist) LIKE '%' || lower(?) || '%'"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return songs, nil
}

// InSeries retrieves the songs assigned to a series.
func (r *SongRepository) InSeries(seriesID string) ([]*models.Song, error) {
	return r.List(map[string]any{"series_id": seriesID})
}

// nullableID maps an empty string to NULL so unassigned songs do not collide
// on the series foreign key.
func nullableID(id string) any {
	if id == "" {
		return nil
	}
	return id
}

// scanOne scans a single row into a [models.Song]
func (r *SongRepository) scanOne(row *sql.Row) (*models.Song, error) {
	var (
		id        string
		sequence  int
		seriesID  sql.NullString
		title     string
		artist    string
		status    string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &seriesID, &title, &artist, &status, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: song", shared.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song := models.NewSong(sequence, seriesID.String, title, artist, status)
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}

	return song, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Song]
func (r *SongRepository) scanRow(rows *sql.Rows) (*models.Song, error) {
	var (
		id        string
		sequence  int
		seriesID  sql.NullString
		title     string
		artist    string
		status    string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &seriesID, &title, &artist, &status, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song := models.NewSong(sequence, seriesID.String, title, artist, status)
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}

	return song, nil
}
