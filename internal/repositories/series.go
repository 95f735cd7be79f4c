package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"packtrack/internal/models"
	"packtrack/internal/shared"
)

// SeriesRepository implements models.Repository[*models.Series].
//
// Deleting a series also removes its overrides and flags; songs assigned to
// the series are unassigned, not deleted.
type SeriesRepository struct {
	db *sql.DB
}

// NewSeriesRepository creates a new SeriesRepository with the given database connection
func NewSeriesRepository(db *sql.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

// Create inserts a new series into the database with generated ID and sequence
func (r *SeriesRepository) Create(series *models.Series) error {
	sequence, err := NextSequence(r.db, "series")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	series.SetID(id)
	series.SetSequence(sequence)

	if err := series.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO series (id, sequence, artist, album, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		series.Artist(),
		series.Album(),
		series.CreatedAt(),
		series.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert series: %w", err)
	}

	return nil
}

// Get retrieves a series by ID, excluding soft-deleted series
func (r *SeriesRepository) Get(id string) (*models.Series, error) {
	query := `
		SELECT id, sequence, artist, album, created_at, updated_at, deleted_at
		FROM series
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// Update modifies an existing series in the database
func (r *SeriesRepository) Update(series *models.Series) error {
	if err := series.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	series.SetUpdatedAt(now)

	query := `
		UPDATE series
		SET artist = ?, album = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, series.Artist(), series.Album(), now, series.ID())
	if err != nil {
		return fmt.Errorf("failed to update series: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSeriesNotFound, series.ID())
	}

	return nil
}

// Delete soft-deletes a series and removes its reconciliation state. The
// series row, its overrides, its flags, and song assignments change in one
// transaction.
func (r *SeriesRepository) Delete(id string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()

	result, err := tx.Exec(`
		UPDATE series
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete series: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSeriesNotFound, id)
	}

	if _, err := tx.Exec("DELETE FROM tracklist_overrides WHERE series_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete series overrides: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM tracklist_flags WHERE series_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete series flags: %w", err)
	}
	if _, err := tx.Exec("UPDATE songs SET series_id = NULL, updated_at = ? WHERE series_id = ?", now, id); err != nil {
		return fmt.Errorf("failed to unassign series songs: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete transaction: %w", err)
	}

	return nil
}

// List retrieves all series matching the given criteria, excluding soft-deleted series
func (r *SeriesRepository) List(criteria map[string]any) ([]*models.Series, error) {
	query := `
		SELECT id, sequence, artist, album, created_at, updated_at, deleted_at
		FROM series
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query series: %w", err)
	}
	defer rows.Close()

	var result []*models.Series
	for rows.Next() {
		series, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, series)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}

// scanOne scans a single row into a [models.Series]
func (r *SeriesRepository) scanOne(row *sql.Row) (*models.Series, error) {
	var (
		id        string
		sequence  int
		artist    string
		album     string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &artist, &album, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrSeriesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan series: %w", err)
	}

	series := models.NewSeries(sequence, artist, album)
	series.SetID(id)
	series.SetCreatedAt(createdAt)
	series.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		series.SetDeletedAt(&deletedAt.Time)
	}

	return series, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Series]
func (r *SeriesRepository) scanRow(rows *sql.Rows) (*models.Series, error) {
	var (
		id        string
		sequence  int
		artist    string
		album     string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &artist, &album, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan series: %w", err)
	}

	series := models.NewSeries(sequence, artist, album)
	series.SetID(id)
	series.SetCreatedAt(createdAt)
	series.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		series.SetDeletedAt(&deletedAt.Time)
	}

	return series, nil
}
