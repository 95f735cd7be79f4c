package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"packtrack/internal/models"
	"packtrack/internal/shared"
)

// OverrideRepository persists manual track-to-song links.
//
// Each override is keyed by (series_id, external_id) when the catalog supplies
// a track ID, by (series_id, title_clean) otherwise. Setting an override for
// an existing key replaces the previous link.
type OverrideRepository struct {
	db *sql.DB
}

// NewOverrideRepository creates a new OverrideRepository with the given database connection
func NewOverrideRepository(db *sql.DB) *OverrideRepository {
	return &OverrideRepository{db: db}
}

// Set upserts an override link. Returns shared.ErrInvalidArgument when the
// link has neither key or no song.
func (r *OverrideRepository) Set(link *models.OverrideLink) error {
	if link.SeriesID == "" || link.SongID == "" {
		return fmt.Errorf("%w: override requires series and song", shared.ErrInvalidArgument)
	}
	if link.ExternalID == "" && link.TitleClean == "" {
		return fmt.Errorf("%w: override requires external_id or title", shared.ErrInvalidArgument)
	}

	now := time.Now()

	var (
		result sql.Result
		err    error
	)
	if link.ExternalID != "" {
		result, err = r.db.Exec(`
			UPDATE tracklist_overrides
			SET song_id = ?, title_clean = ?, updated_at = ?
			WHERE series_id = ? AND external_id = ?
		`, link.SongID, link.TitleClean, now, link.SeriesID, link.ExternalID)
	} else {
		result, err = r.db.Exec(`
			UPDATE tracklist_overrides
			SET song_id = ?, updated_at = ?
			WHERE series_id = ? AND external_id = '' AND title_clean = ?
		`, link.SongID, now, link.SeriesID, link.TitleClean)
	}
	if err != nil {
		return fmt.Errorf("failed to update override: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows > 0 {
		return nil
	}

	_, err = r.db.Exec(`
		INSERT INTO tracklist_overrides (id, series_id, external_id, title_clean, song_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, shared.GenerateID(), link.SeriesID, link.ExternalID, link.TitleClean, link.SongID, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert override: %w", err)
	}

	return nil
}

// Delete removes the override for a key. Returns shared.ErrInvalidArgument
// when both keys are empty and shared.ErrOverrideNotFound when no override
// exists for the key.
func (r *OverrideRepository) Delete(seriesID, externalID, titleClean string) error {
	if externalID == "" && titleClean == "" {
		return fmt.Errorf("%w: override key required", shared.ErrInvalidArgument)
	}

	var (
		result sql.Result
		err    error
	)
	if externalID != "" {
		result, err = r.db.Exec(`
			DELETE FROM tracklist_overrides
			WHERE series_id = ? AND external_id = ?
		`, seriesID, externalID)
	} else {
		result, err = r.db.Exec(`
			DELETE FROM tracklist_overrides
			WHERE series_id = ? AND external_id = '' AND title_clean = ?
		`, seriesID, titleClean)
	}
	if err != nil {
		return fmt.Errorf("failed to delete override: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return shared.ErrOverrideNotFound
	}

	return nil
}

// ListBySeries returns all overrides for a series in creation order.
func (r *OverrideRepository) ListBySeries(seriesID string) ([]models.OverrideLink, error) {
	rows, err := r.db.Query(`
		SELECT series_id, external_id, title_clean, song_id
		FROM tracklist_overrides
		WHERE series_id = ?
		ORDER BY created_at ASC, id ASC
	`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to query overrides: %w", err)
	}
	defer rows.Close()

	var links []models.OverrideLink
	for rows.Next() {
		var link models.OverrideLink
		if err := rows.Scan(&link.SeriesID, &link.ExternalID, &link.TitleClean, &link.SongID); err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return links, nil
}
