package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"packtrack/internal/models"
	"packtrack/internal/shared"
)

// FlagRepository persists per-track annotations.
//
// pre_existing and irrelevant live on the same row but update independently;
// setting one never touches the other. Rows share the override key scheme:
// external_id when present, normalized title otherwise.
type FlagRepository struct {
	db *sql.DB
}

// NewFlagRepository creates a new FlagRepository with the given database connection
func NewFlagRepository(db *sql.DB) *FlagRepository {
	return &FlagRepository{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// SetPreexisting upserts the pre_existing flag for a track key.
func (r *FlagRepository) SetPreexisting(seriesID, externalID, titleClean string, value bool) error {
	return setFlag(r.db, "pre_existing", seriesID, externalID, titleClean, value)
}

// SetIrrelevant upserts the irrelevant flag for a track key.
func (r *FlagRepository) SetIrrelevant(seriesID, externalID, titleClean string, value bool) error {
	return setFlag(r.db, "irrelevant", seriesID, externalID, titleClean, value)
}

// SetIrrelevantBatch upserts the irrelevant flag for every key in one
// transaction. Either all keys change or none do. Returns the number of keys
// written.
func (r *FlagRepository) SetIrrelevantBatch(seriesID string, keys []models.FlagUpdate, value bool) (int, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if err := setFlag(tx, "irrelevant", seriesID, key.ExternalID, key.Title, value); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit flag transaction: %w", err)
	}

	return len(keys), nil
}

// setFlag upserts a single flag column for a track key.
func setFlag(e execer, column, seriesID, externalID, titleClean string, value bool) error {
	if seriesID == "" {
		return fmt.Errorf("%w: flag requires a series", shared.ErrInvalidArgument)
	}
	if externalID == "" && titleClean == "" {
		return fmt.Errorf("%w: flag requires external_id or title", shared.ErrInvalidArgument)
	}

	now := time.Now()

	var (
		result sql.Result
		err    error
	)
	if externalID != "" {
		result, err = e.Exec(fmt.Sprintf(`
			UPDATE tracklist_flags
			SET %s = ?, updated_at = ?
			WHERE series_id = ? AND external_id = ?
		`, column), value, now, seriesID, externalID)
	} else {
		result, err = e.Exec(fmt.Sprintf(`
			UPDATE tracklist_flags
			SET %s = ?, updated_at = ?
			WHERE series_id = ? AND external_id = '' AND title_clean = ?
		`, column), value, now, seriesID, titleClean)
	}
	if err != nil {
		return fmt.Errorf("failed to update flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows > 0 {
		return nil
	}

	_, err = e.Exec(fmt.Sprintf(`
		INSERT INTO tracklist_flags (id, series_id, external_id, title_clean, %s, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, column), shared.GenerateID(), seriesID, externalID, titleClean, value, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert flag: %w", err)
	}

	return nil
}

// ListBySeries returns all flag rows for a series.
func (r *FlagRepository) ListBySeries(seriesID string) ([]models.TrackFlags, error) {
	rows, err := r.db.Query(`
		SELECT series_id, external_id, title_clean, pre_existing, irrelevant
		FROM tracklist_flags
		WHERE series_id = ?
		ORDER BY created_at ASC, id ASC
	`, seriesID)
	if err != nil {
		return nil, fmt.Errorf("failed to query flags: %w", err)
	}
	defer rows.Close()

	var flags []models.TrackFlags
	for rows.Next() {
		var f models.TrackFlags
		if err := rows.Scan(&f.SeriesID, &f.ExternalID, &f.TitleClean, &f.PreExisting, &f.Irrelevant); err != nil {
			return nil, fmt.Errorf("failed to scan flag: %w", err)
		}
		flags = append(flags, f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return flags, nil
}
