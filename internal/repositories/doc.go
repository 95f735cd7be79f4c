// package repositories provides the persistence layer for series, songs, and
// reconciliation state.
//
// SeriesRepository and SongRepository implement models.Repository[T] with
// soft deletes and sequence generation. OverrideRepository and FlagRepository
// persist per-track reconciliation decisions keyed by external_id when the
// catalog supplies one, by normalized title otherwise.
package repositories
