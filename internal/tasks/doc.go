// package tasks implements tracklist reconciliation against the external
// catalog.
//
// The core abstraction is ReconcileEngine, which fetches an album tracklist,
// matches each external track against locally tracked songs through an
// ordered set of tiers, resolves manual overrides and per-track flags, and
// returns a deterministic reconciled view. Long-running operations emit
// progress updates via channels for non-blocking status reporting to CLI/UI
// layers.
//
// Matching tiers, from strongest to weakest:
//
//  1. manual override by external track ID
//  2. manual override by normalized title
//  3. exact normalized-title match within the series
//  4. fuzzy match within the series
//  5. exact normalized-title match across all songs with a compatible artist
//  6. fuzzy match across the same pool
//
// The first tier that produces a song wins. Fuzzy tiers accept scores at or
// above the configured threshold and break ties by normalized-title order so
// repeated runs agree.
package tasks
