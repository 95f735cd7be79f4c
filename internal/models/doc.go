// package models defines the data model for the pack tracking service.
//
// Persisted entities (Series, Song) carry identity, sequence numbers, and
// timestamps behind accessor methods. Ephemeral types (ExternalTrack,
// TracklistItem) are plain DTOs produced per reconciliation request and
// never stored.
package models
