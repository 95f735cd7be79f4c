package models

// AlbumRef identifies an album resolved on the external catalog.
type AlbumRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// ExternalTrack is one entry in the external catalog's album tracklist.
// Never persisted; fetched fresh on every reconciliation.
type ExternalTrack struct {
	ExternalID  string `json:"external_id"` // may be empty if the provider omits it
	Title       string `json:"title"`
	DiscNumber  int    `json:"disc_number"`  // 0 is treated as disc 1
	TrackNumber int    `json:"track_number"` // 0 means absent, sorts last
}

// TracklistItem is one row of the reconciled tracklist view.
type TracklistItem struct {
	ExternalID  string `json:"external_id"`
	Title       string `json:"title"`
	TitleClean  string `json:"title_clean"`
	Artist      string `json:"artist"`
	TrackNumber int    `json:"track_number"`
	DiscNumber  int    `json:"disc_number"`
	InPack      bool   `json:"in_pack"`
	Status      string `json:"status,omitempty"`
	SongID      string `json:"song_id,omitempty"`
	Official    bool   `json:"official"`
	PreExisting bool   `json:"pre_existing"`
	Irrelevant  bool   `json:"irrelevant"`
}

// FlagUpdate is one entry of a batch flag mutation. Title is used as the
// storage key when ExternalID is empty; it may be raw or already normalized.
type FlagUpdate struct {
	ExternalID string `json:"external_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Value      bool   `json:"value"`
}

// OverrideRequest binds an external track to a song by hand.
type OverrideRequest struct {
	ExternalID string `json:"external_id,omitempty"`
	TitleClean string `json:"title_clean,omitempty"`
	SongID     string `json:"song_id"`
}

// OverrideLink is a persisted manual decision, keyed by external_id when
// present, by normalized title otherwise.
type OverrideLink struct {
	SeriesID   string `json:"series_id"`
	ExternalID string `json:"external_id,omitempty"`
	TitleClean string `json:"title_clean,omitempty"`
	SongID     string `json:"song_id"`
}

// TrackFlags holds the two independent per-track annotations for one key.
type TrackFlags struct {
	SeriesID    string `json:"series_id"`
	ExternalID  string `json:"external_id,omitempty"`
	TitleClean  string `json:"title_clean,omitempty"`
	PreExisting bool   `json:"pre_existing"`
	Irrelevant  bool   `json:"irrelevant"`
}

// DiscAction enumerates the bulk disc operations.
type DiscAction string

const (
	MarkIrrelevant   DiscAction = "mark_irrelevant"
	UnmarkIrrelevant DiscAction = "unmark_irrelevant"
)
