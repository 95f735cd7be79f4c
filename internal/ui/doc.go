// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for tracklist reconciliation:
//  1. [SeriesListView] : Browse tracked series
//  2. [ProgressView] : Monitor reconciliation progress updates
//  3. [TracklistView] : Browse the reconciled tracklist and toggle flags
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the ReconcileEngine, providing non-blocking status reporting during runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) plus p/i to toggle
// the pre-existing and irrelevant flags on the selected track and r to re-reconcile,
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
