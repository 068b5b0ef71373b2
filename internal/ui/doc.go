// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for motion table processing:
//  1. [PairListView] : Browse subject/session pairs discovered in the study tree
//  2. [CandidateListView] : Preview candidate files and their current status
//  3. [ConfirmView] : Confirm the processing operation
//  4. [ProcessView] : Monitor real-time progress updates
//  5. [ResultView] : Display outcome counts and failed files
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the ProcessEngine, providing non-blocking status reporting while files are written.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
