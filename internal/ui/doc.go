// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a live song monitor: it renders the session projection as a
// scrollable list with per-song status badges, refreshing whenever the store
// notifies a change, and shows reconciliation outcomes (task finished or
// failed) as a transient status line.
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Snapshots and reconciler events flow through channels so the poll loops
// never block on rendering.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, l, x, f, q) with
// contextual help displayed via charmbracelet/bubbles/help.
package ui
