// Package ui provides the terminal user interface for Tuner.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program styled with Lipgloss. It shows the station
// collection as a list, a now-playing pane for the station that is loading
// or playing, and an optional pane with the tail of the player log.
//
// # Keeping the List in Step
//
// The model never reads the store's list on every frame. Instead Run
// subscribes an observer that forwards each state.Patch and
// state.SelectionChanged into the program, and the model replays patches on
// its own rows with diff.Apply:
//
//  1. Init takes one Snapshot (resyncMsg) to seed rows and version
//  2. A patch for version+1 is replayed; older patches are dropped
//  3. A gap in versions, or a patch that does not replay cleanly, triggers
//     another Snapshot
//
// Selecting a station (enter) calls Store.SetSelected from a tea.Cmd, never
// from Update: the store notifies observers synchronously and the observer
// feeds this same event loop.
//
// # Key Bindings
//
//   - j/k, g/G: Move the cursor
//   - enter: Select the station under the cursor
//   - l: Toggle the player log pane
//   - f: Only show log lines for the selected station
//   - ctrl+d/ctrl+u: Scroll the log
//   - T: Cycle theme (saved to prefs)
//   - h/?: Toggle help
//   - e or ctrl+c: Exit
package ui
