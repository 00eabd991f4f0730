// Package state holds the authoritative station collection for Tuner.
//
// # Overview
//
// The Store sits between the event bus and the display and notification
// layers. Events from the playback process arrive asynchronously; the bus
// hands them to the Store one at a time. Every mutation produces a new list
// version, and the difference to the previous version is published as an
// ordered Patch.
//
//	Producer (bus):                 Consumers (ui, notify, prefs):
//	┌─────────────────────┐         ┌──────────────────────┐
//	│ Handle(event)       │         │ PatchApplied(patch)  │
//	│   ↓                 │         │ SelectionChanged(id) │
//	│ copy current list   │         │   ↓                  │
//	│ rewrite records     │────────→│ diff.Apply(rows, ops)│
//	│ diff.Compute        │ (sync)  │ CurrentList()        │
//	│ commit + notify     │         │                      │
//	└─────────────────────┘         └──────────────────────┘
//
// # Versions
//
// A committed record is never modified. ApplyPlaybackStateChanged and
// ApplyMetadataChanged copy the list, replace the affected records with
// WithPlaybackState/WithMetadata copies, and commit the copy. A playback
// event that also stops the previous station rewrites both records in the
// same copy, so observers see one Patch and never an intermediate state.
//
// A mutation that changes nothing (for example metadata for a station that
// is not in the list) emits no Patch and does not advance the version.
//
// # Concurrency Model
//
// Two locks are used:
//
//   - writeMu serializes the full mutate → diff → commit → notify path, so
//     notifications are delivered in the order events were applied.
//   - mu (RWMutex) guards the committed data. It is released before
//     observers run, which lets observers call CurrentList, Snapshot and the
//     other readers from inside a callback.
//
// Observers must not call ReplaceAll, Apply*, SetSelected or
// RestoreSelection from a callback; that would deadlock on writeMu. Hand the
// work to another goroutine instead.
//
// Nothing in this package performs I/O or blocks on anything but these
// locks.
//
// # Selection
//
// After ReplaceAll the selection always names a live record when the list is
// non-empty: a missing or stale selection falls back to the first station in
// display order. A selection that is still present is left alone.
// SetSelected ignores unknown IDs.
//
// # Errors
//
//   - Malformed events (events.ErrMalformedEvent) and duplicate IDs in a
//     replacement list (ErrDuplicateStation) are returned to the caller.
//   - References to stations that are not in the list are not errors. They
//     are listed in Commit.Unresolved and counted in Snapshot.
//   - ErrEmptyCollection is returned by Snapshot.Selected on an empty list.
package state
