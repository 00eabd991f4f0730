// Package app is Tuner's composition root.
//
// # Overview
//
// Run and RunHeadless load configuration and preferences, build the shared
// state.Store and the events.Bus in front of it, and start the background
// loops that feed and observe the store. Run then hands the terminal to the
// Bubble Tea UI; RunHeadless logs every change to a writer instead.
//
// # Data Flow
//
//	┌──────────────┐   JSON signals   ┌────────┐  Handle  ┌─────────────┐
//	│ Poller       │ ───────────────> │  Bus   │ ───────> │ state.Store │
//	└──────────────┘                  └────────┘          └──────┬──────┘
//	┌──────────────┐  FullListReplace     ▲                      │ Patch /
//	│ collection   │ ─────────────────────┘                      │ SelectionChanged
//	│ Watcher      │                                             ▼
//	└──────────────┘                         ui, notify.Notifier, prefs.Persister
//
// Every producer goes through the bus, so the store applies one event at a
// time and observers see versions in order.
//
// # Station Source
//
// When the configured stations file exists it is the collection: the
// collection.Watcher loads it at startup and after every edit. Otherwise the
// poller publishes the playback process's own list from /api/stations before
// reading events, and again after an outage or a player restart.
//
// # Polling Behavior
//
// The poller reads /api/events from its cursor at the configured interval
// (default 2 seconds). Malformed signals are logged and skipped. Failed
// requests back off exponentially (doubling, capped at 30 seconds) and the
// loop keeps going.
//
// # Logging
//
// In TUI mode zerolog writes JSON lines to <log_dir>/tuner.log so the
// terminal stays clean. Headless mode writes a console format to the given
// writer.
package app
