// Package logtail reads the tail of the playback process log.
//
// # Reading Log Files
//
// Read and ReadMatching use a ring buffer of size maxLines, so a single pass
// over the file returns the last maxLines in chronological order with
// O(maxLines) memory. A non-positive maxLines returns every line.
//
// ReadMatching keeps only lines containing a needle (case-insensitive). The UI
// uses it to show the log lines that mention the selected station by name.
//
//	lines, err := logtail.ReadMatching(cfg.PlayerLogPath(), 400, "Jazz FM")
//
// # Levels
//
// LevelOf recognises both long (INFO, WARN) and zerolog console (INF, WRN)
// level tokens among the first few fields of a line so the UI can style them.
//
// # Error Handling
//
// Missing files return nil, nil. Other errors (permission denied, I/O) are
// returned wrapped.
package logtail
