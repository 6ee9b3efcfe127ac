// Package logtail reads the tail of galeri's log file for the in-app log
// panel.
//
// # Reading Log Files
//
// Read extracts the last maxLines from a file using a ring buffer, so memory
// use is O(maxLines) regardless of file size:
//
//	1. Allocate ring buffer of size maxLines
//	2. For each line in file:
//	   - Store line at current index
//	   - Increment index (wrapping at maxLines)
//	   - Track total lines seen
//	3. If total < maxLines:
//	   - Return first 'count' entries from buffer
//	4. If total >= maxLines:
//	   - Return buffer starting from current index (oldest line)
//
// A missing file is not an error; Read returns no lines, which is the normal
// state before the first record is written.
//
// # Level Filtering
//
// ReadLevel applies the same algorithm to records at or above a minimum
// slog level. Records are expected in slog's text format:
//
//	time=2025-10-08T21:01:05.000Z level=WARN msg="search failed" query=kuş
//
// Lines without a level= attribute, such as panic traces, always pass the
// filter so they are never hidden from the panel.
//
// Example usage:
//
//	lines, err := logtail.ReadLevel(cfg.LogFile, 200, slog.LevelWarn)
//	if err != nil {
//		logger.Warn("log panel unavailable", "error", err)
//	}
package logtail
