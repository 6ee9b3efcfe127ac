// Package config loads galeri's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/galeri/config.toml
//  3. If the file doesn't exist, use Default()
//  4. If the file exists but fields are missing or empty, use defaults
//
// # TOML Format
//
//	site_url = "http://127.0.0.1:4321"
//	request_timeout_ms = 5000
//	debounce_ms = 300
//	index_poll_interval_ms = 100
//	index_poll_timeout_ms = 3000
//	log_file = "~/.local/state/galeri/galeri.log"
//	log_level = "info"
//
//	[build]
//	source_dir = "kaynak-veriler"
//	out_dir = "dist"
//	items_per_page = 48
//
//	[serve]
//	addr = "127.0.0.1:4321"
//	dir = "dist"
//
// Every field is optional. Durations are whole milliseconds; zero means the
// default. serve.dir follows build.out_dir unless set. Tilde expansion is
// applied to log_file. Build and serve directories stay relative to the
// working directory.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//   - Negative durations or page sizes, and unknown log levels
//
// A missing config file is not an error, so galeri works out of the box
// against a site served locally on the default port.
package config
