// Package constants provides shared constants used throughout the routeconf codebase.
// This includes file permissions, store layout, timeouts and other values that
// should be consistent across the library and the CLI.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for files holding credentials, such as the store (rw-------)
	SecureFilePermissions = 0600
)

// Store layout constants describe the files read by the external program.
const (
	// StoreHeaderAddress names the address column. The leading '#' is expected
	// by the external program, which treats the header as a comment line.
	StoreHeaderAddress = "#ip"

	// StoreHeaderUsername names the username column.
	StoreHeaderUsername = "username"

	// StoreHeaderPassword names the password column.
	StoreHeaderPassword = "password"

	// StoreFieldCount is the number of fields in every store row.
	StoreFieldCount = 3

	// LegacyDelimiter separates fields in the line based store format.
	LegacyDelimiter = ", "
)

// Timeout constants
const (
	// ShutdownTimeout bounds cleanup after a failed command.
	ShutdownTimeout = 5 * time.Second

	// WatchDebounce is how long the watcher waits for further writes
	// before it reconciles again.
	WatchDebounce = 500 * time.Millisecond
)

// Configuration constants
const (
	// EnvPrefix prefixes every environment variable read by the CLI (ROUTECONF_STORE_PATH, ...).
	EnvPrefix = "ROUTECONF"

	// ConfigFileName is the base name of the optional YAML config file.
	ConfigFileName = ".routeconf"

	// DefaultStoreFormat is the canonical store format.
	DefaultStoreFormat = "csv"
)

// MaskedSecret replaces passwords in CLI output.
const MaskedSecret = "********"
