// Package settings persists small host preferences (the remembered source root
// and last opened catalog) in a SQLite database under the state directory.
//
// Values are plain strings keyed by name. Writes retry briefly on SQLITE_BUSY
// so two CLI invocations racing on the same state directory both succeed.
// Schema changes bump schemaVersion; users delete settings.db to adopt them.
package settings
