// Package command provides CLI command definitions for savecore.
//
// Commands are grouped by concern:
//
//   - slot.go: Local slot inspection and import/export
//   - integrity.go: Verify, repair, and migrate operations
//   - cloud.go: Cloud backup, restore, and sync status
//   - config.go: Configuration inspection and validation
//   - system.go: Build info and the saves-directory watcher
//
// Every command resolves its configuration the same way: built-in
// defaults, then the config file, then SAVECORE_* environment
// variables, then command-line flags.
package command
