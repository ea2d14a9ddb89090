// Package domain defines the core domain models for Savecore.
//
// Domain models are pure value objects without any IO dependencies or
// framework coupling. This package contains:
//
//   - GameState: the full save payload (player, inventory, creatures,
//     breeding progress, world flags)
//   - Equipment: the versioned equipment slot set
//   - SaveRecord: one checksummed record per occupied save slot
//   - SyncStatus: local/cloud comparison outcomes
//   - Errors: domain-specific error definitions
//
// The persistence pipeline works on decoded JSON documents
// (map[string]any) so that damaged or legacy payloads can be inspected,
// repaired, and migrated before being bound to these typed models.
package domain
