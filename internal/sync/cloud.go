// Package sync mirrors local save slots to remote storage and reports
// how the two copies relate.
package sync

import (
	"context"

	"github.com/sawyersrpg/savecore/internal/core/domain"
)

// BackupResult is the remote side's acknowledgment of an upload.
type BackupResult struct {
	// Metadata echoes the record metadata the server stored.
	Metadata domain.RecordMetadata `json:"metadata"`
}

// RestoreResult carries a record downloaded from remote storage.
type RestoreResult struct {
	Record *domain.SaveRecord `json:"record"`
}

// CloudStore is the remote save storage collaborator. Implementations
// translate transport failures into the domain error codes the sync
// manager keys its fallback decisions on: ErrNetworkUnavailable,
// ErrQuotaExceeded, ErrCloudCorrupted, ErrCloudNotFound.
type CloudStore interface {
	// Backup uploads a record for a slot, replacing any previous copy.
	// Uploads are keyed by slot and record timestamp, so re-sending the
	// same snapshot is safe.
	Backup(ctx context.Context, slotIndex int, record *domain.SaveRecord) (*BackupResult, error)

	// Restore downloads the slot's remote record.
	Restore(ctx context.Context, slotIndex int) (*RestoreResult, error)

	// Stat fetches the remote record's metadata without its payload.
	// Returns ErrCloudNotFound for a slot with no remote copy.
	Stat(ctx context.Context, slotIndex int) (*domain.RecordMetadata, error)
}
