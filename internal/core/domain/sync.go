// Package domain defines the core domain models for Savecore.
package domain

// SyncStatus describes how a slot's local and cloud copies relate.
// Derived by comparing record timestamps; never auto-resolved by the
// persistence layer.
type SyncStatus string

const (
	SyncStatusSynced     SyncStatus = "SYNCED"
	SyncStatusLocalOnly  SyncStatus = "LOCAL_ONLY"
	SyncStatusCloudOnly  SyncStatus = "CLOUD_ONLY"
	SyncStatusLocalNewer SyncStatus = "LOCAL_NEWER"
	SyncStatusCloudNewer SyncStatus = "CLOUD_NEWER"
	SyncStatusSyncing    SyncStatus = "SYNCING"
	SyncStatusFailed     SyncStatus = "SYNC_FAILED"
	SyncStatusConflict   SyncStatus = "CONFLICT"
)

// conflictWindowMillis is how far apart two timestamps can be and still
// count as the same write. Device clocks are not trusted to the
// millisecond across machines.
const conflictWindowMillis = 2000

// CompareTimestamps derives a sync status from local and cloud record
// timestamps (Unix milliseconds, zero meaning absent).
func CompareTimestamps(local, cloud int64) SyncStatus {
	switch {
	case local == 0 && cloud == 0:
		return SyncStatusSynced
	case cloud == 0:
		return SyncStatusLocalOnly
	case local == 0:
		return SyncStatusCloudOnly
	}

	delta := local - cloud
	if delta < 0 {
		delta = -delta
	}
	if delta <= conflictWindowMillis {
		return SyncStatusSynced
	}
	if local > cloud {
		return SyncStatusLocalNewer
	}
	return SyncStatusCloudNewer
}
