// Package domain defines the core domain models for Savecore.
package domain

import (
	"encoding/json"
	"fmt"
)

// SlotKeyPrefix is the storage key prefix for save slots. The full key
// for slot N is "sawyers_rpg_save_slot_N".
const SlotKeyPrefix = "sawyers_rpg_save_slot_"

// SlotKey returns the storage key for a slot index.
func SlotKey(index int) string {
	return fmt.Sprintf("%s%d", SlotKeyPrefix, index)
}

// RecordMetadata describes a stored save record without decoding its
// payload. This is what slot listings and sync comparisons read.
type RecordMetadata struct {
	// Timestamp is when the record was written (Unix milliseconds).
	Timestamp int64 `json:"timestamp"`

	// TotalPlayTime is the payload's accumulated play time in
	// milliseconds.
	TotalPlayTime int64 `json:"totalPlayTime"`

	// EquipmentVersion is the payload's equipment schema tag. Absent
	// means the oldest known version, "0.0".
	EquipmentVersion string `json:"equipmentVersion,omitempty"`

	// SlotIndex is the slot this record occupies.
	SlotIndex int `json:"slotIndex"`

	// Name is the player-chosen save name.
	Name string `json:"name,omitempty"`
}

// SaveRecord is one occupied save slot: the payload, its integrity
// checksum, and the record metadata. A record is created on save, fully
// replaced on the next save to the same slot, and removed on delete;
// there is no partial update.
type SaveRecord struct {
	// Payload is the stored game state, kept as raw JSON so that a
	// damaged payload can still be read, validated, and repaired.
	Payload json.RawMessage `json:"payload"`

	// Checksum is the hex SHA-256 of the canonical payload at write
	// time. A mismatch at read time means tampering or corruption.
	Checksum string `json:"checksum"`

	Metadata RecordMetadata `json:"metadata"`
}

// Document decodes the payload into a JSON document for the
// validation/recovery/migration pipeline.
func (r *SaveRecord) Document() (map[string]any, error) {
	var doc map[string]any
	if err := json.Unmarshal(r.Payload, &doc); err != nil {
		return nil, ErrPayloadMalformed.WithCause(err)
	}
	return doc, nil
}

// GetEquipmentVersion returns the record's equipment schema tag,
// falling back to the legacy version when untagged.
func (r *RecordMetadata) GetEquipmentVersion() string {
	if r.EquipmentVersion == "" {
		return LegacyEquipmentVersion
	}
	return r.EquipmentVersion
}

// DocumentVersion reads the equipment version tag out of a decoded
// payload document. Absent or malformed tags map to the legacy version.
func DocumentVersion(doc map[string]any) string {
	meta, ok := doc["metadata"].(map[string]any)
	if !ok {
		return LegacyEquipmentVersion
	}
	v, ok := meta["equipmentVersion"].(string)
	if !ok || v == "" {
		return LegacyEquipmentVersion
	}
	return v
}
