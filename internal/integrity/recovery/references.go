// Package recovery repairs corrupted save documents with safe defaults.
package recovery

import (
	"github.com/sawyersrpg/savecore/internal/core/domain"
	"github.com/sawyersrpg/savecore/internal/integrity/schema"
)

// CleanReferences resets equipment slots that reference inventory item
// IDs no longer present in the payload. The slot manager runs this
// after migration so a dangling reference never reaches the live state.
// Valid slots are left untouched. Returns the slots that were cleared.
//
// The document is modified in place; callers pass the working copy of
// the load pipeline, never a live state.
func CleanReferences(doc map[string]any) []string {
	equipRaw, ok := schema.Resolve(doc, "player.equipment")
	if !ok {
		return nil
	}
	equipment, ok := equipRaw.(map[string]any)
	if !ok {
		return nil
	}

	known := inventoryIDs(doc)

	var cleared []string
	for _, slot := range domain.EquipmentSlots {
		id, ok := equipment[slot].(string)
		if !ok || id == "" {
			continue
		}
		if _, exists := known[id]; !exists {
			equipment[slot] = nil
			cleared = append(cleared, slot)
		}
	}
	return cleared
}

func inventoryIDs(doc map[string]any) map[string]struct{} {
	ids := make(map[string]struct{})
	invRaw, ok := schema.Resolve(doc, "inventory")
	if !ok {
		return ids
	}
	inv, ok := invRaw.([]any)
	if !ok {
		return ids
	}
	for _, elem := range inv {
		obj, ok := elem.(map[string]any)
		if !ok {
			continue
		}
		if id, ok := obj["id"].(string); ok && id != "" {
			ids[id] = struct{}{}
		}
	}
	return ids
}
