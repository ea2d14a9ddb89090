// Package domain defines the core domain models for Savecore.
package domain

// Equipment schema versions. Version 0.0 is the legacy three-slot
// layout (weapon, armor, accessory); version 1.0 is the current
// ten-slot layout.
const (
	LegacyEquipmentVersion  = "0.0"
	CurrentEquipmentVersion = "1.0"
)

// EquipmentSlots lists the current slot names in canonical order.
var EquipmentSlots = []string{
	"weapon", "armor", "helmet", "necklace", "shield",
	"gloves", "boots", "ring1", "ring2", "charm",
}

// AccessoryMigrationOrder is the fixed priority order in which a legacy
// accessory value is placed during migration: the first empty slot
// among these receives it. This order is product policy, not derived
// from game rules.
var AccessoryMigrationOrder = []string{"necklace", "ring1", "charm"}

// Equipment holds the current ten-slot equipment layout. A nil slot is
// empty; migration guarantees all ten keys are present in stored
// payloads, null where unfilled.
type Equipment struct {
	Weapon   *string `json:"weapon"`
	Armor    *string `json:"armor"`
	Helmet   *string `json:"helmet"`
	Necklace *string `json:"necklace"`
	Shield   *string `json:"shield"`
	Gloves   *string `json:"gloves"`
	Boots    *string `json:"boots"`
	Ring1    *string `json:"ring1"`
	Ring2    *string `json:"ring2"`
	Charm    *string `json:"charm"`
}

// Get returns the item ID in the named slot, or "" when empty.
func (e *Equipment) Get(slot string) string {
	p := e.ref(slot)
	if p == nil || *p == nil {
		return ""
	}
	return **p
}

// Set places an item ID into the named slot; empty id clears the slot.
// Unknown slot names are ignored.
func (e *Equipment) Set(slot, id string) {
	p := e.ref(slot)
	if p == nil {
		return
	}
	if id == "" {
		*p = nil
		return
	}
	*p = &id
}

// Equipped returns slot -> item ID for all occupied slots.
func (e *Equipment) Equipped() map[string]string {
	out := make(map[string]string)
	for _, slot := range EquipmentSlots {
		if id := e.Get(slot); id != "" {
			out[slot] = id
		}
	}
	return out
}

func (e *Equipment) ref(slot string) **string {
	switch slot {
	case "weapon":
		return &e.Weapon
	case "armor":
		return &e.Armor
	case "helmet":
		return &e.Helmet
	case "necklace":
		return &e.Necklace
	case "shield":
		return &e.Shield
	case "gloves":
		return &e.Gloves
	case "boots":
		return &e.Boots
	case "ring1":
		return &e.Ring1
	case "ring2":
		return &e.Ring2
	case "charm":
		return &e.Charm
	default:
		return nil
	}
}
