// Package schema provides declarative structural validation of save payloads.
package schema

// currentDescriptor is the rule table for the current save shape.
// Order matters: parents are declared before their children so that a
// missing parent is reported before its fields.
var currentDescriptor = NewDescriptor([]FieldRule{
	{Path: "player", Type: TypeObject, Required: true},
	{Path: "player.name", Type: TypeString, Required: true},
	{Path: "player.level", Type: TypeNumber, Required: true, Min: minPtr(1), Max: maxPtr(100)},
	{Path: "player.experience", Type: TypeNumber, Required: true, Min: minPtr(0)},
	{Path: "player.gold", Type: TypeNumber, Required: true, Min: minPtr(0)},
	{Path: "player.hp", Type: TypeNumber, Required: true, Min: minPtr(0)},
	{Path: "player.maxHp", Type: TypeNumber, Required: true, Min: minPtr(1)},
	{Path: "player.mp", Type: TypeNumber, Required: false, Min: minPtr(0)},
	{Path: "player.maxMp", Type: TypeNumber, Required: false, Min: minPtr(0)},
	{Path: "player.equipment", Type: TypeObject, Required: true},

	{Path: "inventory", Type: TypeArray, Required: true, ElementKey: "id"},
	{Path: "creatures", Type: TypeObject, Required: true},
	{Path: "currentArea", Type: TypeString, Required: true},
	{Path: "unlockedAreas", Type: TypeArray, Required: true, ElementKey: "-"},
	{Path: "storyFlags", Type: TypeObject, Required: true},
	{Path: "completedQuests", Type: TypeArray, Required: true, ElementKey: "-"},
	{Path: "breedingAttempts", Type: TypeNumber, Required: true, Min: minPtr(0)},
	{Path: "discoveredRecipes", Type: TypeArray, Required: true, ElementKey: "-"},
	{Path: "breedingMaterials", Type: TypeObject, Required: true},
	{Path: "totalPlayTime", Type: TypeNumber, Required: true, Min: minPtr(0)},
	{Path: "timestamp", Type: TypeNumber, Required: true, Min: minPtr(0)},

	{Path: "settings", Type: TypeObject, Required: false},
	{Path: "metadata", Type: TypeObject, Required: false},

	// Removed in the breeding rework; old saves may still carry it.
	{Path: "breedingStreak", Type: TypeNumber, Required: false, Deprecated: true},
})

// CurrentDescriptor returns the descriptor for the current state shape.
func CurrentDescriptor() *Descriptor {
	return currentDescriptor
}
