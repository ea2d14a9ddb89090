// Package domain defines the core domain models for Savecore.
package domain

import (
	"encoding/json"
	"fmt"
)

// GameState is the full save payload. It is owned by the game's state
// reducer; this layer only reads and writes snapshots of it. JSON field
// names match the on-disk save format.
type GameState struct {
	Player            Player              `json:"player"`
	Inventory         []InventoryItem     `json:"inventory"`
	Creatures         map[string]Creature `json:"creatures"`
	CurrentArea       string              `json:"currentArea"`
	UnlockedAreas     []string            `json:"unlockedAreas"`
	StoryFlags        map[string]bool     `json:"storyFlags"`
	CompletedQuests   []string            `json:"completedQuests"`
	BreedingAttempts  int                 `json:"breedingAttempts"`
	DiscoveredRecipes []string            `json:"discoveredRecipes"`
	BreedingMaterials map[string]int      `json:"breedingMaterials"`

	// TotalPlayTime is accumulated play time in milliseconds, matching
	// the Timestamp unit.
	TotalPlayTime int64 `json:"totalPlayTime"`

	// Timestamp is the last save time (Unix milliseconds).
	Timestamp int64 `json:"timestamp"`

	// Settings holds player preferences. Never required for a load to
	// succeed; recovery replaces it wholesale when damaged.
	Settings map[string]any `json:"settings,omitempty"`

	Metadata StateMetadata `json:"metadata"`
}

// StateMetadata carries schema version tags for migratable subtrees.
type StateMetadata struct {
	// EquipmentVersion tags the equipment slot layout. An absent tag is
	// treated as the oldest known version ("0.0").
	EquipmentVersion string `json:"equipmentVersion,omitempty"`
}

// Player is the player character subtree of a save.
type Player struct {
	Name       string    `json:"name"`
	Level      int       `json:"level"`
	Experience int64     `json:"experience"`
	Gold       int64     `json:"gold"`
	HP         int       `json:"hp"`
	MaxHP      int       `json:"maxHp"`
	MP         int       `json:"mp"`
	MaxMP      int       `json:"maxMp"`
	Class      string    `json:"class,omitempty"`
	Equipment  Equipment `json:"equipment"`
}

// InventoryItem is one stack in the player inventory. ID is the item's
// catalog identifier and the identity key deep validation checks for.
type InventoryItem struct {
	ID         string `json:"id"`
	Quantity   int    `json:"quantity"`
	ObtainedAt int64  `json:"obtainedAt,omitempty"`
}

// Creature is one captured creature in the collection, keyed by its
// instance ID in GameState.Creatures.
type Creature struct {
	ID         string         `json:"id"`
	Species    string         `json:"species"`
	Level      int            `json:"level"`
	Nickname   string         `json:"nickname,omitempty"`
	Genes      map[string]int `json:"genes,omitempty"`
	CapturedAt int64          `json:"capturedAt,omitempty"`
}

// NewGameState returns a fresh new-game state with safe starting
// values. Recovery uses the same defaults when substituting missing
// required subtrees.
func NewGameState() *GameState {
	return &GameState{
		Player:            DefaultPlayer(),
		Inventory:         []InventoryItem{},
		Creatures:         map[string]Creature{},
		CurrentArea:       "ashwood_village",
		UnlockedAreas:     []string{"ashwood_village"},
		StoryFlags:        map[string]bool{},
		CompletedQuests:   []string{},
		DiscoveredRecipes: []string{},
		BreedingMaterials: map[string]int{},
		Metadata:          StateMetadata{EquipmentVersion: CurrentEquipmentVersion},
	}
}

// DefaultPlayer returns the level-1 starting player.
func DefaultPlayer() Player {
	return Player{
		Name:      "Sawyer",
		Level:     1,
		HP:        20,
		MaxHP:     20,
		MP:        5,
		MaxMP:     5,
		Equipment: Equipment{},
	}
}

// ToDocument converts the state into a decoded JSON document suitable
// for the validation/recovery/migration pipeline.
func (s *GameState) ToDocument() (map[string]any, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, ErrInternal.WithCause(fmt.Errorf("encode state: %w", err))
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, ErrInternal.WithCause(fmt.Errorf("decode state: %w", err))
	}
	return doc, nil
}

// StateFromDocument binds a repaired/migrated document back to the
// typed model. Unknown keys preserved by migration are dropped here;
// they remain in the stored record.
func StateFromDocument(doc map[string]any) (*GameState, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, ErrInternal.WithCause(fmt.Errorf("encode document: %w", err))
	}
	var state GameState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, ErrPayloadMalformed.WithCause(err)
	}
	return &state, nil
}

// InventoryIDs returns the set of item IDs currently in the inventory.
func (s *GameState) InventoryIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(s.Inventory))
	for _, item := range s.Inventory {
		ids[item.ID] = struct{}{}
	}
	return ids
}

// Clone creates a deep copy of the state via JSON round trip. Save and
// sync snapshots use this so in-flight operations never observe later
// mutations of the live state.
func (s *GameState) Clone() (*GameState, error) {
	doc, err := s.ToDocument()
	if err != nil {
		return nil, err
	}
	return StateFromDocument(doc)
}
