package domain

import (
	"testing"
)

func TestNewGameState_Defaults(t *testing.T) {
	s := NewGameState()

	if s.Player.Level != 1 {
		t.Errorf("Player.Level = %d, want 1", s.Player.Level)
	}
	if s.Player.HP <= 0 || s.Player.HP != s.Player.MaxHP {
		t.Errorf("starting HP = %d/%d, want full and positive", s.Player.HP, s.Player.MaxHP)
	}
	if s.Metadata.EquipmentVersion != CurrentEquipmentVersion {
		t.Errorf("EquipmentVersion = %q, want %q", s.Metadata.EquipmentVersion, CurrentEquipmentVersion)
	}
	if s.Inventory == nil || s.Creatures == nil || s.StoryFlags == nil {
		t.Error("collections should be initialized, not nil")
	}
	if len(s.UnlockedAreas) == 0 || s.CurrentArea != s.UnlockedAreas[0] {
		t.Error("starting area should be unlocked")
	}
}

func TestGameState_DocumentRoundTrip(t *testing.T) {
	s := NewGameState()
	s.Player.Gold = 340
	s.Player.Experience = 1200
	s.Player.Equipment.Set("weapon", "iron_sword")
	s.Inventory = append(s.Inventory, InventoryItem{ID: "iron_sword", Quantity: 1})
	s.Creatures["crt-1"] = Creature{ID: "crt-1", Species: "emberfox", Level: 3}
	s.StoryFlags["met_elder"] = true

	doc, err := s.ToDocument()
	if err != nil {
		t.Fatalf("ToDocument() error = %v", err)
	}

	back, err := StateFromDocument(doc)
	if err != nil {
		t.Fatalf("StateFromDocument() error = %v", err)
	}

	if back.Player.Gold != 340 {
		t.Errorf("Gold = %d, want 340", back.Player.Gold)
	}
	if back.Player.Equipment.Get("weapon") != "iron_sword" {
		t.Errorf("weapon = %q, want iron_sword", back.Player.Equipment.Get("weapon"))
	}
	if got := back.Creatures["crt-1"].Species; got != "emberfox" {
		t.Errorf("creature species = %q, want emberfox", got)
	}
	if !back.StoryFlags["met_elder"] {
		t.Error("story flag lost in round trip")
	}
}

func TestGameState_Clone_Isolated(t *testing.T) {
	s := NewGameState()
	s.Inventory = append(s.Inventory, InventoryItem{ID: "potion", Quantity: 3})

	clone, err := s.Clone()
	if err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	// Mutating the original must not be visible in the clone.
	s.Inventory[0].Quantity = 99
	s.Player.Gold = 777

	if clone.Inventory[0].Quantity != 3 {
		t.Errorf("clone inventory quantity = %d, want 3", clone.Inventory[0].Quantity)
	}
	if clone.Player.Gold != 0 {
		t.Errorf("clone gold = %d, want 0", clone.Player.Gold)
	}
}

func TestInventoryIDs(t *testing.T) {
	s := NewGameState()
	s.Inventory = []InventoryItem{{ID: "potion"}, {ID: "iron_sword"}}

	ids := s.InventoryIDs()
	if len(ids) != 2 {
		t.Fatalf("InventoryIDs() size = %d, want 2", len(ids))
	}
	if _, ok := ids["potion"]; !ok {
		t.Error("missing potion")
	}
}

func TestDocumentVersion(t *testing.T) {
	tests := []struct {
		name string
		doc  map[string]any
		want string
	}{
		{"tagged", map[string]any{"metadata": map[string]any{"equipmentVersion": "1.0"}}, "1.0"},
		{"missing metadata", map[string]any{}, LegacyEquipmentVersion},
		{"empty tag", map[string]any{"metadata": map[string]any{"equipmentVersion": ""}}, LegacyEquipmentVersion},
		{"metadata wrong type", map[string]any{"metadata": "nope"}, LegacyEquipmentVersion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DocumentVersion(tt.doc); got != tt.want {
				t.Errorf("DocumentVersion() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSlotKey(t *testing.T) {
	if got := SlotKey(0); got != "sawyers_rpg_save_slot_0" {
		t.Errorf("SlotKey(0) = %q", got)
	}
	if got := SlotKey(7); got != "sawyers_rpg_save_slot_7" {
		t.Errorf("SlotKey(7) = %q", got)
	}
}
