// Package migrate upgrades save documents between equipment schema
// versions.
package migrate

import (
	"fmt"

	"github.com/sawyersrpg/savecore/internal/core/domain"
)

// Transform is one ordered migration step. Apply mutates the document
// in place and only runs when the stored version equals From; the
// engine stamps To afterwards.
type Transform struct {
	From  string
	To    string
	Apply func(doc map[string]any) error
}

// Engine chains transforms sequentially until no transform matches the
// document's version tag.
type Engine struct {
	transforms []Transform
}

// NewEngine creates a migration engine with the built-in transform
// chain.
func NewEngine() *Engine {
	return &Engine{
		transforms: []Transform{
			{From: domain.LegacyEquipmentVersion, To: domain.CurrentEquipmentVersion, Apply: upgradeEquipmentSlots},
		},
	}
}

// Run upgrades doc in place to the current version and returns the
// version the document started at. A document already at the current
// version passes through untouched. A version with no transform path
// to the current version fails with ErrMigrationPath.
func (e *Engine) Run(doc map[string]any) (string, error) {
	started := domain.DocumentVersion(doc)

	version := started
	for version != domain.CurrentEquipmentVersion {
		step, ok := e.next(version)
		if !ok {
			return started, domain.ErrMigrationPath.WithDetails(
				fmt.Sprintf("no transform from version %q to %q", version, domain.CurrentEquipmentVersion))
		}
		if err := step.Apply(doc); err != nil {
			return started, domain.ErrMigrationApply.
				WithDetails(fmt.Sprintf("transform %s -> %s", step.From, step.To)).
				WithCause(err)
		}
		stampVersion(doc, step.To)
		version = step.To
	}

	return started, nil
}

func (e *Engine) next(version string) (Transform, bool) {
	for _, t := range e.transforms {
		if t.From == version {
			return t, true
		}
	}
	return Transform{}, false
}

// stampVersion records the new version under metadata.equipmentVersion,
// creating the metadata object when absent.
func stampVersion(doc map[string]any, version string) {
	meta, ok := doc["metadata"].(map[string]any)
	if !ok {
		meta = map[string]any{}
		doc["metadata"] = meta
	}
	meta["equipmentVersion"] = version
}

// upgradeEquipmentSlots converts the legacy three-slot equipment layout
// to the current ten-slot layout. The legacy accessory moves to the
// first free slot among necklace, ring1 and charm. Legacy keys with no
// mapping are kept under their original name.
func upgradeEquipmentSlots(doc map[string]any) error {
	player, ok := doc["player"].(map[string]any)
	if !ok {
		return fmt.Errorf("player object missing")
	}

	legacy, ok := player["equipment"].(map[string]any)
	if !ok {
		legacy = map[string]any{}
	}

	upgraded := map[string]any{}
	for _, slot := range domain.EquipmentSlots {
		upgraded[slot] = nil
	}

	for key, value := range legacy {
		if key == "accessory" {
			continue
		}
		// weapon and armor map onto themselves; unknown legacy keys are
		// kept under their original name.
		upgraded[key] = value
	}

	// The accessory is placed last so an already-occupied target slot is
	// never clobbered. With every target taken it stays under its legacy
	// key rather than being dropped.
	if accessory := legacy["accessory"]; accessory != nil {
		placed := false
		for _, slot := range domain.AccessoryMigrationOrder {
			if upgraded[slot] == nil {
				upgraded[slot] = accessory
				placed = true
				break
			}
		}
		if !placed {
			upgraded["accessory"] = accessory
		}
	}

	player["equipment"] = upgraded
	return nil
}
