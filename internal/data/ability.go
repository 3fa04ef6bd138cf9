package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AbilityInfo holds a single ability template.
type AbilityInfo struct {
	ID            int32
	Name          string
	RechargeTicks int32 // per-ability cooldown after use
	GlobalTicks   int32 // global cooldown imposed on all abilities (0 = none)
}

// AbilityTable holds all abilities indexed by ID.
type AbilityTable struct {
	abilities map[int32]*AbilityInfo
	byName    map[string]*AbilityInfo
}

// Get returns an ability by ID, or nil if not found.
func (t *AbilityTable) Get(id int32) *AbilityInfo {
	return t.abilities[id]
}

// GetByName returns an ability by its exact name, or nil if not found.
func (t *AbilityTable) GetByName(name string) *AbilityInfo {
	return t.byName[name]
}

// Count returns total loaded abilities.
func (t *AbilityTable) Count() int {
	return len(t.abilities)
}

// All returns all ability infos.
func (t *AbilityTable) All() []*AbilityInfo {
	result := make([]*AbilityInfo, 0, len(t.abilities))
	for _, a := range t.abilities {
		result = append(result, a)
	}
	return result
}

// --- YAML loading ---

type abilityEntry struct {
	ID            int32  `yaml:"id"`
	Name          string `yaml:"name"`
	RechargeTicks int32  `yaml:"recharge_ticks"`
	GlobalTicks   int32  `yaml:"global_ticks"`
}

type abilityListFile struct {
	Abilities []abilityEntry `yaml:"abilities"`
}

// LoadAbilityTable loads ability definitions from YAML.
func LoadAbilityTable(path string) (*AbilityTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read abilities: %w", err)
	}
	var f abilityListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse abilities: %w", err)
	}
	t := &AbilityTable{
		abilities: make(map[int32]*AbilityInfo, len(f.Abilities)),
		byName:    make(map[string]*AbilityInfo, len(f.Abilities)),
	}
	for i := range f.Abilities {
		e := &f.Abilities[i]
		if e.RechargeTicks < 0 || e.GlobalTicks < 0 {
			return nil, fmt.Errorf("ability %d (%s): negative cooldown", e.ID, e.Name)
		}
		t.abilities[e.ID] = &AbilityInfo{
			ID:            e.ID,
			Name:          e.Name,
			RechargeTicks: e.RechargeTicks,
			GlobalTicks:   e.GlobalTicks,
		}
		t.byName[e.Name] = t.abilities[e.ID]
	}
	return t, nil
}
