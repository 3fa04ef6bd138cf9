package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Attribute scope: character attributes exist only on player characters,
// being attributes on every living thing.
const (
	ScopeBeing     = "being"
	ScopeCharacter = "character"
)

// Well-known attribute ids. The table in data/attributes.yaml must agree;
// derivation formulas are keyed on these.
const (
	AttrStrength     int32 = 1
	AttrAgility      int32 = 2
	AttrVitality     int32 = 3
	AttrIntelligence int32 = 4
	AttrDexterity    int32 = 5
	AttrWillpower    int32 = 6
	AttrAccuracy     int32 = 7
	AttrDefense      int32 = 8
	AttrDodge        int32 = 9
	AttrMagicPower   int32 = 10
	AttrMagicDefense int32 = 11
	AttrSpeed        int32 = 12
	AttrMaxHP        int32 = 13
	AttrHP           int32 = 14
)

// AttributeInfo holds a single attribute template.
type AttributeInfo struct {
	ID          int32
	Name        string
	Scope       string
	Modifiable  bool    // can the player spend points on it
	Minimum     int32   // floor for the base value
	Default     int32   // starting base for new characters
	DerivedFrom []int32 // source attribute IDs this one is recomputed from
}

// AttributeTable holds all attribute templates indexed by ID, plus the
// reverse derivation links used to propagate changes.
type AttributeTable struct {
	attributes map[int32]*AttributeInfo
	byName     map[string]*AttributeInfo
	dependents map[int32][]int32 // source ID → attributes derived from it
	ordered    []int32           // file order, for stable iteration
}

// Get returns an attribute by ID, or nil if not found.
func (t *AttributeTable) Get(id int32) *AttributeInfo {
	return t.attributes[id]
}

// GetByName returns an attribute by its exact name, or nil if not found.
func (t *AttributeTable) GetByName(name string) *AttributeInfo {
	return t.byName[name]
}

// Count returns total loaded attributes.
func (t *AttributeTable) Count() int {
	return len(t.attributes)
}

// IDs returns all attribute IDs in file order.
func (t *AttributeTable) IDs() []int32 {
	return t.ordered
}

// Dependents returns the IDs of attributes derived from the given source.
// Order follows the data file so propagation is deterministic.
func (t *AttributeTable) Dependents(id int32) []int32 {
	return t.dependents[id]
}

// --- YAML loading ---

type attributeEntry struct {
	ID          int32   `yaml:"id"`
	Name        string  `yaml:"name"`
	Scope       string  `yaml:"scope"`
	Modifiable  bool    `yaml:"modifiable"`
	Minimum     int32   `yaml:"minimum"`
	Default     int32   `yaml:"default"`
	DerivedFrom []int32 `yaml:"derived_from"`
}

type attributeListFile struct {
	Attributes []attributeEntry `yaml:"attributes"`
}

// LoadAttributeTable loads attribute definitions from YAML.
func LoadAttributeTable(path string) (*AttributeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attributes: %w", err)
	}
	var f attributeListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse attributes: %w", err)
	}
	t := &AttributeTable{
		attributes: make(map[int32]*AttributeInfo, len(f.Attributes)),
		byName:     make(map[string]*AttributeInfo, len(f.Attributes)),
		dependents: make(map[int32][]int32),
		ordered:    make([]int32, 0, len(f.Attributes)),
	}
	for i := range f.Attributes {
		e := &f.Attributes[i]
		if e.Scope != ScopeBeing && e.Scope != ScopeCharacter {
			return nil, fmt.Errorf("attribute %d (%s): unknown scope %q", e.ID, e.Name, e.Scope)
		}
		if _, dup := t.attributes[e.ID]; dup {
			return nil, fmt.Errorf("attribute %d (%s): duplicate id", e.ID, e.Name)
		}
		t.attributes[e.ID] = &AttributeInfo{
			ID:          e.ID,
			Name:        e.Name,
			Scope:       e.Scope,
			Modifiable:  e.Modifiable,
			Minimum:     e.Minimum,
			Default:     e.Default,
			DerivedFrom: e.DerivedFrom,
		}
		t.byName[e.Name] = t.attributes[e.ID]
		t.ordered = append(t.ordered, e.ID)
	}
	// Derivation sources must exist; the reverse links drive propagation.
	for _, id := range t.ordered {
		info := t.attributes[id]
		for _, src := range info.DerivedFrom {
			if t.attributes[src] == nil {
				return nil, fmt.Errorf("attribute %d (%s): derived from unknown attribute %d", info.ID, info.Name, src)
			}
			t.dependents[src] = append(t.dependents[src], info.ID)
		}
	}
	return t, nil
}
