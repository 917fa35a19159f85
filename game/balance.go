package game

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// SpeciesBalance holds the base timing knobs of one species.
type SpeciesBalance struct {
	SpeciesID        string  `json:"speciesId"`
	SpawnInterval    float64 `json:"spawnInterval"`    // seconds between workers
	GatherDuration   float64 `json:"gatherDuration"`   // seconds spent gathering
	DeathProbability float64 `json:"deathProbability"` // 0..1 chance to die at the boundary
}

func (b SpeciesBalance) validate() error {
	if b.SpeciesID == "" {
		return fmt.Errorf("%w: species with empty id", ErrInvalidConfig)
	}
	if !(b.SpawnInterval > 0) || math.IsInf(b.SpawnInterval, 0) {
		return fmt.Errorf("%w: species %q spawn interval %v must be > 0", ErrInvalidConfig, b.SpeciesID, b.SpawnInterval)
	}
	if !(b.GatherDuration > 0) || math.IsInf(b.GatherDuration, 0) {
		return fmt.Errorf("%w: species %q gather duration %v must be > 0", ErrInvalidConfig, b.SpeciesID, b.GatherDuration)
	}
	if !(b.DeathProbability >= 0 && b.DeathProbability <= 1) {
		return fmt.Errorf("%w: species %q death probability %v outside [0,1]", ErrInvalidConfig, b.SpeciesID, b.DeathProbability)
	}
	return nil
}

// BalanceTable is keyed by species id.
type BalanceTable map[string]SpeciesBalance

// NewBalanceTable validates entries and indexes them by species id.
func NewBalanceTable(entries []SpeciesBalance) (BalanceTable, error) {
	t := make(BalanceTable, len(entries))
	for _, e := range entries {
		if err := e.validate(); err != nil {
			return nil, err
		}
		if _, dup := t[e.SpeciesID]; dup {
			return nil, fmt.Errorf("%w: duplicate species %q", ErrInvalidConfig, e.SpeciesID)
		}
		t[e.SpeciesID] = e
	}
	return t, nil
}

// SpeciesIDs returns the table's species ids in sorted order.
func (t BalanceTable) SpeciesIDs() []string {
	ids := make([]string, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type UpgradeID string

type EffectKind uint8

const (
	EffectSpawnRate EffectKind = iota + 1
	EffectGatherRate
	EffectUnlock
)

var effectKindNames = map[EffectKind]string{
	EffectSpawnRate:  "spawn",
	EffectGatherRate: "gather",
	EffectUnlock:     "unlock",
}

func (k EffectKind) String() string {
	if s, ok := effectKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("EffectKind(%d)", uint8(k))
}

func (k EffectKind) MarshalText() ([]byte, error) {
	s, ok := effectKindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown effect kind %d", uint8(k))
	}
	return []byte(s), nil
}

func (k *EffectKind) UnmarshalText(b []byte) error {
	for kind, name := range effectKindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown effect kind %q", b)
}

// UpgradeEffect describes what owning levels of an upgrade does.
// Factor applies to the multiplier kinds, Capability to EffectUnlock.
type UpgradeEffect struct {
	Kind       EffectKind `json:"kind"`
	Factor     float64    `json:"factor,omitempty"`
	Capability string     `json:"capability,omitempty"`
}

func SpawnMultiplier(factor float64) UpgradeEffect {
	return UpgradeEffect{Kind: EffectSpawnRate, Factor: factor}
}

func GatherMultiplier(factor float64) UpgradeEffect {
	return UpgradeEffect{Kind: EffectGatherRate, Factor: factor}
}

func Unlock(capability string) UpgradeEffect {
	return UpgradeEffect{Kind: EffectUnlock, Capability: capability}
}

type UpgradeDef struct {
	ID       UpgradeID     `json:"id"`
	Title    string        `json:"title,omitempty"`
	Blurb    string        `json:"blurb,omitempty"`
	MaxLevel int           `json:"maxLevel"`
	Costs    []int         `json:"costs"` // one entry per level
	Effect   UpgradeEffect `json:"effect"`
	RowOrder int           `json:"rowOrder,omitempty"`
}

// Passive reports whether the upgrade applies continuously, as opposed to
// a one-shot unlock.
func (d UpgradeDef) Passive() bool {
	return d.Effect.Kind != EffectUnlock
}

func (d UpgradeDef) validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: upgrade with empty id", ErrInvalidConfig)
	}
	if d.MaxLevel < 1 {
		return fmt.Errorf("%w: upgrade %q max level %d must be >= 1", ErrInvalidConfig, d.ID, d.MaxLevel)
	}
	if len(d.Costs) != d.MaxLevel {
		return fmt.Errorf("%w: upgrade %q has %d costs for %d levels", ErrInvalidConfig, d.ID, len(d.Costs), d.MaxLevel)
	}
	for i, c := range d.Costs {
		if c <= 0 {
			return fmt.Errorf("%w: upgrade %q level %d cost %d must be > 0", ErrInvalidConfig, d.ID, i+1, c)
		}
	}
	switch d.Effect.Kind {
	case EffectSpawnRate, EffectGatherRate:
		f := d.Effect.Factor
		if !(f > 0) || math.IsInf(f, 0) {
			return fmt.Errorf("%w: upgrade %q factor %v must be > 0", ErrInvalidConfig, d.ID, f)
		}
	case EffectUnlock:
		if d.Effect.Capability == "" {
			return fmt.Errorf("%w: upgrade %q unlocks an unnamed capability", ErrInvalidConfig, d.ID)
		}
	default:
		return fmt.Errorf("%w: upgrade %q has unknown effect kind %d", ErrInvalidConfig, d.ID, d.Effect.Kind)
	}
	return nil
}

// Catalog is the ordered, read-only list of upgrade definitions.
type Catalog struct {
	defs  []UpgradeDef
	index map[UpgradeID]int
}

func NewCatalog(defs []UpgradeDef) (*Catalog, error) {
	c := &Catalog{
		defs:  make([]UpgradeDef, 0, len(defs)),
		index: make(map[UpgradeID]int, len(defs)),
	}
	for _, d := range defs {
		if err := d.validate(); err != nil {
			return nil, err
		}
		if _, dup := c.index[d.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate upgrade %q", ErrInvalidConfig, d.ID)
		}
		d.Costs = append([]int(nil), d.Costs...)
		c.index[d.ID] = len(c.defs)
		c.defs = append(c.defs, d)
	}
	return c, nil
}

func (c *Catalog) Lookup(id UpgradeID) (UpgradeDef, bool) {
	i, ok := c.index[id]
	if !ok {
		return UpgradeDef{}, false
	}
	return c.defs[i], true
}

// All returns a copy of the definitions in catalog order.
func (c *Catalog) All() []UpgradeDef {
	out := make([]UpgradeDef, len(c.defs))
	for i, d := range c.defs {
		d.Costs = append([]int(nil), d.Costs...)
		out[i] = d
	}
	return out
}

func (c *Catalog) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.defs)
}
