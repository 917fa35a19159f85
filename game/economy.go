package game

import (
	"fmt"
	"math"
	"sort"
)

// Economy is one player's food stockpile plus owned upgrade levels.
type Economy struct {
	catalog *Catalog
	food    int
	levels  map[UpgradeID]int
}

func NewEconomy(catalog *Catalog) *Economy {
	return &Economy{
		catalog: catalog,
		levels:  make(map[UpgradeID]int),
	}
}

func (e *Economy) Food() int { return e.food }

// Level returns the owned level of id, 0 if never bought.
func (e *Economy) Level(id UpgradeID) int { return e.levels[id] }

// Levels returns a copy of the owned levels; unowned upgrades are absent.
func (e *Economy) Levels() map[UpgradeID]int {
	out := make(map[UpgradeID]int, len(e.levels))
	for id, lvl := range e.levels {
		out[id] = lvl
	}
	return out
}

// Credit adds delivered food. Non-positive amounts are ignored.
func (e *Economy) Credit(amount int) {
	if amount <= 0 {
		return
	}
	e.food += amount
}

// Purchase buys the next level of id. On error nothing changes.
func (e *Economy) Purchase(id UpgradeID) error {
	def, ok := e.catalog.Lookup(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidUpgradeID, id)
	}
	lvl := e.levels[id]
	if lvl >= def.MaxLevel {
		return fmt.Errorf("%w: %q level %d/%d", ErrUpgradeMaxed, id, lvl, def.MaxLevel)
	}
	cost := def.Costs[lvl]
	if e.food < cost {
		return fmt.Errorf("%w: %q costs %d, have %d", ErrInsufficientFunds, id, cost, e.food)
	}
	e.food -= cost
	e.levels[id] = lvl + 1
	return nil
}

// EffectiveSpawnInterval applies every owned spawn multiplier to base.
func (e *Economy) EffectiveSpawnInterval(base float64) float64 {
	return base * e.multiplier(EffectSpawnRate)
}

// EffectiveGatherDuration applies every owned gather multiplier to base.
func (e *Economy) EffectiveGatherDuration(base float64) float64 {
	return base * e.multiplier(EffectGatherRate)
}

func (e *Economy) multiplier(kind EffectKind) float64 {
	m := 1.0
	for _, d := range e.catalog.defs {
		if d.Effect.Kind != kind {
			continue
		}
		if lvl := e.levels[d.ID]; lvl > 0 {
			m *= math.Pow(d.Effect.Factor, float64(lvl))
		}
	}
	return m
}

func (e *Economy) HasCapability(name string) bool {
	for _, d := range e.catalog.defs {
		if d.Effect.Kind == EffectUnlock && d.Effect.Capability == name && e.levels[d.ID] >= 1 {
			return true
		}
	}
	return false
}

// Capabilities lists the owned unlocks in sorted order.
func (e *Economy) Capabilities() []string {
	var out []string
	seen := make(map[string]bool)
	for _, d := range e.catalog.defs {
		if d.Effect.Kind != EffectUnlock || e.levels[d.ID] < 1 || seen[d.Effect.Capability] {
			continue
		}
		seen[d.Effect.Capability] = true
		out = append(out, d.Effect.Capability)
	}
	sort.Strings(out)
	return out
}

// Dashboard is the HUD view of a colony's effective rates.
type Dashboard struct {
	SpawnInterval  float64 `json:"spawnInterval"`
	GatherDuration float64 `json:"gatherDuration"`
	Mortality      float64 `json:"mortality"`
}

func (e *Economy) Dashboard(b SpeciesBalance) Dashboard {
	return Dashboard{
		SpawnInterval:  e.EffectiveSpawnInterval(b.SpawnInterval),
		GatherDuration: e.EffectiveGatherDuration(b.GatherDuration),
		Mortality:      b.DeathProbability,
	}
}
