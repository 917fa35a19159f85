package game

import (
	"encoding/json"
	"fmt"
	"os"
)

// Built-in designer tables.

const CapabilityWarrior = "warrior"

const (
	UpgradeInfirmary UpgradeID = "infirmary"
	UpgradePheromone UpgradeID = "pheromone"
	UpgradeHatchery  UpgradeID = "hatchery"
)

var defaultSpecies = []SpeciesBalance{
	{SpeciesID: "FIRE", SpawnInterval: 1.2, GatherDuration: 2.0, DeathProbability: 0.20},
	{SpeciesID: "LEAF", SpawnInterval: 1.5, GatherDuration: 1.6, DeathProbability: 0.20},
}

var defaultUpgrades = []UpgradeDef{
	{
		ID:       UpgradeInfirmary,
		Title:    "Infirmary",
		Blurb:    "Accelerates larval recovery time.",
		MaxLevel: 3,
		Costs:    []int{10, 20, 40},
		Effect:   SpawnMultiplier(0.9),
		RowOrder: 0,
	},
	{
		ID:       UpgradePheromone,
		Title:    "Pheromone Trail",
		Blurb:    "Enhances forager orientation speed.",
		MaxLevel: 3,
		Costs:    []int{15, 30, 60},
		Effect:   GatherMultiplier(0.9),
		RowOrder: 1,
	},
	{
		ID:       UpgradeHatchery,
		Title:    "Warrior Hatchery",
		Blurb:    "Breeds offensive castes.",
		MaxLevel: 1,
		Costs:    []int{50},
		Effect:   Unlock(CapabilityWarrior),
		RowOrder: 0,
	},
}

func DefaultBalance() BalanceTable {
	t, err := NewBalanceTable(defaultSpecies)
	if err != nil {
		panic(err)
	}
	return t
}

func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultUpgrades)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadBalance reads a JSON array of species balance entries.
func LoadBalance(path string) (BalanceTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance table: %w", err)
	}
	var entries []SpeciesBalance
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse balance table %s: %w", path, err)
	}
	return NewBalanceTable(entries)
}

// LoadCatalog reads a JSON array of upgrade definitions; array order is
// catalog order.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read upgrade catalog: %w", err)
	}
	var defs []UpgradeDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse upgrade catalog %s: %w", path, err)
	}
	return NewCatalog(defs)
}
