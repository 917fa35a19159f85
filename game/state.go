package game

import (
	"fmt"
	"math/rand"
)

// Internal truth authoritative match state

// Selection names the species one player fields.
type Selection struct {
	Player    int    `json:"player"`
	SpeciesID string `json:"speciesId"`
}

type MatchSettings struct {
	Selections []Selection `json:"selections"`
	Seed       int64       `json:"seed"`
}

// Match is the world of one two-player game. It is not safe for concurrent
// use; the room driver serializes every call.
type Match struct {
	catalog   *Catalog
	species   [2]SpeciesBalance
	economies [2]*Economy
	lastSpawn [2]float64
	units     []Unit
	rng       Random
	now       float64
	tick      int
	nextID    int
}

// NewMatch validates the inputs and builds a fresh world: no units, empty
// stockpiles, no upgrades, both spawn timers at zero.
func NewMatch(settings MatchSettings, balance BalanceTable, catalog *Catalog) (*Match, error) {
	return newMatch(settings, balance, catalog, rand.New(rand.NewSource(settings.Seed)))
}

// NewMatchWithRandom is NewMatch with a caller-supplied random source.
func NewMatchWithRandom(settings MatchSettings, balance BalanceTable, catalog *Catalog, rng Random) (*Match, error) {
	if rng == nil {
		return nil, fmt.Errorf("%w: nil random source", ErrInvalidConfig)
	}
	return newMatch(settings, balance, catalog, rng)
}

func newMatch(settings MatchSettings, balance BalanceTable, catalog *Catalog, rng Random) (*Match, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: nil upgrade catalog", ErrInvalidConfig)
	}
	if len(settings.Selections) != len(Players) {
		return nil, fmt.Errorf("%w: need %d species selections, got %d", ErrInvalidConfig, len(Players), len(settings.Selections))
	}
	m := &Match{
		catalog: catalog,
		rng:     rng,
		nextID:  1,
	}
	seen := make(map[int]bool)
	for _, sel := range settings.Selections {
		if !validPlayer(sel.Player) {
			return nil, fmt.Errorf("%w: selection for player %d: %w", ErrInvalidConfig, sel.Player, ErrInvalidPlayer)
		}
		if seen[sel.Player] {
			return nil, fmt.Errorf("%w: player %d selected twice", ErrInvalidConfig, sel.Player)
		}
		seen[sel.Player] = true
		b, ok := balance[sel.SpeciesID]
		if !ok {
			return nil, fmt.Errorf("%w: no balance entry for species %q", ErrInvalidConfig, sel.SpeciesID)
		}
		if err := b.validate(); err != nil {
			return nil, err
		}
		b.SpeciesID = sel.SpeciesID
		m.species[sel.Player-1] = b
		m.economies[sel.Player-1] = NewEconomy(catalog)
	}
	return m, nil
}

func (m *Match) Now() float64 { return m.now }

func (m *Match) TickCount() int { return m.tick }

func (m *Match) Catalog() *Catalog { return m.catalog }

// Species returns the balance entry player fields.
func (m *Match) Species(player int) (SpeciesBalance, error) {
	if !validPlayer(player) {
		return SpeciesBalance{}, fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	return m.species[player-1], nil
}

// Purchase buys the next level of id for player. A failure leaves the
// match untouched.
func (m *Match) Purchase(player int, id UpgradeID) error {
	if !validPlayer(player) {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	return m.economies[player-1].Purchase(id)
}

// Economy returns a value copy of player's economy.
func (m *Match) Economy(player int) (EconomySnapshot, error) {
	if !validPlayer(player) {
		return EconomySnapshot{}, fmt.Errorf("%w: %d", ErrInvalidPlayer, player)
	}
	return m.economySnapshot(player), nil
}
