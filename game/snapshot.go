package game

// Snapshot is an immutable copy of the world after a tick. Nothing in it
// aliases live match state.
type Snapshot struct {
	Tick      int                `json:"tick"`
	Time      float64            `json:"time"`
	Units     []UnitSnapshot     `json:"units"`
	Economies [2]EconomySnapshot `json:"economies"`
}

type UnitSnapshot struct {
	ID        int     `json:"id"`
	Owner     int     `json:"owner"`
	SpeciesID string  `json:"speciesId"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	HX        float64 `json:"hx"`
	HY        float64 `json:"hy"`
	Phase     string  `json:"phase"`
	Remaining float64 `json:"remaining,omitempty"` // gathering countdown
	Alive     bool    `json:"alive"`
}

type EconomySnapshot struct {
	Player       int               `json:"player"`
	Food         int               `json:"food"`
	Levels       map[UpgradeID]int `json:"levels"`
	Capabilities []string          `json:"capabilities,omitempty"`
	Units        int               `json:"units"`
	Dashboard    Dashboard         `json:"dashboard"`
}

// Economy returns the entry for player, or the zero value for an
// out-of-range id.
func (s Snapshot) Economy(player int) EconomySnapshot {
	if !validPlayer(player) {
		return EconomySnapshot{}
	}
	return s.Economies[player-1]
}

// Snapshot copies the current world without advancing it.
func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		Tick:  m.tick,
		Time:  m.now,
		Units: make([]UnitSnapshot, len(m.units)),
	}
	for i, u := range m.units {
		us := UnitSnapshot{
			ID:        u.ID,
			Owner:     u.Owner,
			SpeciesID: u.SpeciesID,
			X:         u.X,
			Y:         u.Y,
			HX:        u.HX,
			HY:        u.HY,
			Phase:     u.Phase.Name(),
			Alive:     u.Alive,
		}
		if g, ok := u.Phase.(Gathering); ok {
			us.Remaining = g.Remaining
		}
		s.Units[i] = us
	}
	for _, p := range Players {
		s.Economies[p-1] = m.economySnapshot(p)
	}
	return s
}

func (m *Match) economySnapshot(player int) EconomySnapshot {
	e := m.economies[player-1]
	n := 0
	for i := range m.units {
		if m.units[i].Owner == player {
			n++
		}
	}
	return EconomySnapshot{
		Player:       player,
		Food:         e.Food(),
		Levels:       e.Levels(),
		Capabilities: e.Capabilities(),
		Units:        n,
		Dashboard:    e.Dashboard(m.species[player-1]),
	}
}
