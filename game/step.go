package game

import "math"

// Tick advances the match by dt seconds and returns the resulting
// snapshot. Order: spawn, advance, deliver. A non-positive or non-finite
// dt leaves the world unchanged.
func (m *Match) Tick(dt float64) Snapshot {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return m.Snapshot()
	}
	m.tick++
	m.now += dt

	m.spawn()

	var rates [2]unitRates
	for _, p := range Players {
		rates[p-1] = unitRates{
			gatherDuration:   m.economies[p-1].EffectiveGatherDuration(m.species[p-1].GatherDuration),
			deathProbability: m.species[p-1].DeathProbability,
		}
	}
	for i := range m.units {
		u := &m.units[i]
		u.advance(dt, rates[u.Owner-1], m.rng)
	}

	m.deliver()
	return m.Snapshot()
}

// spawn fires at most one unit per player per tick. The timer is compared,
// not accumulated, so a long gap never produces a burst.
func (m *Match) spawn() {
	for _, p := range Players {
		i := p - 1
		interval := m.economies[i].EffectiveSpawnInterval(m.species[i].SpawnInterval)
		if m.now-m.lastSpawn[i]+timeEpsilon < interval {
			continue
		}
		angle := m.rng.Float64() * 2 * math.Pi
		m.units = append(m.units, newUnit(m.nextID, p, m.species[i].SpeciesID, angle))
		m.nextID++
		m.lastSpawn[i] = m.now
	}
}

// deliver removes dead units and units back home, crediting one food per
// surviving arrival to its owner.
func (m *Match) deliver() {
	kept := m.units[:0]
	for _, u := range m.units {
		switch {
		case !u.Alive:
		case u.arrived():
			m.economies[u.Owner-1].Credit(1)
		default:
			kept = append(kept, u)
		}
	}
	for i := len(kept); i < len(m.units); i++ {
		m.units[i] = Unit{}
	}
	m.units = kept
}
