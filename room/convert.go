package room

import (
	"errors"

	"colony/game"
	"colony/protocol"
)

func buildState(matchID string, s game.Snapshot) protocol.State {
	state := protocol.State{
		MatchID:  matchID,
		Tick:     s.Tick,
		Time:     s.Time,
		Units:    make([]protocol.UnitSnapshot, 0, len(s.Units)),
		Colonies: make([]protocol.ColonySnapshot, 0, len(s.Economies)),
	}
	for _, u := range s.Units {
		state.Units = append(state.Units, protocol.UnitSnapshot{
			ID:    u.ID,
			Owner: u.Owner,
			X:     u.X,
			Y:     u.Y,
			Phase: u.Phase,
		})
	}
	for _, e := range s.Economies {
		levels := make(map[string]int, len(e.Levels))
		for id, lvl := range e.Levels {
			levels[string(id)] = lvl
		}
		state.Colonies = append(state.Colonies, protocol.ColonySnapshot{
			Player:         e.Player,
			Food:           e.Food,
			Units:          e.Units,
			Levels:         levels,
			Capabilities:   e.Capabilities,
			SpawnInterval:  e.Dashboard.SpawnInterval,
			GatherDuration: e.Dashboard.GatherDuration,
			Mortality:      e.Dashboard.Mortality,
		})
	}
	return state
}

func buildCatalog(c *game.Catalog) []protocol.UpgradeDef {
	defs := c.All()
	out := make([]protocol.UpgradeDef, 0, len(defs))
	for _, d := range defs {
		out = append(out, protocol.UpgradeDef{
			ID:       string(d.ID),
			Title:    d.Title,
			Blurb:    d.Blurb,
			MaxLevel: d.MaxLevel,
			Costs:    d.Costs,
			Effect:   d.Effect.Kind.String(),
			Factor:   d.Effect.Factor,
			Unlocks:  d.Effect.Capability,
			Passive:  d.Passive(),
		})
	}
	return out
}

// ErrorCode maps a match error to its wire code.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, game.ErrInsufficientFunds):
		return protocol.CodeInsufficientFunds
	case errors.Is(err, game.ErrUpgradeMaxed):
		return protocol.CodeUpgradeMaxed
	case errors.Is(err, game.ErrInvalidUpgradeID):
		return protocol.CodeInvalidUpgrade
	case errors.Is(err, game.ErrInvalidPlayer), errors.Is(err, ErrSeatTaken):
		return protocol.CodeInvalidPlayer
	case errors.Is(err, ErrAlreadyRunning), errors.Is(err, ErrNotRunning),
		errors.Is(err, ErrNotPaused), errors.Is(err, ErrSpectator):
		return protocol.CodeInvalidState
	}
	return protocol.CodeBadRequest
}
