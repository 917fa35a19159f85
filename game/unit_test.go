package game

import (
	"math"
	"testing"
)

func TestOutboundMovesAlongHeading(t *testing.T) {
	u := newUnit(1, Player1, "FIRE", 0)
	u.advance(1, unitRates{gatherDuration: 1}, fixedRandom(0.99))
	if math.Abs(u.X-UnitSpeed) > 1e-12 || math.Abs(u.Y) > 1e-12 {
		t.Fatalf("position after 1s = (%f,%f), want (%f,0)", u.X, u.Y, UnitSpeed)
	}
	if _, ok := u.Phase.(Outbound); !ok {
		t.Fatalf("phase=%s, want outbound", u.Phase.Name())
	}
}

func TestBoundarySurvivorStartsGathering(t *testing.T) {
	u := newUnit(1, Player1, "FIRE", 0)
	u.X = FieldBound - 0.001
	u.advance(0.1, unitRates{gatherDuration: 2, deathProbability: 0.2}, fixedRandom(0.2))
	g, ok := u.Phase.(Gathering)
	if !ok {
		t.Fatalf("phase=%s, want gathering", u.Phase.Name())
	}
	if g.Remaining != 2 || !u.Alive {
		t.Fatalf("gathering=%+v alive=%v", g, u.Alive)
	}
}

func TestBoundaryDeathMarksUnitDead(t *testing.T) {
	u := newUnit(1, Player1, "FIRE", math.Pi/2)
	u.Y = FieldBound - 0.001
	u.advance(0.1, unitRates{gatherDuration: 2, deathProbability: 0.2}, fixedRandom(0.19))
	if _, ok := u.Phase.(Inbound); !ok || u.Alive {
		t.Fatalf("phase=%s alive=%v, want dead inbound", u.Phase.Name(), u.Alive)
	}
	if !u.outsideField() {
		t.Fatalf("dead unit left inside the field at (%f,%f)", u.X, u.Y)
	}
	if u.arrived() {
		t.Fatalf("dead unit must never count as arrived")
	}
}

func TestZeroDeathProbabilityNeverKills(t *testing.T) {
	u := newUnit(1, Player1, "FIRE", 0)
	u.X = FieldBound
	u.advance(0.1, unitRates{gatherDuration: 1}, fixedRandom(0))
	if !u.Alive {
		t.Fatalf("unit died with zero death probability")
	}
}

func TestGatheringCountsDownThenReverses(t *testing.T) {
	u := newUnit(1, Player1, "FIRE", 0)
	u.X = 1.2
	u.Phase = Gathering{Remaining: 0.5}
	u.advance(0.3, unitRates{}, fixedRandom(0))
	if g, ok := u.Phase.(Gathering); !ok || math.Abs(g.Remaining-0.2) > 1e-12 {
		t.Fatalf("phase=%#v, want gathering with 0.2 left", u.Phase)
	}
	if u.X != 1.2 {
		t.Fatalf("gathering unit moved to %f", u.X)
	}
	u.advance(0.3, unitRates{}, fixedRandom(0))
	if _, ok := u.Phase.(Inbound); !ok {
		t.Fatalf("phase=%s, want inbound", u.Phase.Name())
	}
	if u.HX != -1 {
		t.Fatalf("heading not reversed: hx=%f", u.HX)
	}
}

func TestInboundArrival(t *testing.T) {
	u := newUnit(1, Player1, "FIRE", math.Pi)
	u.Phase = Inbound{}
	u.X = 0.5
	if u.arrived() {
		t.Fatalf("arrived while still far out")
	}
	u.X = ArrivalThreshold / 2
	if !u.arrived() {
		t.Fatalf("not arrived inside threshold")
	}
	// Overshooting the origin still counts as home.
	u.X = -0.5
	if !u.arrived() {
		t.Fatalf("not arrived after passing origin")
	}

	u.Phase = Outbound{}
	u.X = 0
	if u.arrived() {
		t.Fatalf("outbound unit counted as arrived")
	}
}
