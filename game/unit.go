package game

import "math"

// Phase is the lifecycle stage of a worker unit. It is a closed set:
// Outbound, Gathering and Inbound are the only implementations.
type Phase interface {
	Name() string
	isPhase()
}

// Outbound units travel away from their colony.
type Outbound struct{}

// Gathering units stand still past the boundary until Remaining runs out.
type Gathering struct {
	Remaining float64
}

// Inbound units retrace their path home.
type Inbound struct{}

func (Outbound) Name() string  { return "outbound" }
func (Gathering) Name() string { return "gathering" }
func (Inbound) Name() string   { return "inbound" }

func (Outbound) isPhase()  {}
func (Gathering) isPhase() {}
func (Inbound) isPhase()   {}

// Random is the single source of randomness a match draws from.
// *math/rand.Rand satisfies it.
type Random interface {
	Float64() float64
}

// Unit is one worker. Positions are in the owner's own normalized field,
// colony at the origin.
type Unit struct {
	ID        int
	Owner     int
	SpeciesID string
	X, Y      float64
	HX, HY    float64 // unit heading
	Phase     Phase
	Alive     bool
}

func newUnit(id, owner int, species string, angle float64) Unit {
	return Unit{
		ID:        id,
		Owner:     owner,
		SpeciesID: species,
		HX:        math.Cos(angle),
		HY:        math.Sin(angle),
		Phase:     Outbound{},
		Alive:     true,
	}
}

// unitRates are the per-owner values a unit needs during one tick.
type unitRates struct {
	gatherDuration   float64
	deathProbability float64
}

// advance runs one tick of the unit state machine.
func (u *Unit) advance(dt float64, r unitRates, rng Random) {
	switch p := u.Phase.(type) {
	case Outbound:
		u.move(dt)
		if !u.outsideField() {
			return
		}
		if rng.Float64() < r.deathProbability {
			u.Alive = false
			u.Phase = Inbound{}
			u.X = u.HX * OffFieldDistance
			u.Y = u.HY * OffFieldDistance
			return
		}
		u.Phase = Gathering{Remaining: r.gatherDuration}
	case Gathering:
		left := p.Remaining - dt
		if left > 0 {
			u.Phase = Gathering{Remaining: left}
			return
		}
		u.Phase = Inbound{}
		u.HX, u.HY = -u.HX, -u.HY
	case Inbound:
		if u.Alive {
			u.move(dt)
		}
	}
}

func (u *Unit) move(dt float64) {
	u.X += u.HX * UnitSpeed * dt
	u.Y += u.HY * UnitSpeed * dt
}

func (u *Unit) outsideField() bool {
	return math.Abs(u.X) > FieldBound || math.Abs(u.Y) > FieldBound
}

// arrived reports a live Inbound unit that is back at its colony, either
// inside the arrival box or already past the origin.
func (u *Unit) arrived() bool {
	if !u.Alive {
		return false
	}
	if _, ok := u.Phase.(Inbound); !ok {
		return false
	}
	if math.Abs(u.X) < ArrivalThreshold && math.Abs(u.Y) < ArrivalThreshold {
		return true
	}
	return u.X*u.HX+u.Y*u.HY > 0
}
