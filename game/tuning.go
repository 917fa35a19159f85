package game

const (
	Player1 = 1
	Player2 = 2

	FieldBound       = 1.0   // normalized half-width of a colony's field
	UnitSpeed        = 0.5   // field units per second, shared by all species
	ArrivalThreshold = 0.05  // per-axis tolerance for "back at the colony"
	OffFieldDistance = 100.0 // where dead units are parked, far outside the field

	DefaultTickHz = 60

	// timeEpsilon absorbs float drift from summing fixed dt steps, so that
	// 72 ticks of 1/60 s compare equal to a 1.2 s interval.
	timeEpsilon = 1e-9
)

// Players lists the valid player ids in iteration order.
var Players = [2]int{Player1, Player2}

func validPlayer(p int) bool {
	return p == Player1 || p == Player2
}
