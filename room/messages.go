package room

import "colony/game"

type Conn interface {
	Send([]byte) error
	Close() error
}

// Join: issued once after hello parsed. Player 0 joins as a spectator.
type Join struct {
	Conn   Conn
	Player int
	Reply  chan<- JoinResult
}

type JoinResult struct {
	ClientID string
	Err      error
}

// Purchase: a client asks to buy the next level of an upgrade for the
// player it joined as.
type Purchase struct {
	ClientID string
	Seq      int
	Upgrade  game.UpgradeID
}

// Control: start/stop/pause/resume from a client.
type Control struct {
	ClientID string
	Action   string
}

// Leave: issued on disconnect
type Leave struct {
	ClientID string
}
