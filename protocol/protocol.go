package protocol

import (
	"encoding/json"
)

const (
	MsgHello    = "hello"
	MsgPurchase = "purchase"
	MsgControl  = "control"
	MsgWelcome  = "welcome"
	MsgState    = "state"
	MsgReceipt  = "receipt"
	MsgError    = "error"
)

const (
	SimTickHz   = 60
	BroadcastHz = 20
)

const Version = 1

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}
