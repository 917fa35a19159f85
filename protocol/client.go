package protocol

//input structs coming in from the client.

type Hello struct {
	V      int `json:"v"`      // version
	Player int `json:"player"` // 1 or 2
}

type Purchase struct {
	Seq     int    `json:"seq,omitempty"` // echoed back in the receipt
	Upgrade string `json:"upgrade"`
}

const (
	ActionStart  = "start"
	ActionStop   = "stop"
	ActionPause  = "pause"
	ActionResume = "resume"
)

type Control struct {
	Action string `json:"action"`
}
