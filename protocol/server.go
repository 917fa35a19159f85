package protocol

type Welcome struct {
	MatchID string       `json:"matchId"`
	Player  int          `json:"player"`
	TickHz  int          `json:"tickHz"`
	Catalog []UpgradeDef `json:"catalog"`
}

type UpgradeDef struct {
	ID       string  `json:"id"`
	Title    string  `json:"title,omitempty"`
	Blurb    string  `json:"blurb,omitempty"`
	MaxLevel int     `json:"maxLevel"`
	Costs    []int   `json:"costs"`
	Effect   string  `json:"effect"`
	Factor   float64 `json:"factor,omitempty"`
	Unlocks  string  `json:"unlocks,omitempty"`
	Passive  bool    `json:"passive"`
}

type State struct {
	MatchID  string           `json:"matchId"`
	Tick     int              `json:"tick"`
	Time     float64          `json:"time"`
	Units    []UnitSnapshot   `json:"units"`
	Colonies []ColonySnapshot `json:"colonies"`
}

type UnitSnapshot struct {
	ID    int     `json:"id"`
	Owner int     `json:"owner"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Phase string  `json:"phase"`
}

type ColonySnapshot struct {
	Player         int            `json:"player"`
	Food           int            `json:"food"`
	Units          int            `json:"units"`
	Levels         map[string]int `json:"levels"`
	Capabilities   []string       `json:"capabilities,omitempty"`
	SpawnInterval  float64        `json:"spawnInterval"`
	GatherDuration float64        `json:"gatherDuration"`
	Mortality      float64        `json:"mortality"`
}

type Receipt struct {
	Seq     int    `json:"seq,omitempty"`
	Upgrade string `json:"upgrade"`
	Level   int    `json:"level"`
	Food    int    `json:"food"`
}

const (
	CodeBadRequest        = "bad_request"
	CodeInsufficientFunds = "insufficient_funds"
	CodeUpgradeMaxed      = "upgrade_maxed"
	CodeInvalidUpgrade    = "invalid_upgrade"
	CodeInvalidPlayer     = "invalid_player"
	CodeInvalidState      = "invalid_state"
	CodeRateLimited       = "rate_limited"
	CodeInternal          = "internal"
)

type Error struct {
	Seq     int    `json:"seq,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
