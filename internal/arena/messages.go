package arena

import (
	"brainrot67/internal/battle"
	"brainrot67/internal/data"
)

// inbound is any message a client may send. Fields are read according to Type.
type inbound struct {
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
	Left  bool   `json:"left,omitempty"`
	Right bool   `json:"right,omitempty"`
}

type welcomeMsg struct {
	Type       string `json:"type"`
	Session    string `json:"session"`
	Nickname   string `json:"nickname"`
	Character  int    `json:"character"`
	Difficulty string `json:"difficulty"`
	Boss       bool   `json:"boss"`
	Round      uint64 `json:"round"`
}

type stateMsg struct {
	Type  string          `json:"type"`
	State battle.Snapshot `json:"state"`
}

type eventMsg struct {
	Type  string       `json:"type"`
	Event battle.Event `json:"event"`
}

type parryMsg struct {
	Type    string `json:"type"`
	Seconds int    `json:"seconds"`
}

// roundOverMsg closes a round. Remembered is the move the CPU has learned to
// expect most from this player.
type roundOverMsg struct {
	Type       string         `json:"type"`
	Result     *battle.Result `json:"result"`
	User       *data.User     `json:"user,omitempty"`
	Saved      bool           `json:"saved"`
	Remembered string         `json:"remembered,omitempty"`
}

type errorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
