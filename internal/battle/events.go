package battle

// EventKind tags a transient battle event for the renderer and HUD.
type EventKind int

const (
	EventHit EventKind = iota
	EventParried
	EventCounter
	EventCombo
	EventDodged
	EventParry
	EventParryCooldown
	EventSecondLife
	EventBossStun
	EventBossRecover
	EventBossPulse
	EventBossDash
	EventRoundOver
)

var eventNames = [...]string{
	EventHit:           "hit",
	EventParried:       "parried",
	EventCounter:       "counter",
	EventCombo:         "combo",
	EventDodged:        "dodged",
	EventParry:         "parry",
	EventParryCooldown: "parry_cooldown",
	EventSecondLife:    "second_life",
	EventBossStun:      "boss_stun",
	EventBossRecover:   "boss_recover",
	EventBossPulse:     "boss_pulse",
	EventBossDash:      "boss_dash",
	EventRoundOver:     "round_over",
}

func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventNames) {
		return "unknown"
	}
	return eventNames[k]
}

func (k EventKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Event is a one-shot signal produced during a tick or an action. Cosmetic
// marks hits that were shown but did no damage.
type Event struct {
	Kind     EventKind `json:"kind"`
	Tick     int       `json:"tick"`
	Target   Side      `json:"target"`
	Move     string    `json:"move,omitempty"`
	Amount   float64   `json:"amount,omitempty"`
	Text     string    `json:"text,omitempty"`
	Cosmetic bool      `json:"cosmetic,omitempty"`
}

func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
