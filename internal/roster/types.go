package roster

import (
	"fmt"
	"strings"
)

// Move is an attack a fighter can perform.
type Move int

const (
	Punch Move = iota
	Kick
	Special
	Parry
)

var moveNames = [...]string{
	Punch:   "punch",
	Kick:    "kick",
	Special: "special",
	Parry:   "parry",
}

func (m Move) String() string {
	if m < 0 || int(m) >= len(moveNames) {
		return fmt.Sprintf("move(%d)", int(m))
	}
	return moveNames[m]
}

// Token is one entry of the combo input buffer.
type Token int

const (
	Left Token = iota
	Right
	TokPunch
	TokKick
	TokSpecial
	TokParry
)

var tokenNames = [...]string{
	Left:       "left",
	Right:      "right",
	TokPunch:   "punch",
	TokKick:    "kick",
	TokSpecial: "special",
	TokParry:   "parry",
}

func (t Token) String() string {
	if t < 0 || int(t) >= len(tokenNames) {
		return fmt.Sprintf("token(%d)", int(t))
	}
	return tokenNames[t]
}

// Move maps an attack token to its move. ok is false for movement tokens.
func (t Token) Move() (Move, bool) {
	switch t {
	case TokPunch:
		return Punch, true
	case TokKick:
		return Kick, true
	case TokSpecial:
		return Special, true
	case TokParry:
		return Parry, true
	}
	return 0, false
}

// ParseToken accepts the lower-case token names used on the wire and in yaml.
func ParseToken(s string) (Token, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range tokenNames {
		if name == s {
			return Token(i), nil
		}
	}
	return 0, fmt.Errorf("unknown token %q", s)
}

// UnmarshalYAML lets combo inputs be written as plain names.
func (t *Token) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	tok, err := ParseToken(s)
	if err != nil {
		return err
	}
	*t = tok
	return nil
}

// Combo is a named input sequence with a base damage.
type Combo struct {
	Name   string  `yaml:"name"`
	Inputs []Token `yaml:"inputs"`
	Damage float64 `yaml:"damage"`
}

// Character is an immutable roster entry, shared by every fight that uses it.
type Character struct {
	ID      string  `yaml:"id"`
	Name    string  `yaml:"name"`
	BaseHP  float64 `yaml:"base_hp"`
	Punch   float64 `yaml:"punch"`
	Kick    float64 `yaml:"kick"`
	Special float64 `yaml:"special"`
	Combos  []Combo `yaml:"combos"`
}

// Damage returns the base damage of a move. Parry has none.
func (c *Character) Damage(m Move) float64 {
	switch m {
	case Punch:
		return c.Punch
	case Kick:
		return c.Kick
	case Special:
		return c.Special
	}
	return 0
}

// BossKind selects which scripted encounter a boss runs.
type BossKind int

const (
	BossNone BossKind = iota
	BossSurvival
	BossTurnBased
)

func (k BossKind) String() string {
	switch k {
	case BossSurvival:
		return "survival"
	case BossTurnBased:
		return "turn_based"
	}
	return "none"
}

// Boss is a scripted opponent. BaseCharacter is the roster index the player
// must pick (on the boss difficulty) to face it.
type Boss struct {
	Character     `yaml:",inline"`
	Kind          BossKind `yaml:"-"`
	BaseCharacter int      `yaml:"base_character"`
	StompCooldown int      `yaml:"stomp_cooldown"`
	StompChance   float64  `yaml:"stomp_chance"`
	StompRange    float64  `yaml:"stomp_range"`
	DashCooldown  int      `yaml:"dash_cooldown"`
	DashChance    float64  `yaml:"dash_chance"`
	DashRange     float64  `yaml:"dash_range"`
}

// Difficulty tunes the CPU opponent. Looked up by Label.
type Difficulty struct {
	Label           string  `yaml:"label"`
	Aggression      float64 `yaml:"aggression"`
	ParryChance     float64 `yaml:"parry_chance"`
	ReactionTime    int     `yaml:"reaction_time"`
	CPUHPMultiplier float64 `yaml:"cpu_hp_multiplier"`
	LearningRate    float64 `yaml:"learning_rate"`
	IsBoss          bool    `yaml:"is_boss"`
}
