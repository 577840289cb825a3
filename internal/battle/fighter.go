package battle

import (
	"math"

	"brainrot67/internal/roster"
)

// Side identifies one of the two fighters.
type Side int

const (
	SidePlayer Side = iota
	SideCPU
)

func (s Side) String() string {
	if s == SideCPU {
		return "cpu"
	}
	return "player"
}

// Stance is the behavioral state tag of a fighter.
type Stance int

const (
	Idle Stance = iota
	Attacking
)

func (s Stance) String() string {
	if s == Attacking {
		return "attack"
	}
	return "idle"
}

// Fighter is one combatant of a round. Health stays within [0, MaxHealth];
// cooldowns drop by one per tick and never go negative.
type Fighter struct {
	Character      *roster.Character
	X              float64
	Facing         int
	Health         float64
	MaxHealth      float64
	AttackCooldown int
	ParryCooldown  int
	State          Stance
	StateTimer     int
}

func newFighter(ch *roster.Character, x, maxHealth float64) *Fighter {
	return &Fighter{
		Character: ch,
		X:         x,
		Facing:    1,
		Health:    maxHealth,
		MaxHealth: maxHealth,
	}
}

// damage removes up to v health and reports how much was actually removed.
func (f *Fighter) damage(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	before := f.Health
	f.setHealth(f.Health - v)
	return before - f.Health
}

func (f *Fighter) heal(v float64) float64 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	before := f.Health
	f.setHealth(f.Health + v)
	return f.Health - before
}

func (f *Fighter) setHealth(v float64) {
	f.Health = clamp(v, 0, f.MaxHealth)
}

func (f *Fighter) tickCooldowns() {
	if f.AttackCooldown > 0 {
		f.AttackCooldown--
	}
	if f.ParryCooldown > 0 {
		f.ParryCooldown--
	}
	if f.StateTimer > 0 {
		f.StateTimer--
		if f.StateTimer == 0 {
			f.State = Idle
		}
	}
}

func (f *Fighter) act(ticks int) {
	if ticks < 1 {
		ticks = 1
	}
	f.State = Attacking
	f.StateTimer = ticks
}

func (f *Fighter) alive() bool { return f.Health > 0 }

func (f *Fighter) ratio() float64 {
	if f.MaxHealth <= 0 {
		return 0
	}
	return f.Health / f.MaxHealth
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
