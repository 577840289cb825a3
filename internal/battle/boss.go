package battle

import (
	"math"

	"brainrot67/internal/roster"
)

const (
	cutsceneTicks   = 1140
	survivalTicks   = 112 * TicksPerSecond
	stunCycleTicks  = 40 * TicksPerSecond
	stunTicks       = 20 * TicksPerSecond
	pulseTicks      = 5 * TicksPerSecond
	flinchTicks     = 30
	dashReturnMs    = 300
	phaseSeconds    = 30
	selfDamageShare = 0.05
	stompShare      = 30.0
	dashShare       = 20.0
	secondLifeAt    = 20.0
	secondLifeHP    = 50.0
	lineFadeTicks   = 30
)

var cutsceneLines = []string{
	"Six.",
	"Seven.",
	"You picked the wrong number.",
	"Everyone who says it ends up here.",
	"Nobody has ever outlasted the 67.",
	"Survive.",
}

// Survival is the scripted encounter against the 67 boss. The player cannot
// hurt it; it wears itself down with periodic self-damage while the player
// tries to stay alive. Player health is tracked twice: FakeHP drives the
// visible bar, RealHP is the hidden true value.
type Survival struct {
	FakeHP float64
	RealHP float64
	Phase  int

	StunCooldown    int
	StunTimer       int
	SelfDamageTimer int
	HealTimer       int
	FlinchTimer     int
	StompCooldown   int
	DashCooldown    int

	SecondLifeUsed bool
	CutsceneTicks  int
	CombatTicks    int

	boss       *roster.Boss
	dashing    bool
	dashOrigin float64
}

func newSurvival(boss *roster.Boss) *Survival {
	return &Survival{
		FakeHP:          100,
		RealHP:          100,
		StunCooldown:    stunCycleTicks,
		SelfDamageTimer: pulseTicks,
		HealTimer:       pulseTicks,
		boss:            boss,
	}
}

// InCutscene reports whether the intro is still playing. Inputs are ignored
// until it ends.
func (s *Survival) InCutscene() bool { return s.CutsceneTicks < cutsceneTicks }

// Stunned reports whether the boss is in the long stun window of its cycle.
func (s *Survival) Stunned() bool { return s.StunTimer > 0 }

// SurvivalPhase grows by one every 30 seconds of combat.
func (s *Survival) SurvivalPhase() int {
	return s.CombatTicks / (phaseSeconds * TicksPerSecond)
}

// SecondsLeft is the combat time remaining before the forced resolution.
func (s *Survival) SecondsLeft() int {
	left := survivalTicks - s.CombatTicks
	if left < 0 {
		return 0
	}
	return (left + TicksPerSecond - 1) / TicksPerSecond
}

// CutsceneLine returns the intro line showing now and its opacity in [0, 1].
func (s *Survival) CutsceneLine() (string, float64) {
	if !s.InCutscene() {
		return "", 0
	}
	per := cutsceneTicks / len(cutsceneLines)
	i := s.CutsceneTicks / per
	if i >= len(cutsceneLines) {
		i = len(cutsceneLines) - 1
	}
	at := s.CutsceneTicks - i*per
	alpha := 1.0
	switch {
	case at < lineFadeTicks:
		alpha = float64(at) / lineFadeTicks
	case per-at < lineFadeTicks:
		alpha = float64(per-at) / lineFadeTicks
	}
	return cutsceneLines[i], alpha
}

func (s *Survival) advance(r *Round) {
	if s.InCutscene() {
		s.CutsceneTicks++
		return
	}
	s.CombatTicks++
	if s.CombatTicks >= survivalTicks {
		r.CPU.setHealth(0)
		return
	}

	s.tickCooldowns()
	s.stunCycle(r)
	s.pulses(r)
	s.drain()
	s.settle(r)

	r.movePlayer()
	if s.FlinchTimer > 0 || s.Stunned() || s.dashing {
		return
	}
	s.attack(r)
}

func (s *Survival) tickCooldowns() {
	if s.StompCooldown > 0 {
		s.StompCooldown--
	}
	if s.DashCooldown > 0 {
		s.DashCooldown--
	}
	if s.FlinchTimer > 0 {
		s.FlinchTimer--
	}
}

func (s *Survival) stunCycle(r *Round) {
	if s.StunTimer > 0 {
		s.StunTimer--
		if s.StunTimer == 0 {
			s.Phase++
			s.StunCooldown = stunCycleTicks
			r.emit(Event{Kind: EventBossRecover, Target: SideCPU})
		}
		return
	}
	s.StunCooldown--
	if s.StunCooldown <= 0 {
		s.StunTimer = stunTicks
		r.emit(Event{Kind: EventBossStun, Target: SideCPU})
	}
}

// pulses runs the self-damage and hidden heal timers. Both fire whether or not
// the boss is stunned.
func (s *Survival) pulses(r *Round) {
	s.SelfDamageTimer--
	if s.SelfDamageTimer <= 0 {
		s.SelfDamageTimer = pulseTicks
		dealt := r.CPU.damage(r.CPU.MaxHealth * selfDamageShare)
		s.FlinchTimer = flinchTicks
		r.emit(Event{Kind: EventBossPulse, Target: SideCPU, Amount: dealt})
	}
	s.HealTimer--
	if s.HealTimer <= 0 {
		s.HealTimer = pulseTicks
		s.RealHP = 100
	}
}

// drain wears fake HP down a little every tick. It never takes it below 1.
func (s *Survival) drain() {
	if s.FakeHP > 1 {
		s.FakeHP = math.Max(1, s.FakeHP-0.1*(1+float64(s.Phase)*0.1))
	}
}

// attack tries the boss moves in order: stomp, dash, then a standard hit.
func (s *Survival) attack(r *Round) {
	b, c := s.boss, r.CPU
	r.approach(CPUSpeed)
	dist := r.distance()
	agg := r.difficulty.Aggression

	if s.StompCooldown == 0 && dist < b.StompRange && r.dice.Float64() < b.StompChance {
		s.StompCooldown = b.StompCooldown
		c.act(r.difficulty.ReactionTime)
		pct := stompShare * (1 + 0.1*float64(s.SurvivalPhase()))
		r.emit(Event{Kind: EventHit, Target: SidePlayer, Move: "stomp", Amount: s.hitSurvivor(r, pct)})
		return
	}
	if s.DashCooldown == 0 && dist < b.DashRange && r.dice.Float64() < b.DashChance {
		s.DashCooldown = b.DashCooldown
		s.dash(r)
		r.emit(Event{Kind: EventBossDash, Target: SidePlayer, Move: "dash", Amount: s.hitSurvivor(r, dashShare)})
		return
	}
	if c.AttackCooldown == 0 && dist < MeleeRange && r.dice.Float64() < agg*0.02 {
		c.AttackCooldown = cpuCooldown(agg)
		m := roster.Move(r.dice.Intn(3))
		c.act(r.difficulty.ReactionTime)
		pct := 1 * (1 + float64(s.Phase)*0.2) * agg
		r.emit(Event{Kind: EventHit, Target: SidePlayer, Move: m.String(), Amount: s.hitSurvivor(r, pct)})
	}
}

// dash puts the boss right next to the player and brings it back shortly after.
func (s *Survival) dash(r *Round) {
	c, p := r.CPU, r.Player
	s.dashing = true
	s.dashOrigin = c.X
	side := 1.0
	if c.X < p.X {
		side = -1
	}
	c.X = clamp(p.X+side, ArenaMin, ArenaMax)
	c.act(msToTicks(dashReturnMs))
	r.face()
	r.after(msToTicks(dashReturnMs), func() {
		c.X = s.dashOrigin
		s.dashing = false
		r.face()
	})
}

// hitSurvivor is the only way boss damage reaches the player. pct is a share
// of the player's health in percent. Real HP takes it in full; fake HP takes
// less the lower real HP already is. It returns the visible health lost.
func (s *Survival) hitSurvivor(r *Round, pct float64) float64 {
	if pct <= 0 {
		return 0
	}
	before := r.Player.Health
	s.RealHP = clamp(s.RealHP-pct, 0, 100)
	adrenaline := 1 - s.RealHP/100
	s.FakeHP = clamp(s.FakeHP-pct*(1-adrenaline*0.7), 0, 100)
	s.settle(r)
	return math.Max(0, before-r.Player.Health)
}

// healReal restores hidden HP only and reports the amount in percent.
func (s *Survival) healReal(pct float64) float64 {
	before := s.RealHP
	s.RealHP = clamp(s.RealHP+pct, 0, 100)
	return s.RealHP - before
}

// settle applies the one-time second life and mirrors fake HP onto the
// visible health bar.
func (s *Survival) settle(r *Round) {
	if !s.SecondLifeUsed && (s.FakeHP <= secondLifeAt || s.RealHP <= 0) {
		s.SecondLifeUsed = true
		s.FakeHP, s.RealHP = secondLifeHP, secondLifeHP
		r.emit(Event{Kind: EventSecondLife, Target: SidePlayer})
	}
	r.Player.setHealth(r.Player.MaxHealth * s.FakeHP / 100)
}

func (s *Survival) exhausted() bool {
	return s.SecondLifeUsed && (s.RealHP <= 0 || s.FakeHP <= 0)
}

func (s *Survival) checkEnd(r *Round) {
	switch {
	case !r.CPU.alive():
		r.finish(WinnerPlayer)
	case s.exhausted():
		r.finish(WinnerCPU)
	}
}
