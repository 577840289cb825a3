package battle

import (
	"fmt"
	"math"
	"time"

	"brainrot67/internal/roster"
)

const (
	TicksPerSecond = 60

	ArenaMin    = -8.0
	ArenaMax    = 8.0
	MeleeRange  = 3.0
	ChaseRange  = 2.5
	PlayerSpeed = 0.12
	CPUSpeed    = 0.06

	RoundSeconds        = 99
	AttackCooldownTicks = 20
	ParryLockTicks      = 90
	ParryCooldown       = 10 * time.Second
	ComboWindow         = 1000 * time.Millisecond

	punchKickSpread = 10.0
	specialSpread   = 15.0
	counterDelayMs  = 300
	comboShowTicks  = 90
	maxComboBuffer  = 16
)

// RandomOpponent asks NewRound to roll the CPU's character.
const RandomOpponent = -1

// Config selects everything a round is built from.
type Config struct {
	Catalog        *roster.Catalog
	CharacterIndex int
	Opponent       int
	Difficulty     string
	Modifiers      Modifiers
	Memory         *CpuMemory
	Dice           Dice
	Clock          Clock
	Scheduler      *Scheduler
}

// Round is the live simulation of one battle. It is owned by a single caller;
// Advance, Act and Press must not run concurrently.
type Round struct {
	Player *Fighter
	CPU    *Fighter

	Timer      int
	ComboCount int
	Score      float64

	catalog        *roster.Catalog
	characterIndex int
	difficulty     roster.Difficulty
	mods           Modifiers
	memory         *CpuMemory

	dice  Dice
	clock Clock
	sched *Scheduler
	gen   uint64

	boss     *roster.Boss
	survival *Survival
	turns    *TurnBoss

	damageMultiplier float64
	comboMultiplier  float64
	cpuParryChance   float64

	combo        []roster.Token
	lastPress    time.Time
	comboName    string
	comboSeq     int
	parryReadyAt time.Time
	moveLeft     bool
	moveRight    bool

	tick   int
	active bool
	result *Result
	events []Event
}

// NewRound sets up a battle. Errors only come from an invalid selection.
func NewRound(cfg Config) (*Round, error) {
	cat := cfg.Catalog
	if cat == nil {
		cat = roster.Default()
	}
	ch, err := cat.Character(cfg.CharacterIndex)
	if err != nil {
		return nil, fmt.Errorf("new round: %w", err)
	}
	diff, ok := cat.Difficulty(cfg.Difficulty)
	if !ok {
		return nil, fmt.Errorf("new round: unknown difficulty %q", cfg.Difficulty)
	}
	if diff.Aggression <= 0 {
		return nil, fmt.Errorf("new round: difficulty %q has no aggression", diff.Label)
	}

	r := &Round{
		Timer:            RoundSeconds,
		catalog:          cat,
		characterIndex:   cfg.CharacterIndex,
		difficulty:       diff,
		mods:             cfg.Modifiers,
		memory:           cfg.Memory,
		dice:             cfg.Dice,
		clock:            cfg.Clock,
		sched:            cfg.Scheduler,
		damageMultiplier: cfg.Modifiers.damageMultiplier(),
		comboMultiplier:  cfg.Modifiers.comboMultiplier(),
		active:           true,
	}
	if r.memory == nil {
		r.memory = NewMemory()
	}
	if r.dice == nil {
		r.dice = NewDice(time.Now().UnixNano())
	}
	if r.clock == nil {
		r.clock = SystemClock{}
	}
	if r.sched == nil {
		r.sched = NewScheduler()
	}
	r.gen = r.sched.Begin()

	r.Player = newFighter(ch, -3, ch.BaseHP*cfg.Modifiers.healthMultiplier())

	if boss, ok := cat.BossFor(cfg.CharacterIndex, cfg.Difficulty); ok {
		r.boss = boss
		r.CPU = newFighter(&boss.Character, 3, boss.BaseHP*diff.CPUHPMultiplier)
		switch boss.Kind {
		case roster.BossSurvival:
			r.survival = newSurvival(boss)
		case roster.BossTurnBased:
			r.turns = newTurnBoss()
		}
	} else {
		opp := cfg.Opponent
		if opp < 0 || opp >= len(cat.Characters) {
			opp = r.dice.Intn(len(cat.Characters))
		}
		och := &cat.Characters[opp]
		r.CPU = newFighter(och, 3, och.BaseHP*diff.CPUHPMultiplier)
		r.cpuParryChance = diff.ParryChance * cfg.Modifiers.cpuParryScale()
	}
	r.face()
	return r, nil
}

// IsBoss reports whether this round is a scripted boss fight.
func (r *Round) IsBoss() bool { return r.boss != nil }

// Active reports whether the round still accepts ticks.
func (r *Round) Active() bool { return r.active }

// Tick returns the number of ticks advanced so far.
func (r *Round) Tick() int { return r.tick }

// Generation identifies this round in the shared timer queue.
func (r *Round) Generation() uint64 { return r.gen }

// Memory exposes the CPU memory being updated by this round.
func (r *Round) Memory() *CpuMemory { return r.memory }

// Survival returns the survival encounter state, or nil.
func (r *Round) Survival() *Survival { return r.survival }

// TurnBoss returns the turn-based encounter state, or nil.
func (r *Round) TurnBoss() *TurnBoss { return r.turns }

// Advance moves the simulation forward by one tick.
func (r *Round) Advance() {
	if !r.active {
		return
	}
	r.tick++
	r.sched.Run(r.gen, r.tick)
	if !r.active {
		return
	}

	r.Player.tickCooldowns()
	r.CPU.tickCooldowns()

	switch {
	case r.survival != nil:
		r.survival.advance(r)
	case r.turns != nil:
		r.turns.advance(r)
		r.movePlayer()
	default:
		r.cpuPolicy()
		r.movePlayer()
	}
	if !r.active {
		return
	}

	if r.survival == nil {
		r.tickTimer()
	}
	r.checkEnd()
}

// Press feeds one raw input token: it goes into the combo buffer and attack
// tokens are also performed as actions. Movement tokens start holding that
// direction until Release.
func (r *Round) Press(tok roster.Token) {
	if !r.combatLive() {
		return
	}
	switch tok {
	case roster.Left:
		r.moveLeft = true
	case roster.Right:
		r.moveRight = true
	}
	r.pushCombo(tok)
	if m, ok := tok.Move(); ok {
		r.Act(m)
	}
}

// Release stops holding a movement direction.
func (r *Round) Release(tok roster.Token) {
	switch tok {
	case roster.Left:
		r.moveLeft = false
	case roster.Right:
		r.moveRight = false
	}
}

// SetMovement replaces the held movement state, for touch controls.
func (r *Round) SetMovement(left, right bool) {
	r.moveLeft, r.moveRight = left, right
}

// Act performs a player action. It reports whether the action was accepted;
// rejected actions change nothing.
func (r *Round) Act(m roster.Move) bool {
	if !r.combatLive() {
		return false
	}
	p := r.Player
	if p.AttackCooldown > 0 {
		return false
	}
	if m == roster.Parry {
		if !r.handleParry() {
			return false
		}
		r.memory.recordMove(m)
		return true
	}
	if p.ParryCooldown > 0 || r.distance() > MeleeRange {
		return false
	}

	p.AttackCooldown = AttackCooldownTicks
	p.act(AttackCooldownTicks)
	r.memory.recordMove(m)

	if r.boss != nil {
		r.playerHitsBoss(m)
		return true
	}

	if r.dice.Float64() < r.cpuParryChance {
		r.cpuParries(m)
		return true
	}

	dmg := r.roll(p.Character, m) * r.damageMultiplier
	dealt := r.CPU.damage(dmg)
	r.Score += dmg
	r.emit(Event{Kind: EventHit, Target: SideCPU, Move: m.String(), Amount: dealt})
	r.checkEnd()
	return true
}

// playerHitsBoss resolves a basic attack against a boss. Against the survival
// boss every hit is cosmetic; the turn-based boss only takes damage while it
// recovers from a strike.
func (r *Round) playerHitsBoss(m roster.Move) {
	if r.turns != nil && r.turns.vulnerable() {
		dmg := r.roll(r.Player.Character, m) * r.damageMultiplier
		dealt := r.CPU.damage(dmg)
		r.emit(Event{Kind: EventHit, Target: SideCPU, Move: m.String(), Amount: dealt})
		r.checkEnd()
		return
	}
	r.emit(Event{Kind: EventHit, Target: SideCPU, Move: m.String(), Cosmetic: true})
}

// cpuParries nullifies the player's attack and may schedule a counter special.
func (r *Round) cpuParries(m roster.Move) {
	r.emit(Event{Kind: EventParried, Target: SideCPU, Move: m.String()})
	if r.dice.Float64() >= r.memory.CounterChance {
		return
	}
	r.after(msToTicks(counterDelayMs), func() {
		if r.distance() > MeleeRange {
			return
		}
		dealt := r.cpuStrike(roster.Special)
		r.emit(Event{Kind: EventCounter, Target: SidePlayer, Move: roster.Special.String(), Amount: dealt})
		r.checkEnd()
	})
}

// roll returns base move damage plus the uniform random spread.
func (r *Round) roll(ch *roster.Character, m roster.Move) float64 {
	spread := punchKickSpread
	if m == roster.Special {
		spread = specialSpread
	}
	return ch.Damage(m) + r.dice.Float64()*spread
}

func (r *Round) movePlayer() {
	p := r.Player
	if p.ParryCooldown > 0 {
		return
	}
	dx := 0.0
	if r.moveLeft {
		dx -= PlayerSpeed
	}
	if r.moveRight {
		dx += PlayerSpeed
	}
	if dx != 0 {
		p.X = clamp(p.X+dx, ArenaMin, ArenaMax)
		r.face()
	}
}

// approach moves the CPU toward the player while they are further apart than
// ChaseRange.
func (r *Round) approach(speed float64) {
	c := r.CPU
	gap := r.Player.X - c.X
	if math.Abs(gap) <= ChaseRange {
		return
	}
	if gap > 0 {
		c.X = clamp(c.X+speed, ArenaMin, ArenaMax)
	} else {
		c.X = clamp(c.X-speed, ArenaMin, ArenaMax)
	}
	r.face()
}

func (r *Round) face() {
	if r.CPU.X >= r.Player.X {
		r.Player.Facing, r.CPU.Facing = 1, -1
	} else {
		r.Player.Facing, r.CPU.Facing = -1, 1
	}
}

func (r *Round) distance() float64 {
	return math.Abs(r.Player.X - r.CPU.X)
}

// tickTimer counts the round clock down stochastically, one simulated second
// per TicksPerSecond ticks on average.
func (r *Round) tickTimer() {
	if r.Timer > 0 && r.dice.Float64() < 1.0/TicksPerSecond {
		r.Timer--
	}
}

func (r *Round) combatLive() bool {
	if !r.active {
		return false
	}
	if r.survival != nil && r.survival.InCutscene() {
		return false
	}
	return true
}

func (r *Round) after(delay int, fn func()) {
	r.sched.After(r.gen, r.tick, delay, fn)
}

func (r *Round) emit(e Event) {
	e.Tick = r.tick
	r.events = append(r.events, e)
}

// DrainEvents returns and clears the events produced since the last call.
func (r *Round) DrainEvents() []Event {
	out := r.events
	r.events = nil
	return out
}
