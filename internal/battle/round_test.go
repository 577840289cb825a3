package battle

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"brainrot67/internal/roster"
)

// fixedDice always rolls the same values.
type fixedDice struct {
	f float64
	n int
}

func (d fixedDice) Float64() float64 { return d.f }
func (d fixedDice) Intn(n int) int   { return d.n % n }

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// noParryCatalog is the default roster with CPU parries switched off.
func noParryCatalog() *roster.Catalog {
	cat := roster.Default()
	for k, d := range cat.Difficulties {
		d.ParryChance = 0
		cat.Difficulties[k] = d
	}
	return cat
}

func newTestRound(t *testing.T, cfg Config) *Round {
	t.Helper()
	if cfg.Catalog == nil {
		cfg.Catalog = noParryCatalog()
	}
	if cfg.Difficulty == "" {
		cfg.Difficulty = roster.Normal
	}
	if cfg.Clock == nil {
		cfg.Clock = NewMockClock(epoch)
	}
	r, err := NewRound(cfg)
	if err != nil {
		t.Fatalf("new round: %v", err)
	}
	return r
}

func countEvents(evs []Event, kind EventKind) int {
	n := 0
	for _, e := range evs {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func TestNewRoundErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"bad_character", Config{CharacterIndex: 99, Difficulty: roster.Normal}},
		{"bad_difficulty", Config{CharacterIndex: 0, Difficulty: "nightmare"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := NewRound(c.cfg); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPunchDamageRange(t *testing.T) {
	for seed := int64(1); seed <= 50; seed++ {
		r := newTestRound(t, Config{CharacterIndex: 0, Opponent: 1, Dice: NewDice(seed)})
		r.CPU.X = r.Player.X + 2
		before := r.CPU.Health
		if !r.Act(roster.Punch) {
			t.Fatalf("seed %d: punch rejected", seed)
		}
		lost := before - r.CPU.Health
		if lost < 40 || lost >= 50 {
			t.Fatalf("seed %d: expected damage in [40,50), got %.2f", seed, lost)
		}
		if r.Player.AttackCooldown != AttackCooldownTicks {
			t.Fatalf("expected attack cooldown %d, got %d", AttackCooldownTicks, r.Player.AttackCooldown)
		}
	}
}

func TestActRejections(t *testing.T) {
	r := newTestRound(t, Config{CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0.5}})
	if r.Act(roster.Punch) {
		t.Fatal("expected out of range punch to be rejected")
	}
	r.CPU.X = r.Player.X + 2
	if !r.Act(roster.Kick) {
		t.Fatal("expected kick to land")
	}
	health := r.CPU.Health
	if r.Act(roster.Kick) {
		t.Fatal("expected kick on cooldown to be rejected")
	}
	if r.CPU.Health != health {
		t.Fatal("rejected action changed health")
	}
	if got := r.Memory().Moves["kick"]; got != 1 {
		t.Fatalf("expected one recorded kick, got %d", got)
	}
}

func TestDamageBoost(t *testing.T) {
	r := newTestRound(t, Config{
		CharacterIndex: 0, Opponent: 1,
		Dice:      fixedDice{f: 0},
		Modifiers: Modifiers{DamageBoost: true},
	})
	r.CPU.X = r.Player.X + 2
	r.Act(roster.Punch)
	if lost := r.CPU.MaxHealth - r.CPU.Health; math.Abs(lost-48) > 1e-9 {
		t.Fatalf("expected 48 damage with boost, got %.2f", lost)
	}
}

func TestCPUParryAndCounter(t *testing.T) {
	cat := roster.Default()
	d := cat.Difficulties[roster.Normal]
	d.ParryChance = 1
	cat.Difficulties[roster.Normal] = d
	mem := NewMemory()
	mem.CounterChance = 0.5

	r := newTestRound(t, Config{Catalog: cat, CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0.2}, Memory: mem})
	r.CPU.X = r.Player.X + 2
	r.Act(roster.Punch)
	if r.CPU.Health != r.CPU.MaxHealth {
		t.Fatal("parried punch must not deal damage")
	}
	if countEvents(r.DrainEvents(), EventParried) != 1 {
		t.Fatal("expected a parried event")
	}
	for i := 0; i < msToTicks(counterDelayMs); i++ {
		r.Advance()
	}
	evs := r.DrainEvents()
	if countEvents(evs, EventCounter) != 1 {
		t.Fatalf("expected one counter, got events %v", evs)
	}
	if r.Player.Health >= r.Player.MaxHealth {
		t.Fatal("counter special should hurt the player")
	}
}

func TestParryScenario(t *testing.T) {
	clock := NewMockClock(epoch)
	r := newTestRound(t, Config{CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0.99}, Clock: clock})
	if r.Player.MaxHealth != 1200 || r.CPU.MaxHealth != 1400 {
		t.Fatalf("unexpected max health %v/%v", r.Player.MaxHealth, r.CPU.MaxHealth)
	}
	r.Player.Health = 1000

	if !r.Act(roster.Parry) {
		t.Fatal("expected parry to be accepted")
	}
	if r.Player.Health != 1120 {
		t.Fatalf("expected heal to 1120, got %v", r.Player.Health)
	}
	if r.CPU.Health != 1120 {
		t.Fatalf("expected cpu at 1120, got %v", r.CPU.Health)
	}
	if r.Player.ParryCooldown != ParryLockTicks {
		t.Fatalf("expected parry lock %d, got %d", ParryLockTicks, r.Player.ParryCooldown)
	}
	if got := r.ParryRemaining(); got != 10 {
		t.Fatalf("expected 10s remaining, got %d", got)
	}

	// Parry while the global cooldown runs changes nothing.
	clock.Advance(3 * time.Second)
	r.DrainEvents()
	ph, ch, lock := r.Player.Health, r.CPU.Health, r.Player.ParryCooldown
	if r.Act(roster.Parry) {
		t.Fatal("expected parry on cooldown to be rejected")
	}
	if r.Player.Health != ph || r.CPU.Health != ch || r.Player.ParryCooldown != lock {
		t.Fatal("rejected parry changed state")
	}
	if got := r.ParryRemaining(); got != 7 {
		t.Fatalf("expected 7s remaining, got %d", got)
	}
	if countEvents(r.DrainEvents(), EventParryCooldown) != 1 {
		t.Fatal("expected a cooldown message")
	}

	clock.Advance(7 * time.Second)
	if r.ParryRemaining() != 0 {
		t.Fatal("expected parry ready")
	}
	if !r.Act(roster.Parry) {
		t.Fatal("expected parry after cooldown")
	}
}

func TestParryHealClamped(t *testing.T) {
	r := newTestRound(t, Config{CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0.99}})
	r.Player.Health = r.Player.MaxHealth - 10
	r.Act(roster.Parry)
	if r.Player.Health != r.Player.MaxHealth {
		t.Fatalf("expected heal clamped to max, got %v", r.Player.Health)
	}
}

func TestParryLockBlocksMovement(t *testing.T) {
	r := newTestRound(t, Config{CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0.99}})
	r.Act(roster.Parry)
	r.SetMovement(false, true)
	x := r.Player.X
	r.Advance()
	if r.Player.X != x {
		t.Fatal("player moved during parry lock")
	}
	for r.Player.ParryCooldown > 0 {
		r.Advance()
	}
	r.Advance()
	if r.Player.X <= x {
		t.Fatal("player should move once the lock ends")
	}
}

func TestCPUPolicyAttacks(t *testing.T) {
	r := newTestRound(t, Config{CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0}})
	r.CPU.X = r.Player.X + 2
	r.Advance()
	if lost := r.Player.MaxHealth - r.Player.Health; lost != 45 {
		t.Fatalf("expected a 45 damage punch, got %v", lost)
	}
	if r.CPU.AttackCooldown != cpuCooldown(1.0) {
		t.Fatalf("expected cpu cooldown %d, got %d", cpuCooldown(1.0), r.CPU.AttackCooldown)
	}
	if r.CPU.State != Attacking {
		t.Fatal("expected cpu in attack state")
	}
}

func TestCPUApproaches(t *testing.T) {
	r := newTestRound(t, Config{CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0.99}})
	for i := 0; i < 200; i++ {
		r.Advance()
	}
	if d := r.distance(); math.Abs(d-ChaseRange) > CPUSpeed {
		t.Fatalf("expected cpu to stop near chase range, distance %.2f", d)
	}
}

func TestHealthBoundsAndCooldowns(t *testing.T) {
	inputs := []roster.Token{roster.Left, roster.Right, roster.TokPunch, roster.TokKick, roster.TokSpecial, roster.TokParry}
	for _, diff := range []string{roster.Easy, roster.Insane} {
		clock := NewMockClock(epoch)
		r := newTestRound(t, Config{
			Catalog:        roster.Default(),
			CharacterIndex: 3, Opponent: RandomOpponent,
			Difficulty: diff, Dice: NewDice(7), Clock: clock,
		})
		pick := rand.New(rand.NewSource(11))
		for i := 0; i < 20000 && r.Active(); i++ {
			if pick.Intn(10) == 0 {
				r.Press(inputs[pick.Intn(len(inputs))])
				checkBounds(t, r)
				if !r.Active() {
					break
				}
			}
			if pick.Intn(30) == 0 {
				r.SetMovement(pick.Intn(2) == 0, pick.Intn(2) == 0)
			}
			ac, pc := r.Player.AttackCooldown, r.Player.ParryCooldown
			r.Advance()
			clock.Advance(time.Second / TicksPerSecond)
			checkBounds(t, r)
			if !r.Active() {
				break
			}
			if want := max(ac-1, 0); r.Player.AttackCooldown != want {
				t.Fatalf("tick %d: attack cooldown %d -> %d", i, ac, r.Player.AttackCooldown)
			}
			if want := max(pc-1, 0); r.Player.ParryCooldown != want {
				t.Fatalf("tick %d: parry cooldown %d -> %d", i, pc, r.Player.ParryCooldown)
			}
		}
	}
}

func checkBounds(t *testing.T, r *Round) {
	t.Helper()
	for _, f := range []*Fighter{r.Player, r.CPU} {
		if f.Health < 0 || f.Health > f.MaxHealth {
			t.Fatalf("health %v outside [0,%v]", f.Health, f.MaxHealth)
		}
		if f.X < ArenaMin || f.X > ArenaMax {
			t.Fatalf("position %v outside arena", f.X)
		}
	}
}

func TestTimerRunsOut(t *testing.T) {
	r := newTestRound(t, Config{CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0.001}})
	r.Timer = 1
	r.Player.Health = r.Player.MaxHealth / 2
	r.CPU.X = ArenaMax
	r.Player.X = ArenaMin
	r.Advance()
	res, ok := r.Result()
	if !ok {
		t.Fatal("expected round over when the timer hits zero")
	}
	if res.Winner != WinnerCPU {
		t.Fatalf("expected cpu to win on health ratio, got %s", res.Winner)
	}
}

func TestEndCancelsPendingCallbacks(t *testing.T) {
	cat := roster.Default()
	d := cat.Difficulties[roster.Normal]
	d.ParryChance = 1
	cat.Difficulties[roster.Normal] = d
	mem := NewMemory()
	mem.CounterChance = 0.5
	sched := NewScheduler()

	r := newTestRound(t, Config{Catalog: cat, CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0.2}, Memory: mem, Scheduler: sched})
	r.CPU.X = r.Player.X + 2
	r.Act(roster.Punch)
	if sched.Pending() == 0 {
		t.Fatal("expected a scheduled counter")
	}
	res := r.End()
	if res.Winner != WinnerNone {
		t.Fatalf("expected abandoned round, got %s", res.Winner)
	}
	if sched.Pending() != 0 {
		t.Fatal("expected pending callbacks cancelled")
	}

	// A new round on the same queue never sees the old counter.
	next := newTestRound(t, Config{CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0.99}, Scheduler: sched})
	for i := 0; i < 60; i++ {
		sched.Run(r.Generation(), next.Tick()+i)
		next.Advance()
	}
	if next.Player.Health != next.Player.MaxHealth {
		t.Fatal("stale counter hit the next round")
	}
}

func TestSettleRewards(t *testing.T) {
	cases := []struct {
		name      string
		character int
		diff      string
		mods      Modifiers
		score     float64
		winner    Winner
		coins     int
		unlocks   []string
		doubled   bool
	}{
		{"win", 0, roster.Normal, Modifiers{}, 420, WinnerPlayer, 92, nil, false},
		{"draw", 0, roster.Normal, Modifiers{}, 100, WinnerDraw, 35, nil, false},
		{"loss", 0, roster.Normal, Modifiers{}, 99, WinnerCPU, 9, nil, false},
		{"double_coins", 0, roster.Hard, Modifiers{DoubleCoins: 2}, 200, WinnerPlayer, 140, nil, true},
		{"insane_67_unlock", roster.Character67, roster.Insane, Modifiers{}, 0, WinnerPlayer, 50, []string{UnlockBoss67}, false},
		{"insane_67_loss", roster.Character67, roster.Insane, Modifiers{}, 0, WinnerCPU, 0, nil, false},
		{"boss_win", 2, roster.BossLabel, Modifiers{}, 0, WinnerPlayer, 550, []string{"sahur_titan_defeated"}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := newTestRound(t, Config{CharacterIndex: c.character, Opponent: 0, Difficulty: c.diff, Modifiers: c.mods, Dice: fixedDice{f: 0.99}})
			r.Score = c.score
			r.finish(c.winner)
			res, ok := r.Result()
			if !ok {
				t.Fatal("expected result")
			}
			if res.Coins != c.coins {
				t.Fatalf("expected %d coins, got %d", c.coins, res.Coins)
			}
			if res.DoubleCoinsUsed != c.doubled {
				t.Fatalf("expected double coins used %v", c.doubled)
			}
			if len(res.Unlocks) != len(c.unlocks) {
				t.Fatalf("expected unlocks %v, got %v", c.unlocks, res.Unlocks)
			}
			for i := range c.unlocks {
				if res.Unlocks[i] != c.unlocks[i] {
					t.Fatalf("expected unlocks %v, got %v", c.unlocks, res.Unlocks)
				}
			}
			if res.Memory.Fights != 1 {
				t.Fatalf("expected fight counted, got %d", res.Memory.Fights)
			}
		})
	}
}

func TestSnapshot(t *testing.T) {
	r := newTestRound(t, Config{CharacterIndex: 0, Opponent: 1, Dice: fixedDice{f: 0.99}})
	s := r.Snapshot()
	if s.Player.ID != "tralalero" || s.CPU.ID != "bombardiro" {
		t.Fatalf("unexpected fighters %s vs %s", s.Player.ID, s.CPU.ID)
	}
	if s.Boss != nil {
		t.Fatal("regular round must not carry a boss view")
	}
	if s.Timer != RoundSeconds || !s.Active {
		t.Fatalf("unexpected snapshot %+v", s)
	}
}
