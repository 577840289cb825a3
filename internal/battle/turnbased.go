package battle

const (
	telegraphTicks    = 60
	recoverTicks      = 120
	turnStrikeShare   = 0.15
	turnStrikeRange   = MeleeRange
	turnApproachSpeed = CPUSpeed
)

// TurnPhase is the step of the turn-based boss's attack cycle.
type TurnPhase int

const (
	Telegraph TurnPhase = iota
	Recover
)

func (p TurnPhase) String() string {
	if p == Recover {
		return "recover"
	}
	return "telegraph"
}

// TurnBoss drives the turn-based boss: it winds up in plain sight, strikes
// once, then stays open to damage while it recovers.
type TurnBoss struct {
	Phase   TurnPhase
	Timer   int
	Strikes int
}

func newTurnBoss() *TurnBoss {
	return &TurnBoss{Phase: Telegraph, Timer: telegraphTicks}
}

func (t *TurnBoss) vulnerable() bool { return t.Phase == Recover }

func (t *TurnBoss) advance(r *Round) {
	if t.Phase == Telegraph {
		r.approach(turnApproachSpeed)
	}
	t.Timer--
	if t.Timer > 0 {
		return
	}
	switch t.Phase {
	case Telegraph:
		t.strike(r)
		t.Phase, t.Timer = Recover, recoverTicks
		r.emit(Event{Kind: EventBossStun, Target: SideCPU, Text: t.Phase.String()})
	case Recover:
		t.Phase, t.Timer = Telegraph, telegraphTicks
		r.emit(Event{Kind: EventBossRecover, Target: SideCPU, Text: t.Phase.String()})
	}
}

// strike lands only if the player stayed inside the boss's reach.
func (t *TurnBoss) strike(r *Round) {
	t.Strikes++
	r.CPU.act(r.difficulty.ReactionTime)
	if r.distance() > turnStrikeRange {
		r.emit(Event{Kind: EventDodged, Target: SidePlayer, Move: "slam"})
		return
	}
	dealt := r.Player.damage(r.Player.MaxHealth * turnStrikeShare)
	r.emit(Event{Kind: EventHit, Target: SidePlayer, Move: "slam", Amount: dealt})
}
