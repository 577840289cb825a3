package battle

import "brainrot67/internal/roster"

// cpuPolicy is the regular CPU's per-tick decision: an independent
// aggression-weighted roll to attack when in range and ready, otherwise close
// the distance.
func (r *Round) cpuPolicy() {
	c := r.CPU
	agg := r.difficulty.Aggression
	if r.dice.Float64() < agg*0.02 && c.AttackCooldown == 0 && r.distance() < MeleeRange {
		m := roster.Move(r.dice.Intn(3))
		dealt := r.cpuStrike(m)
		r.emit(Event{Kind: EventHit, Target: SidePlayer, Move: m.String(), Amount: dealt})
		c.AttackCooldown = cpuCooldown(agg)
		return
	}
	r.approach(CPUSpeed)
}

// cpuStrike applies a CPU move to the player using the same damage model as
// the player's attacks, without shop multipliers.
func (r *Round) cpuStrike(m roster.Move) float64 {
	r.CPU.act(r.difficulty.ReactionTime)
	return r.Player.damage(r.roll(r.CPU.Character, m))
}

func cpuCooldown(aggression float64) int {
	return int(25 / aggression)
}
