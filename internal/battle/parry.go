package battle

import (
	"fmt"
	"time"
)

const (
	parryHealFraction   = 0.10
	parryDamageFraction = 0.20
)

// handleParry heals the player and, outside boss fights, hurts the CPU. It is
// gated by a wall-clock cooldown separate from the tick-based attack lock it
// starts.
func (r *Round) handleParry() bool {
	now := r.clock.Now()
	if now.Before(r.parryReadyAt) {
		left := ceilSeconds(r.parryReadyAt.Sub(now))
		r.emit(Event{Kind: EventParryCooldown, Target: SidePlayer, Text: fmt.Sprintf("Parry ready in %ds", left)})
		return false
	}

	p := r.Player
	var healed float64
	if r.survival != nil {
		// The visible bar follows fake HP, which never rises; the parry
		// restores hidden real HP instead.
		healed = r.survival.healReal(parryHealFraction * 100)
	} else {
		healed = p.heal(p.MaxHealth * parryHealFraction)
	}
	var dealt float64
	if r.boss == nil {
		dealt = r.CPU.damage(r.CPU.MaxHealth * parryDamageFraction)
	}

	p.ParryCooldown = ParryLockTicks
	r.parryReadyAt = now.Add(ParryCooldown)
	r.emit(Event{Kind: EventParry, Target: SideCPU, Amount: dealt, Text: fmt.Sprintf("+%.0f", healed)})
	r.checkEnd()
	return true
}

// ParryRemaining reports the whole seconds left on the parry cooldown. The
// session polls it once per second to refresh the countdown display.
func (r *Round) ParryRemaining() int {
	left := r.parryReadyAt.Sub(r.clock.Now())
	if left <= 0 {
		return 0
	}
	return ceilSeconds(left)
}

func ceilSeconds(d time.Duration) int {
	return int((d + time.Second - 1) / time.Second)
}
