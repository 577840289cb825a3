package battle

import (
	"math"

	"brainrot67/internal/roster"
)

const (
	brainrotChance = 0.3
	brainrotMin    = 60.0
	brainrotSpread = 60.0
	patternWindow  = 3
	streakStep     = 0.1
	maxStreakBonus = 10
)

var brainrotCombos = [...]string{
	"Brr Brr Patapim",
	"Lirili Larila",
	"Cappuccino Assassino",
	"Ballerina Cappuccina",
}

// pushCombo appends a token to the combo buffer and fires at most one combo.
// The random brainrot roll is checked before the character's own list, and
// the first matching entry of that list wins.
func (r *Round) pushCombo(tok roster.Token) {
	now := r.clock.Now()
	if len(r.combo) > 0 && now.Sub(r.lastPress) > ComboWindow {
		r.combo = r.combo[:0]
		r.ComboCount = 0
	}
	r.lastPress = now
	r.combo = append(r.combo, tok)
	if len(r.combo) > maxComboBuffer {
		r.combo = r.combo[len(r.combo)-maxComboBuffer:]
	}

	if len(r.combo) > patternWindow-1 {
		r.memory.recordPattern(r.combo[len(r.combo)-patternWindow:])
	}

	if len(r.combo) >= patternWindow && r.dice.Float64() < brainrotChance {
		name := brainrotCombos[r.dice.Intn(len(brainrotCombos))]
		dmg := brainrotMin + r.dice.Float64()*brainrotSpread
		r.combo = r.combo[:0]
		r.executeCombo(name, dmg)
		return
	}

	for _, c := range r.Player.Character.Combos {
		if hasSuffix(r.combo, c.Inputs) {
			r.combo = r.combo[:0]
			r.executeCombo(c.Name, c.Damage)
			return
		}
	}
}

func hasSuffix(buf, seq []roster.Token) bool {
	if len(seq) == 0 || len(seq) > len(buf) {
		return false
	}
	tail := buf[len(buf)-len(seq):]
	for i := range seq {
		if tail[i] != seq[i] {
			return false
		}
	}
	return true
}

// executeCombo applies a recognized combo. Against bosses it is only damage
// when the turn-based boss is open; regular CPUs may dodge it.
func (r *Round) executeCombo(name string, base float64) {
	r.ComboCount++
	r.showCombo(name)

	if r.boss != nil {
		if r.turns != nil && r.turns.vulnerable() {
			dealt := r.CPU.damage(base * r.damageMultiplier * r.comboMultiplier)
			r.emit(Event{Kind: EventCombo, Target: SideCPU, Text: name, Amount: dealt})
			r.checkEnd()
			return
		}
		r.emit(Event{Kind: EventCombo, Target: SideCPU, Text: name, Cosmetic: true})
		return
	}

	if r.dice.Float64() < r.memory.DodgeChance {
		r.emit(Event{Kind: EventDodged, Target: SideCPU, Text: name})
		return
	}
	dmg := base * r.damageMultiplier * r.comboMultiplier * r.streak()
	dealt := r.CPU.damage(dmg)
	r.Score += dmg
	r.memory.comboLanded(r.difficulty.LearningRate)
	r.emit(Event{Kind: EventCombo, Target: SideCPU, Text: name, Amount: dealt})
	r.checkEnd()
}

// streak is the bonus for consecutive combos, capped at +100%.
func (r *Round) streak() float64 {
	n := math.Min(float64(r.ComboCount-1), maxStreakBonus)
	if n < 0 {
		n = 0
	}
	return 1 + streakStep*n
}

// showCombo keeps the combo name on the HUD for a short while. A newer combo
// replaces it and its own timer takes over.
func (r *Round) showCombo(name string) {
	r.comboSeq++
	seq := r.comboSeq
	r.comboName = name
	r.after(comboShowTicks, func() {
		if r.comboSeq == seq {
			r.comboName = ""
		}
	})
}
