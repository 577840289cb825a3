package battle

// Modifiers are the shop items the player owns when a battle starts.
type Modifiers struct {
	DamageBoost     bool `json:"damageBoost"`
	HealthBoost     bool `json:"healthBoost"`
	ComboMultiplier bool `json:"comboMultiplier"`
	ParryReduction  bool `json:"parryReduction"`
	DoubleCoins     int  `json:"doubleCoins"` // rounds of doubled coins left
}

func (m Modifiers) damageMultiplier() float64 {
	if m.DamageBoost {
		return 1.2
	}
	return 1
}

func (m Modifiers) healthMultiplier() float64 {
	if m.HealthBoost {
		return 1.2
	}
	return 1
}

func (m Modifiers) comboMultiplier() float64 {
	if m.ComboMultiplier {
		return 1.5
	}
	return 1
}

func (m Modifiers) cpuParryScale() float64 {
	if m.ParryReduction {
		return 0.5
	}
	return 1
}
