package roster

import "fmt"

// Difficulty labels.
const (
	Easy      = "easy"
	Normal    = "normal"
	Hard      = "hard"
	Insane    = "insane"
	BossLabel = "boss"
)

// Index of character 67 in the default roster.
const Character67 = 5

// ========================================
// FIGHTERS
// ========================================

var defaultCharacters = []Character{
	{
		ID: "tralalero", Name: "Tralalero Tralala", BaseHP: 1200,
		Punch: 40, Kick: 50, Special: 80,
		Combos: []Combo{
			{Name: "Shark Sneaker Spin", Inputs: []Token{Left, Right, TokKick}, Damage: 120},
			{Name: "Tralala Tidal Wave", Inputs: []Token{TokPunch, TokPunch, TokSpecial}, Damage: 160},
		},
	},
	{
		ID: "bombardiro", Name: "Bombardiro Crocodilo", BaseHP: 1400,
		Punch: 45, Kick: 45, Special: 90,
		Combos: []Combo{
			{Name: "Carpet Bomb", Inputs: []Token{Right, Right, TokSpecial}, Damage: 170},
			{Name: "Croc Chomp", Inputs: []Token{TokKick, TokPunch, TokKick}, Damage: 130},
		},
	},
	{
		ID: "sahur", Name: "Tung Tung Tung Sahur", BaseHP: 1100,
		Punch: 50, Kick: 40, Special: 75,
		Combos: []Combo{
			{Name: "Tung Tung Tung", Inputs: []Token{TokPunch, TokPunch, TokPunch}, Damage: 140},
			{Name: "Bat Swing Wake-Up", Inputs: []Token{Left, TokPunch, TokSpecial}, Damage: 150},
		},
	},
	{
		ID: "skibidi", Name: "Skibidi", BaseHP: 1000,
		Punch: 35, Kick: 55, Special: 85,
		Combos: []Combo{
			{Name: "Toilet Flush", Inputs: []Token{TokKick, TokKick, TokSpecial}, Damage: 155},
			{Name: "Dop Dop Yes Yes", Inputs: []Token{Left, Right, Left, TokPunch}, Damage: 180},
		},
	},
	{
		ID: "chillguy", Name: "Chill Guy", BaseHP: 1300,
		Punch: 38, Kick: 42, Special: 70,
		Combos: []Combo{
			{Name: "Lowkey Slide", Inputs: []Token{Right, TokKick, TokKick}, Damage: 125},
			{Name: "Hands In Pockets", Inputs: []Token{TokParry, TokPunch, TokSpecial}, Damage: 145},
		},
	},
	{
		ID: "67", Name: "67", BaseHP: 1267,
		Punch: 46, Kick: 47, Special: 67,
		Combos: []Combo{
			{Name: "Six Seven", Inputs: []Token{TokPunch, TokKick, TokPunch, TokKick}, Damage: 167},
			{Name: "Mango Phonk", Inputs: []Token{Left, Left, TokSpecial}, Damage: 134},
		},
	},
}

// ========================================
// BOSSES
// ========================================

var defaultBosses = []Boss{
	{
		Character: Character{
			ID: "boss_67", Name: "67 Boss", BaseHP: 1500,
			Punch: 60, Kick: 70, Special: 110,
		},
		Kind:          BossSurvival,
		BaseCharacter: Character67,
		StompCooldown: 120,
		StompChance:   0.15,
		StompRange:    3,
		DashCooldown:  90,
		DashChance:    0.30,
		DashRange:     2,
	},
	{
		Character: Character{
			ID: "sahur_titan", Name: "Sahur Titan", BaseHP: 1600,
			Punch: 55, Kick: 65, Special: 120,
		},
		Kind:          BossTurnBased,
		BaseCharacter: 2,
	},
}

// ========================================
// DIFFICULTY PROFILES
// ========================================

var defaultDifficulties = map[string]Difficulty{
	Easy:      {Label: Easy, Aggression: 0.5, ParryChance: 0.05, ReactionTime: 30, CPUHPMultiplier: 0.8, LearningRate: 0.02},
	Normal:    {Label: Normal, Aggression: 1.0, ParryChance: 0.15, ReactionTime: 20, CPUHPMultiplier: 1.0, LearningRate: 0.05},
	Hard:      {Label: Hard, Aggression: 1.5, ParryChance: 0.25, ReactionTime: 12, CPUHPMultiplier: 1.2, LearningRate: 0.08},
	Insane:    {Label: Insane, Aggression: 2.0, ParryChance: 0.35, ReactionTime: 6, CPUHPMultiplier: 1.5, LearningRate: 0.12},
	BossLabel: {Label: BossLabel, Aggression: 2.5, ParryChance: 0, ReactionTime: 4, CPUHPMultiplier: 2.0, LearningRate: 0, IsBoss: true},
}

// Catalog is the read-only game data a battle is built from.
type Catalog struct {
	Characters   []Character
	Bosses       []Boss
	Difficulties map[string]Difficulty
}

// Default returns a fresh copy of the built-in roster.
func Default() *Catalog {
	c := &Catalog{
		Characters:   append([]Character(nil), defaultCharacters...),
		Bosses:       append([]Boss(nil), defaultBosses...),
		Difficulties: make(map[string]Difficulty, len(defaultDifficulties)),
	}
	for k, v := range defaultDifficulties {
		c.Difficulties[k] = v
	}
	return c
}

// Character returns the roster entry at index i.
func (c *Catalog) Character(i int) (*Character, error) {
	if i < 0 || i >= len(c.Characters) {
		return nil, fmt.Errorf("character index %d out of range", i)
	}
	return &c.Characters[i], nil
}

// Difficulty looks up a profile by label.
func (c *Catalog) Difficulty(label string) (Difficulty, bool) {
	d, ok := c.Difficulties[label]
	return d, ok
}

// BossFor returns the boss faced when the player picks character i on the
// given difficulty: the label must be a boss profile and i the boss's base
// character.
func (c *Catalog) BossFor(i int, label string) (*Boss, bool) {
	d, ok := c.Difficulties[label]
	if !ok || !d.IsBoss {
		return nil, false
	}
	for k := range c.Bosses {
		if c.Bosses[k].BaseCharacter == i {
			return &c.Bosses[k], true
		}
	}
	return nil, false
}
