package shop

import "brainrot67/internal/battle"

// Item ids.
const (
	DamageBoost     = "damage_boost"
	HealthBoost     = "health_boost"
	ComboMultiplier = "combo_multiplier"
	ParryReduction  = "parry_reduction"
	DoubleCoins     = "double_coins"
)

// Item is one entry of the shop catalog.
type Item struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int    `json:"cost"`
	Uses        int    `json:"uses"`
	Stackable   bool   `json:"stackable"`
}

var catalog = []Item{
	{ID: DamageBoost, Name: "Sigma Gloves", Description: "+20% damage on every hit", Cost: 500, Uses: 1},
	{ID: HealthBoost, Name: "Mango Smoothie", Description: "+20% max health", Cost: 500, Uses: 1},
	{ID: ComboMultiplier, Name: "Phonk Playlist", Description: "Combos deal 50% more damage", Cost: 750, Uses: 1},
	{ID: ParryReduction, Name: "Aura Farming", Description: "CPU parries half as often", Cost: 400, Uses: 1},
	{ID: DoubleCoins, Name: "Double Coins x3", Description: "Doubles coins for the next three rounds", Cost: 300, Uses: 3, Stackable: true},
}

// Items returns the shop catalog in display order.
func Items() []Item {
	return append([]Item(nil), catalog...)
}

// Lookup finds an item by id.
func Lookup(id string) (Item, bool) {
	for _, it := range catalog {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// ModifiersFor turns an inventory (item id to remaining uses) into the battle
// modifiers it grants.
func ModifiersFor(inventory map[string]int) battle.Modifiers {
	return battle.Modifiers{
		DamageBoost:     inventory[DamageBoost] > 0,
		HealthBoost:     inventory[HealthBoost] > 0,
		ComboMultiplier: inventory[ComboMultiplier] > 0,
		ParryReduction:  inventory[ParryReduction] > 0,
		DoubleCoins:     inventory[DoubleCoins],
	}
}
