package arena

import (
	"context"
	"fmt"

	"brainrot67/internal/battle"
	"brainrot67/internal/data"
	"brainrot67/internal/shop"
)

// NewRound builds a round for a signed-in player: modifiers come from their
// inventory and the CPU's memory of them is loaded, or created on first
// meeting. An empty userID plays without either.
func NewRound(ctx context.Context, gw Gateway, userID string, cfg battle.Config) (*battle.Round, error) {
	if userID != "" {
		inv, err := gw.Inventory(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load inventory: %w", err)
		}
		cfg.Modifiers = shop.ModifiersFor(inv)

		key := battle.MemoryKey(cfg.CharacterIndex, cfg.Difficulty)
		raw, found, err := gw.LoadMemory(ctx, userID, key)
		if err != nil {
			return nil, fmt.Errorf("load memory: %w", err)
		}
		mem := battle.NewMemory()
		if found {
			mem = battle.ParseMemory(raw)
		} else if err := gw.SaveMemory(ctx, userID, key, mem.Encode()); err != nil {
			return nil, fmt.Errorf("create memory: %w", err)
		}
		cfg.Memory = mem
	}
	return battle.NewRound(cfg)
}

// Settle writes a finished round back. An abandoned round only keeps what the
// CPU learned and returns a nil user; a decided one settles coins, unlocks and
// the double-coins use in one transaction.
func Settle(ctx context.Context, gw Gateway, userID string, res *battle.Result) (*data.User, error) {
	if res.Winner == battle.WinnerNone {
		if err := gw.SaveMemory(ctx, userID, res.MemoryKey, res.Memory.Encode()); err != nil {
			return nil, fmt.Errorf("save memory: %w", err)
		}
		return nil, nil
	}
	u, err := gw.RecordResult(ctx, userID, resultRecord(res))
	if err != nil {
		return nil, fmt.Errorf("record result: %w", err)
	}
	return &u, nil
}

func resultRecord(res *battle.Result) data.ResultRecord {
	rec := data.ResultRecord{
		CharacterIndex: res.CharacterIndex,
		Difficulty:     res.Difficulty,
		Winner:         res.Winner.String(),
		Score:          res.Score,
		Coins:          res.Coins,
		Unlocks:        res.Unlocks,
		MemoryKey:      res.MemoryKey,
		Memory:         res.Memory.Encode(),
	}
	if res.DoubleCoinsUsed {
		rec.ConsumeItem = shop.DoubleCoins
	}
	return rec
}
