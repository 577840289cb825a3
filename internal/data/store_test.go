package data

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestUser(t *testing.T, s *Store, coins int) User {
	t.Helper()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "skibidi", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if coins != 0 {
		if err := s.AdjustCoins(ctx, u.ID, coins); err != nil {
			t.Fatalf("adjust coins: %v", err)
		}
	}
	return u
}

func TestOpenSQLiteRequiresPath(t *testing.T) {
	if _, err := OpenSQLite("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestQueryRebind(t *testing.T) {
	pg := &Store{dialect: Postgres}
	lite := &Store{dialect: SQLite}
	query := `UPDATE users SET coins = $1 WHERE id = $2`
	if got := pg.q(query); got != query {
		t.Fatalf("postgres query changed: %s", got)
	}
	if got := lite.q(query); got != `UPDATE users SET coins = ? WHERE id = ?` {
		t.Fatalf("unexpected sqlite query: %s", got)
	}
}

func TestCreateAndFindUser(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, "chillguy", "hash")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if u.Tag < 1 || u.Tag > 9999 {
		t.Fatalf("tag %d out of range", u.Tag)
	}

	got, err := s.FindUser(ctx, "chillguy", u.Tag)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if got.ID != u.ID || got.PasswordHash != "hash" {
		t.Fatalf("unexpected user %+v", got)
	}

	if _, err := s.GetUser(ctx, "u_missing"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := s.FindUser(ctx, "chillguy", u.Tag+10000); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAdjustCoinsClampsAtZero(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, 100)
	if err := s.AdjustCoins(ctx, u.ID, -500); err != nil {
		t.Fatalf("adjust coins: %v", err)
	}
	got, _ := s.GetUser(ctx, u.ID)
	if got.Coins != 0 {
		t.Fatalf("expected 0 coins, got %d", got.Coins)
	}
	if err := s.AdjustCoins(ctx, "u_missing", 10); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestPurchase(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, 1000)

	coins, err := s.DeductCoinsAndAddItem(ctx, Purchase{UserID: u.ID, ItemID: "damage_boost", Cost: 600})
	if err != nil {
		t.Fatalf("buy: %v", err)
	}
	if coins != 400 {
		t.Fatalf("expected 400 coins left, got %d", coins)
	}
	if !s.HasItem(ctx, u.ID, "damage_boost") {
		t.Fatal("expected item owned")
	}

	if _, err := s.DeductCoinsAndAddItem(ctx, Purchase{UserID: u.ID, ItemID: "damage_boost", Cost: 100}); !errors.Is(err, ErrOwned) {
		t.Fatalf("expected ErrOwned, got %v", err)
	}
	got, _ := s.GetUser(ctx, u.ID)
	if got.Coins != 400 {
		t.Fatalf("failed purchase must not charge, have %d", got.Coins)
	}

	if _, err := s.DeductCoinsAndAddItem(ctx, Purchase{UserID: u.ID, ItemID: "health_boost", Cost: 500}); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if _, err := s.DeductCoinsAndAddItem(ctx, Purchase{UserID: "u_missing", ItemID: "health_boost", Cost: 1}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestStackableItems(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, 1000)

	for i := 0; i < 2; i++ {
		if _, err := s.DeductCoinsAndAddItem(ctx, Purchase{UserID: u.ID, ItemID: "double_coins", Cost: 100, Uses: 3, Stackable: true}); err != nil {
			t.Fatalf("buy pack %d: %v", i, err)
		}
	}
	inv, err := s.Inventory(ctx, u.ID)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	if inv["double_coins"] != 6 {
		t.Fatalf("expected 6 uses, got %d", inv["double_coins"])
	}

	left, err := s.ConsumeItem(ctx, u.ID, "double_coins")
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if left != 5 {
		t.Fatalf("expected 5 uses left, got %d", left)
	}
	if _, err := s.ConsumeItem(ctx, u.ID, "combo_multiplier"); !errors.Is(err, ErrNotOwned) {
		t.Fatalf("expected ErrNotOwned, got %v", err)
	}
}

func TestMemoryUpsert(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, 0)

	if _, ok, err := s.LoadMemory(ctx, u.ID, "0_normal"); err != nil || ok {
		t.Fatalf("expected no memory yet, ok=%v err=%v", ok, err)
	}
	if err := s.SaveMemory(ctx, u.ID, "0_normal", `{"fights":1}`); err != nil {
		t.Fatalf("save memory: %v", err)
	}
	if err := s.SaveMemory(ctx, u.ID, "0_normal", `{"fights":2}`); err != nil {
		t.Fatalf("save memory again: %v", err)
	}
	raw, ok, err := s.LoadMemory(ctx, u.ID, "0_normal")
	if err != nil || !ok {
		t.Fatalf("load memory: ok=%v err=%v", ok, err)
	}
	if raw != `{"fights":2}` {
		t.Fatalf("unexpected memory %s", raw)
	}
}

func TestRecordResult(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, 0)
	if _, err := s.DeductCoinsAndAddItem(ctx, Purchase{UserID: u.ID, ItemID: "double_coins", Cost: 0, Uses: 3, Stackable: true}); err != nil {
		t.Fatalf("grant pack: %v", err)
	}

	got, err := s.RecordResult(ctx, u.ID, ResultRecord{
		CharacterIndex: 5,
		Difficulty:     "insane",
		Winner:         "player",
		Score:          1234,
		Coins:          346,
		Unlocks:        []string{"boss_67"},
		ConsumeItem:    "double_coins",
		MemoryKey:      "5_insane",
		Memory:         `{"fights":1}`,
	})
	if err != nil {
		t.Fatalf("record result: %v", err)
	}
	if got.Coins != 346 || got.Wins != 1 || got.BestScore != 1234 {
		t.Fatalf("unexpected user after result %+v", got)
	}
	if len(got.Unlocks) != 1 || got.Unlocks[0] != "boss_67" {
		t.Fatalf("unexpected unlocks %v", got.Unlocks)
	}
	inv, _ := s.Inventory(ctx, u.ID)
	if inv["double_coins"] != 2 {
		t.Fatalf("expected a double coins use consumed, have %d", inv["double_coins"])
	}
	if raw, ok, _ := s.LoadMemory(ctx, u.ID, "5_insane"); !ok || raw != `{"fights":1}` {
		t.Fatalf("expected memory saved with the result, got %q", raw)
	}

	got, err = s.RecordResult(ctx, u.ID, ResultRecord{Winner: "cpu", Score: 10, Unlocks: []string{"boss_67"}})
	if err != nil {
		t.Fatalf("record loss: %v", err)
	}
	if got.Losses != 1 || got.BestScore != 1234 || len(got.Unlocks) != 1 {
		t.Fatalf("unexpected user after loss %+v", got)
	}

	if _, err := s.RecordResult(ctx, "u_missing", ResultRecord{Winner: "cpu"}); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestLeaderboard(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	low := newTestUser(t, s, 0)
	high, err := s.CreateUser(ctx, "tralalero", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	newTestUser(t, s, 0) // never played

	if _, err := s.RecordResult(ctx, low.ID, ResultRecord{Winner: "player", Score: 300}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, err := s.RecordResult(ctx, high.ID, ResultRecord{Winner: "cpu", Score: 900}); err != nil {
		t.Fatalf("record: %v", err)
	}

	board, err := s.Leaderboard(ctx, 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("expected two ranked players, got %v", board)
	}
	if board[0].Nickname != "tralalero" || board[0].BestScore != 900 || board[1].Wins != 1 {
		t.Fatalf("unexpected order %v", board)
	}

	if board, _ = s.Leaderboard(ctx, 1); len(board) != 1 {
		t.Fatalf("expected limit honoured, got %d rows", len(board))
	}
}

func TestGrantUnlocks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := newTestUser(t, s, 0)

	if err := s.GrantUnlocks(ctx, u.ID, "boss_67", "boss_67_defeated"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := s.GrantUnlocks(ctx, u.ID, "boss_67"); err != nil {
		t.Fatalf("grant again: %v", err)
	}
	if err := s.GrantUnlocks(ctx, u.ID); err != nil {
		t.Fatalf("grant nothing: %v", err)
	}

	flags, err := s.Unlocks(ctx, u.ID)
	if err != nil {
		t.Fatalf("unlocks: %v", err)
	}
	held := map[string]bool{}
	for _, f := range flags {
		held[f] = true
	}
	if len(flags) != 2 || !held["boss_67"] || !held["boss_67_defeated"] {
		t.Fatalf("expected two distinct flags, got %v", flags)
	}

	got, _ := s.GetUser(ctx, u.ID)
	if len(got.Unlocks) != 2 {
		t.Fatalf("expected unlocks on the user, got %v", got.Unlocks)
	}
	if err := s.GrantUnlocks(ctx, "u_missing", "boss_67"); err == nil {
		t.Fatal("expected error granting to an unknown user")
	}
}
