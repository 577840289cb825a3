package shop

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"brainrot67/internal/data"
)

func openStore(t *testing.T) *data.Store {
	t.Helper()
	s, err := data.OpenSQLite(filepath.Join(t.TempDir(), "shop.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func buy(t *testing.T, h http.Handler, userID, item string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/shop/buy", strings.NewReader(`{"item_id":"`+item+`"}`))
	if userID != "" {
		req.AddCookie(&http.Cookie{Name: "user_id", Value: userID})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestBuyHandler(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	u, err := store.CreateUser(ctx, "tralalero", "")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if err := store.AdjustCoins(ctx, u.ID, 1000); err != nil {
		t.Fatalf("adjust coins: %v", err)
	}
	h := NewBuyHandler(store)

	cases := []struct {
		name   string
		user   string
		item   string
		status int
	}{
		{"no_cookie", "", DamageBoost, http.StatusUnauthorized},
		{"unknown_item", u.ID, "frame_neon", http.StatusBadRequest},
		{"buy_damage", u.ID, DamageBoost, http.StatusOK},
		{"already_owned", u.ID, DamageBoost, http.StatusConflict},
		{"buy_pack", u.ID, DoubleCoins, http.StatusOK},
		{"buy_pack_again", u.ID, DoubleCoins, http.StatusPaymentRequired},
		{"unknown_user", "u_missing", HealthBoost, http.StatusNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rec := buy(t, h, c.user, c.item)
			if rec.Code != c.status {
				t.Fatalf("expected %d, got %d: %s", c.status, rec.Code, rec.Body.String())
			}
		})
	}

	inv, err := store.Inventory(ctx, u.ID)
	if err != nil {
		t.Fatalf("inventory: %v", err)
	}
	mods := ModifiersFor(inv)
	if !mods.DamageBoost || mods.HealthBoost || mods.DoubleCoins != 3 {
		t.Fatalf("unexpected modifiers %+v", mods)
	}
}

func TestBuyHandlerReturnsBalance(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	u, _ := store.CreateUser(ctx, "sahur", "")
	_ = store.AdjustCoins(ctx, u.ID, 800)

	rec := buy(t, NewBuyHandler(store), u.ID, ParryReduction)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Success bool `json:"success"`
		Coins   int  `json:"coins"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Coins != 400 {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestListHandler(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	u, _ := store.CreateUser(ctx, "bombardiro", "")
	_ = store.AdjustCoins(ctx, u.ID, 300)
	if rec := buy(t, NewBuyHandler(store), u.ID, DoubleCoins); rec.Code != http.StatusOK {
		t.Fatalf("buy failed: %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/shop", nil)
	req.AddCookie(&http.Cookie{Name: "user_id", Value: u.ID})
	rec := httptest.NewRecorder()
	NewListHandler(store).ServeHTTP(rec, req)

	var items []struct {
		ID    string `json:"id"`
		Cost  int    `json:"cost"`
		Owned int    `json:"owned"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(items) != len(Items()) {
		t.Fatalf("expected %d items, got %d", len(Items()), len(items))
	}
	for _, it := range items {
		want := 0
		if it.ID == DoubleCoins {
			want = 3
		}
		if it.Owned != want {
			t.Fatalf("item %s: expected owned %d, got %d", it.ID, want, it.Owned)
		}
	}
}

func TestModifiersFor(t *testing.T) {
	mods := ModifiersFor(map[string]int{ComboMultiplier: 1, ParryReduction: 1, DoubleCoins: 0})
	if !mods.ComboMultiplier || !mods.ParryReduction || mods.DamageBoost || mods.DoubleCoins != 0 {
		t.Fatalf("unexpected modifiers %+v", mods)
	}
}
