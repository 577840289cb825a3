package shop

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"brainrot67/internal/data"
)

// Store is the part of the progression store the shop needs.
type Store interface {
	Inventory(ctx context.Context, userID string) (map[string]int, error)
	DeductCoinsAndAddItem(ctx context.Context, p data.Purchase) (int, error)
}

type BuyRequest struct {
	ItemID string `json:"item_id"`
}

type listing struct {
	Item
	Owned int `json:"owned"`
}

// NewListHandler serves the catalog, annotated with what the caller owns
// when the user_id cookie is present.
func NewListHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var inv map[string]int
		if c, err := r.Cookie("user_id"); err == nil && c.Value != "" {
			inv, err = store.Inventory(r.Context(), c.Value)
			if err != nil {
				log.Println("[SHOP] inventory:", err)
			}
		}
		out := make([]listing, 0, len(catalog))
		for _, it := range catalog {
			out = append(out, listing{Item: it, Owned: inv[it.ID]})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}
}

func NewBuyHandler(store Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		// 1. Auth Check
		c, err := r.Cookie("user_id")
		if err != nil || c.Value == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		userID := c.Value

		// 2. Parse Request
		var req BuyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Bad Request", http.StatusBadRequest)
			return
		}
		item, ok := Lookup(req.ItemID)
		if !ok {
			http.Error(w, "Unknown Item", http.StatusBadRequest)
			return
		}

		// 3. Transaction: Deduct Coins & Add Item
		coins, err := store.DeductCoinsAndAddItem(r.Context(), data.Purchase{
			UserID:    userID,
			ItemID:    item.ID,
			Cost:      item.Cost,
			Uses:      item.Uses,
			Stackable: item.Stackable,
		})
		switch {
		case errors.Is(err, data.ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
			return
		case errors.Is(err, data.ErrInsufficientFunds):
			http.Error(w, "Not enough coins!", http.StatusPaymentRequired)
			return
		case errors.Is(err, data.ErrOwned):
			http.Error(w, "You already own this item", http.StatusConflict)
			return
		case err != nil:
			log.Println("[SHOP] purchase error:", err)
			http.Error(w, "Transaction failed", http.StatusInternalServerError)
			return
		}
		log.Printf("[SHOP] %s bought %s for %d", userID, item.ID, item.Cost)

		// 4. Return New State
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": item.Name + " purchased!",
			"coins":   coins,
		})
	}
}
