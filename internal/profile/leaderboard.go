package profile

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"brainrot67/internal/data"
)

const (
	defaultBoardSize = 20
	maxBoardSize     = 100
)

// Ranker is the store query behind the leaderboard.
type Ranker interface {
	Leaderboard(ctx context.Context, limit int) ([]data.Ranking, error)
}

// NewLeaderboardHandler serves GET /api/leaderboard?limit=<n>.
func NewLeaderboardHandler(store Ranker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		limit := defaultBoardSize
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = min(n, maxBoardSize)
		}
		board, err := store.Leaderboard(r.Context(), limit)
		if err != nil {
			log.Printf("[PROFILE] leaderboard failed: %v", err)
			http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, board)
	}
}
