package profile

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"brainrot67/internal/data"
)

// CookieName carries the player id between requests.
const CookieName = "user_id"

const maxNickname = 24

// Store is the part of the progression store profiles need.
type Store interface {
	CreateUser(ctx context.Context, nickname, passwordHash string) (data.User, error)
	FindUser(ctx context.Context, nickname string, tag int) (data.User, error)
	GetUser(ctx context.Context, id string) (data.User, error)
}

type Profiles struct {
	store Store
}

func New(store Store) *Profiles {
	return &Profiles{store: store}
}

type registerRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

type loginRequest struct {
	Nickname string `json:"nickname"`
	Tag      int    `json:"tag"`
	Password string `json:"password"`
}

type registerResponse struct {
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Tag      int    `json:"tag"`
}

// RegisterHandler creates a user with a nickname and an auto-generated tag.
// A password is optional; without one the nickname and tag are enough to log in.
func (p *Profiles) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	nick := strings.TrimSpace(req.Nickname)
	if nick == "" || len(nick) > maxNickname {
		http.Error(w, "invalid nickname", http.StatusBadRequest)
		return
	}

	var hash string
	if req.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			http.Error(w, "invalid password", http.StatusBadRequest)
			return
		}
		hash = string(h)
	}

	u, err := p.store.CreateUser(r.Context(), nick, hash)
	if err != nil {
		log.Println("[PROFILE] register:", err)
		http.Error(w, "failed to create user", http.StatusInternalServerError)
		return
	}

	setCookie(w, u.ID)
	writeJSON(w, registerResponse{UserID: u.ID, Nickname: u.Nickname, Tag: u.Tag})
}

// LoginHandler sets the cookie for an existing nickname+tag combo.
func (p *Profiles) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	nick := strings.TrimSpace(req.Nickname)
	if nick == "" || req.Tag <= 0 {
		http.Error(w, "invalid credentials", http.StatusBadRequest)
		return
	}

	u, err := p.store.FindUser(r.Context(), nick, req.Tag)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if u.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
	}

	setCookie(w, u.ID)
	writeJSON(w, registerResponse{UserID: u.ID, Nickname: u.Nickname, Tag: u.Tag})
}

// MeHandler returns the logged-in player's progression.
func (p *Profiles) MeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := ReadUserID(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	u, err := p.store.GetUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, u)
}

// ReadUserID extracts the user_id cookie.
func ReadUserID(r *http.Request) (string, error) {
	c, err := r.Cookie(CookieName)
	if err != nil || c.Value == "" {
		return "", errors.New("missing user id cookie")
	}
	return c.Value, nil
}

func setCookie(w http.ResponseWriter, userID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    userID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
