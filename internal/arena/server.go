package arena

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"brainrot67/internal/battle"
	"brainrot67/internal/data"
	"brainrot67/internal/profile"
	"brainrot67/internal/roster"
)

// DefaultTickRate matches the simulation's 60 ticks per second.
const DefaultTickRate = battle.TicksPerSecond

// Gateway is the progression store as battle sessions see it.
type Gateway interface {
	GetUser(ctx context.Context, id string) (data.User, error)
	Inventory(ctx context.Context, userID string) (map[string]int, error)
	LoadMemory(ctx context.Context, userID, key string) (string, bool, error)
	SaveMemory(ctx context.Context, userID, key, raw string) error
	RecordResult(ctx context.Context, userID string, rec data.ResultRecord) (data.User, error)
}

// Server hands out one battle session per websocket connection.
type Server struct {
	gateway  Gateway
	registry *roster.Registry
	tickRate int

	// injected by tests
	clock   battle.Clock
	newDice func() battle.Dice

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewServer(gateway Gateway, registry *roster.Registry, tickRate int) *Server {
	if tickRate <= 0 {
		tickRate = DefaultTickRate
	}
	return &Server{
		gateway:  gateway,
		registry: registry,
		tickRate: tickRate,
		sessions: make(map[string]*Session),
	}
}

// Sessions reports how many battles are currently connected.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// HandleWS serves GET /ws/battle?char=<i>&difficulty=<label>.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	char, err := strconv.Atoi(q.Get("char"))
	if err != nil {
		http.Error(w, "invalid character", http.StatusBadRequest)
		return
	}
	difficulty := q.Get("difficulty")
	if difficulty == "" {
		difficulty = roster.Normal
	}
	cat := s.registry.Current()
	if _, err := cat.Character(char); err != nil {
		http.Error(w, "invalid character", http.StatusBadRequest)
		return
	}
	if _, ok := cat.Difficulty(difficulty); !ok {
		http.Error(w, "invalid difficulty", http.StatusBadRequest)
		return
	}

	userID, _ := profile.ReadUserID(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	sess := s.newSession(userID, char, difficulty)
	sess.conn = conn
	if err := sess.start(r.Context()); err != nil {
		log.Printf("[ARENA] session %s failed to start: %v", sess.ID, err)
		_ = conn.WriteJSON(errorMsg{Type: "error", Message: "could not start battle"})
		conn.Close()
		return
	}

	s.track(sess)
	go sess.writePump()
	go sess.run(s.tickRate)
	sess.readPump()
}

func (s *Server) newSession(userID string, char int, difficulty string) *Session {
	sess := &Session{
		ID:         uuid.NewString(),
		UserID:     userID,
		Nickname:   "Guest",
		Character:  char,
		Difficulty: difficulty,
		Send:       make(chan []byte, 256),
		inbox:      make(chan inbound, 64),
		gateway:    s.gateway,
		registry:   s.registry,
		clock:      s.clock,
		newDice:    s.newDice,
		sched:      battle.NewScheduler(),
		onClose:    s.untrack,
	}
	return sess
}

func (s *Server) track(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	log.Printf("[ARENA] %s joined as %s (%d live)", sess.Nickname, sess.ID, n)
}

func (s *Server) untrack(sess *Session) {
	s.mu.Lock()
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
}

// persistTimeout bounds each store call made from a session goroutine.
const persistTimeout = 5 * time.Second
