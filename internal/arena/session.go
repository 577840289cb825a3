package arena

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"brainrot67/internal/battle"
	"brainrot67/internal/data"
	"brainrot67/internal/roster"
)

// Session is one player's connection to a private battle against the CPU.
// The run goroutine owns the round; the pumps only move bytes.
type Session struct {
	ID         string
	UserID     string
	Nickname   string
	Character  int
	Difficulty string
	Send       chan []byte

	conn     *websocket.Conn
	inbox    chan inbound
	gateway  Gateway
	registry *roster.Registry
	clock    battle.Clock
	newDice  func() battle.Dice
	sched    *battle.Scheduler
	onClose  func(*Session)

	round      *battle.Round
	flushed    bool
	parryShown int
}

func (s *Session) guest() bool { return s.UserID == "" || s.UserID == "guest" }

// start resolves the player and sets up the first round.
func (s *Session) start(ctx context.Context) error {
	if !s.guest() {
		ctx, cancel := context.WithTimeout(ctx, persistTimeout)
		u, err := s.gateway.GetUser(ctx, s.UserID)
		cancel()
		switch {
		case errors.Is(err, data.ErrUserNotFound):
			log.Printf("[ARENA] unknown user %s, playing as guest", s.UserID)
			s.UserID = ""
		case err != nil:
			return fmt.Errorf("load user: %w", err)
		default:
			s.Nickname = u.Nickname
		}
	}
	if err := s.newRound(ctx); err != nil {
		return err
	}
	s.sendWelcome()
	return nil
}

// newRound replaces the finished round with a fresh one. Guests fight with no
// modifiers and a blank memory.
func (s *Session) newRound(ctx context.Context) error {
	var dice battle.Dice
	if s.newDice != nil {
		dice = s.newDice()
	}
	userID := s.UserID
	if s.guest() {
		userID = ""
	}
	ctx, cancel := context.WithTimeout(ctx, persistTimeout)
	defer cancel()
	r, err := NewRound(ctx, s.gateway, userID, battle.Config{
		Catalog:        s.registry.Current(),
		CharacterIndex: s.Character,
		Opponent:       battle.RandomOpponent,
		Difficulty:     s.Difficulty,
		Dice:           dice,
		Clock:          s.clock,
		Scheduler:      s.sched,
	})
	if err != nil {
		return err
	}
	s.round = r
	s.flushed = false
	s.parryShown = 0
	return nil
}

func (s *Session) run(tickRate int) {
	tick := time.NewTicker(time.Second / time.Duration(tickRate))
	parry := time.NewTicker(time.Second)
	defer func() {
		tick.Stop()
		parry.Stop()
		s.shutdown()
	}()

	for {
		select {
		case msg, ok := <-s.inbox:
			if !ok {
				return
			}
			s.handle(msg)
		case <-tick.C:
			s.step()
		case <-parry.C:
			s.parryCountdown()
		}
	}
}

func (s *Session) handle(msg inbound) {
	r := s.round
	switch msg.Type {
	case "press":
		tok, err := roster.ParseToken(msg.Token)
		if err != nil {
			return
		}
		r.Press(tok)
		s.publish()
	case "release":
		if tok, err := roster.ParseToken(msg.Token); err == nil {
			r.Release(tok)
		}
	case "move":
		r.SetMovement(msg.Left, msg.Right)
	case "rematch":
		if !s.flushed {
			return
		}
		if err := s.newRound(context.Background()); err != nil {
			log.Printf("[ARENA] rematch for %s failed: %v", s.ID, err)
			s.sendJSON(errorMsg{Type: "error", Message: "could not start rematch"})
			return
		}
		s.sendWelcome()
	}
}

// step advances the round by one tick and pushes the results out.
func (s *Session) step() {
	if s.round == nil || s.flushed {
		return
	}
	s.round.Advance()
	s.publish()
}

func (s *Session) publish() {
	r := s.round
	for _, e := range r.DrainEvents() {
		s.sendJSON(eventMsg{Type: "event", Event: e})
	}
	s.sendJSON(stateMsg{Type: "state", State: r.Snapshot()})
	if !r.Active() {
		s.flush(context.Background())
	}
}

func (s *Session) parryCountdown() {
	if s.round == nil || !s.round.Active() {
		return
	}
	left := s.round.ParryRemaining()
	if left == 0 && s.parryShown == 0 {
		return
	}
	s.parryShown = left
	s.sendJSON(parryMsg{Type: "parry_cooldown", Seconds: left})
}

// flush ends the round and writes its outcome back. An abandoned round only
// keeps what the CPU learned; a decided one settles coins, unlocks and items.
func (s *Session) flush(ctx context.Context) {
	if s.flushed || s.round == nil {
		return
	}
	s.flushed = true
	res := s.round.End()
	msg := roundOverMsg{Type: "round_over", Result: res}
	if mv, n := res.Memory.FavoriteMove(); n > 0 {
		msg.Remembered = mv
	}

	if !s.guest() {
		ctx, cancel := context.WithTimeout(ctx, persistTimeout)
		defer cancel()
		u, err := Settle(ctx, s.gateway, s.UserID, res)
		if err != nil {
			log.Printf("[ARENA] failed to settle round for %s: %v", s.UserID, err)
		} else if u != nil {
			msg.User = u
			msg.Saved = true
		}
	}

	log.Printf("[ARENA] %s round %d over: %s score=%d coins=%d", s.Nickname, s.round.Generation(), res.Winner, res.Score, res.Coins)
	s.sendJSON(msg)
}

// shutdown runs once the client is gone.
func (s *Session) shutdown() {
	s.flush(context.Background())
	close(s.Send)
	if s.onClose != nil {
		s.onClose(s)
	}
	log.Printf("[ARENA] %s left (%s)", s.Nickname, s.ID)
}

func (s *Session) sendWelcome() {
	s.sendJSON(welcomeMsg{
		Type:       "welcome",
		Session:    s.ID,
		Nickname:   s.Nickname,
		Character:  s.Character,
		Difficulty: s.Difficulty,
		Boss:       s.round.IsBoss(),
		Round:      s.round.Generation(),
	})
}

func (s *Session) sendJSON(v any) {
	raw, _ := json.Marshal(v)
	select {
	case s.Send <- raw:
	default:
	}
}

func (s *Session) writePump() {
	defer s.conn.Close()
	for msg := range s.Send {
		if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

func (s *Session) readPump() {
	defer func() {
		close(s.inbox)
		s.conn.Close()
	}()
	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			break
		}
		var msg inbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}
		s.inbox <- msg
	}
}
