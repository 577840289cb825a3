package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"brainrot67/internal/arena"
	"brainrot67/internal/battle"
	"brainrot67/internal/data"
	"brainrot67/internal/platform/config"
	"brainrot67/internal/roster"
)

type duelConfig struct {
	SQLitePath string `env:"BRAINROT_SQLITE_PATH" envDefault:"brainrot67.db"`
	RosterPath string `env:"BRAINROT_ROSTER_PATH"`
}

// holdTicks is how long one key press keeps the fighter walking. Terminals
// report presses only, never releases.
const holdTicks = 12

type duel struct {
	screen   tcell.Screen
	store    *data.Store
	catalog  *roster.Catalog
	userID   string
	char     int
	diff     string
	round    *battle.Round
	sched    *battle.Scheduler
	feed     []string
	status   string
	settled  bool
	holdL    int
	holdR    int
	lastUser *data.User
}

func main() {
	var cfg duelConfig
	if err := config.ParseEnv(&cfg); err != nil {
		config.Exitf("%v", err)
	}
	char := flag.Int("char", 0, "character index")
	difficulty := flag.String("difficulty", roster.Normal, "difficulty label (easy, normal, hard, insane, boss)")
	userID := flag.String("user", "", "player id to load items and save progress for; empty plays as guest")
	flag.Parse()

	catalog := roster.Default()
	if cfg.RosterPath != "" {
		var err error
		if catalog, err = roster.LoadFile(cfg.RosterPath); err != nil {
			config.Exitf("load roster: %v", err)
		}
	}

	var store *data.Store
	if *userID != "" {
		var err error
		if store, err = data.OpenSQLite(cfg.SQLitePath); err != nil {
			config.Exitf("open store: %v", err)
		}
		defer store.Close()
		if _, err := store.GetUser(context.Background(), *userID); err != nil {
			config.Exitf("load user %s: %v", *userID, err)
		}
	}

	// The screen owns stdout; keep log lines out of the way.
	log.SetOutput(os.Stderr)

	screen, err := tcell.NewScreen()
	if err != nil {
		config.Exitf("open terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		config.Exitf("init terminal: %v", err)
	}

	d := &duel{
		screen:  screen,
		store:   store,
		catalog: catalog,
		userID:  *userID,
		char:    *char,
		diff:    *difficulty,
		sched:   battle.NewScheduler(),
	}
	if err := d.newRound(); err != nil {
		screen.Fini()
		config.Exitf("%v", err)
	}
	d.run()
	screen.Fini()
	if d.lastUser != nil {
		fmt.Printf("%s#%04d: %d coins, %d wins\n", d.lastUser.Nickname, d.lastUser.Tag, d.lastUser.Coins, d.lastUser.Wins)
	}
}

func (d *duel) newRound() error {
	cfg := battle.Config{
		Catalog:        d.catalog,
		CharacterIndex: d.char,
		Opponent:       battle.RandomOpponent,
		Difficulty:     d.diff,
		Scheduler:      d.sched,
	}
	var (
		r   *battle.Round
		err error
	)
	if d.store != nil {
		r, err = arena.NewRound(context.Background(), d.store, d.userID, cfg)
	} else {
		r, err = battle.NewRound(cfg)
	}
	if err != nil {
		return err
	}
	d.round = r
	d.settled = false
	d.status = ""
	d.feed = d.feed[:0]
	d.holdL, d.holdR = 0, 0
	return nil
}

func (d *duel) run() {
	ticker := time.NewTicker(time.Second / battle.TicksPerSecond)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := d.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	for {
		select {
		case ev := <-events:
			if !d.handleInput(ev) {
				d.settle()
				return
			}
		case <-ticker.C:
			d.step()
			d.draw()
		}
	}
}

func (d *duel) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case 'a':
			d.press(roster.Left)
			d.holdL = holdTicks
		case 'd':
			d.press(roster.Right)
			d.holdR = holdTicks
		case 'j':
			d.press(roster.TokPunch)
		case 'k':
			d.press(roster.TokKick)
		case 'l':
			d.press(roster.TokSpecial)
		case ' ':
			d.press(roster.TokParry)
		case 'r':
			if d.settled {
				if err := d.newRound(); err != nil {
					d.status = err.Error()
				}
			}
		}
	case *tcell.EventResize:
		d.screen.Sync()
	}
	return true
}

func (d *duel) press(tok roster.Token) {
	d.round.Press(tok)
	d.collect()
}

func (d *duel) step() {
	if d.settled {
		return
	}
	if d.holdL > 0 {
		if d.holdL--; d.holdL == 0 {
			d.round.Release(roster.Left)
		}
	}
	if d.holdR > 0 {
		if d.holdR--; d.holdR == 0 {
			d.round.Release(roster.Right)
		}
	}
	d.round.Advance()
	d.collect()
	if !d.round.Active() {
		d.settle()
	}
}

// collect moves new battle events into the scrolling feed.
func (d *duel) collect() {
	for _, e := range d.round.DrainEvents() {
		d.feed = append(d.feed, describe(e))
	}
	if n := len(d.feed); n > feedLines {
		d.feed = d.feed[n-feedLines:]
	}
}

func (d *duel) settle() {
	if d.settled {
		return
	}
	d.settled = true
	res := d.round.End()
	d.status = fmt.Sprintf("%s! score %d, +%d coins. r: rematch  q: quit", res.Winner, res.Score, res.Coins)
	if d.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	u, err := arena.Settle(ctx, d.store, d.userID, res)
	if err != nil {
		log.Printf("[DUEL] failed to save round: %v", err)
		d.status = "round not saved: " + err.Error()
		return
	}
	if u != nil {
		d.lastUser = u
	}
}
