package battle

import "brainrot67/internal/roster"

// Unlock flags granted at round end.
const (
	UnlockBoss67 = "boss_67"
)

// Winner is the outcome of a round.
type Winner int

const (
	WinnerNone Winner = iota // abandoned before a decision
	WinnerPlayer
	WinnerCPU
	WinnerDraw
)

func (w Winner) String() string {
	switch w {
	case WinnerPlayer:
		return "player"
	case WinnerCPU:
		return "cpu"
	case WinnerDraw:
		return "draw"
	}
	return "none"
}

func (w Winner) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// Result is the round-end bookkeeping handed to the progression store.
type Result struct {
	Winner          Winner     `json:"winner"`
	Score           int        `json:"score"`
	BossDefeated    bool       `json:"bossDefeated"`
	SecondLifeUsed  bool       `json:"secondLifeUsed"`
	Coins           int        `json:"coins"`
	DoubleCoinsUsed bool       `json:"doubleCoinsUsed"`
	Unlocks         []string   `json:"unlocks,omitempty"`
	CharacterIndex  int        `json:"character"`
	Difficulty      string     `json:"difficulty"`
	MemoryKey       string     `json:"-"`
	Memory          *CpuMemory `json:"-"`
	Ticks           int        `json:"ticks"`
}

// Result returns the round outcome once the round has ended.
func (r *Round) Result() (*Result, bool) {
	return r.result, r.result != nil
}

// End tears the round down: pending delayed effects are cancelled and an
// undecided round is recorded as abandoned. Safe to call more than once.
func (r *Round) End() *Result {
	if r.active {
		r.finish(WinnerNone)
	}
	r.sched.Cancel(r.gen)
	return r.result
}

func (r *Round) checkEnd() {
	if !r.active {
		return
	}
	if r.survival != nil {
		r.survival.checkEnd(r)
		return
	}
	p, c := r.Player.alive(), r.CPU.alive()
	switch {
	case !p && !c:
		r.finish(WinnerDraw)
	case !c:
		r.finish(WinnerPlayer)
	case !p:
		r.finish(WinnerCPU)
	case r.Timer == 0:
		pr, cr := r.Player.ratio(), r.CPU.ratio()
		switch {
		case pr > cr:
			r.finish(WinnerPlayer)
		case cr > pr:
			r.finish(WinnerCPU)
		default:
			r.finish(WinnerDraw)
		}
	}
}

func (r *Round) finish(w Winner) {
	r.active = false
	r.sched.Cancel(r.gen)
	if w != WinnerNone {
		r.memory.Fights++
	}
	r.result = r.settle(w)
	r.emit(Event{Kind: EventRoundOver, Text: w.String()})
}

// settle computes currency and unlocks: score converts at 10:1, decisions add
// a flat bonus.
func (r *Round) settle(w Winner) *Result {
	res := &Result{
		Winner:         w,
		Score:          int(r.Score),
		CharacterIndex: r.characterIndex,
		Difficulty:     r.difficulty.Label,
		MemoryKey:      MemoryKey(r.characterIndex, r.difficulty.Label),
		Memory:         r.memory,
		Ticks:          r.tick,
	}
	if r.survival != nil {
		res.SecondLifeUsed = r.survival.SecondLifeUsed
	}
	if w == WinnerNone {
		return res
	}

	coins := res.Score / 10
	switch w {
	case WinnerPlayer:
		coins += 50
	case WinnerDraw:
		coins += 25
	}
	if r.boss != nil && w == WinnerPlayer {
		res.BossDefeated = true
		coins += 500
		res.Unlocks = append(res.Unlocks, r.boss.ID+"_defeated")
	}
	if w == WinnerPlayer && r.difficulty.Label == roster.Insane && r.characterIndex == roster.Character67 {
		res.Unlocks = append(res.Unlocks, UnlockBoss67)
	}
	if r.mods.DoubleCoins > 0 && coins > 0 {
		coins *= 2
		res.DoubleCoinsUsed = true
	}
	res.Coins = coins
	return res
}
