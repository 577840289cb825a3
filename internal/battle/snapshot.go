package battle

// FighterView is the read-only state of one fighter for rendering.
type FighterView struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	X         float64 `json:"x"`
	Facing    int     `json:"facing"`
	Health    float64 `json:"health"`
	MaxHealth float64 `json:"maxHealth"`
	State     string  `json:"state"`
	Cooldown  int     `json:"cooldown"`
}

// BossView is the boss HUD.
type BossView struct {
	ID            string  `json:"id"`
	Kind          string  `json:"kind"`
	FakeHP        float64 `json:"fakeHp,omitempty"`
	Phase         int     `json:"phase"`
	Stunned       bool    `json:"stunned"`
	StunTimer     int     `json:"stunTimer,omitempty"`
	SecondsLeft   int     `json:"secondsLeft,omitempty"`
	SecondLife    bool    `json:"secondLifeUsed"`
	Cutscene      string  `json:"cutscene,omitempty"`
	CutsceneAlpha float64 `json:"cutsceneAlpha,omitempty"`
	TurnPhase     string  `json:"turnPhase,omitempty"`
	Vulnerable    bool    `json:"vulnerable"`
}

// Snapshot is everything a renderer needs for one frame.
type Snapshot struct {
	Tick         int         `json:"tick"`
	Active       bool        `json:"active"`
	Timer        int         `json:"timer"`
	Player       FighterView `json:"player"`
	CPU          FighterView `json:"cpu"`
	Score        int         `json:"score"`
	ComboName    string      `json:"comboName,omitempty"`
	ComboCount   int         `json:"comboCount"`
	ParryReadyIn int         `json:"parryReadyIn"`
	Boss         *BossView   `json:"boss,omitempty"`
}

func viewOf(f *Fighter) FighterView {
	return FighterView{
		ID:        f.Character.ID,
		Name:      f.Character.Name,
		X:         f.X,
		Facing:    f.Facing,
		Health:    f.Health,
		MaxHealth: f.MaxHealth,
		State:     f.State.String(),
		Cooldown:  f.AttackCooldown,
	}
}

func (r *Round) Snapshot() Snapshot {
	s := Snapshot{
		Tick:         r.tick,
		Active:       r.active,
		Timer:        r.Timer,
		Player:       viewOf(r.Player),
		CPU:          viewOf(r.CPU),
		Score:        int(r.Score),
		ComboName:    r.comboName,
		ComboCount:   r.ComboCount,
		ParryReadyIn: r.ParryRemaining(),
	}
	if r.boss == nil {
		return s
	}
	b := &BossView{ID: r.boss.ID, Kind: r.boss.Kind.String()}
	if sv := r.survival; sv != nil {
		b.FakeHP = sv.FakeHP
		b.Phase = sv.Phase
		b.Stunned = sv.Stunned()
		b.StunTimer = sv.StunTimer
		b.SecondsLeft = sv.SecondsLeft()
		b.SecondLife = sv.SecondLifeUsed
		b.Cutscene, b.CutsceneAlpha = sv.CutsceneLine()
	}
	if t := r.turns; t != nil {
		b.TurnPhase = t.Phase.String()
		b.Vulnerable = t.vulnerable()
		b.Phase = t.Strikes
	}
	s.Boss = b
	return s
}
