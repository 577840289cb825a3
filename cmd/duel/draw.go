package main

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"

	"brainrot67/internal/battle"
)

const (
	feedLines = 6
	barWidth  = 30
)

var (
	stylePlain  = tcell.StyleDefault
	stylePlayer = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleCPU    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleBoss   = tcell.StyleDefault.Foreground(tcell.ColorPurple)
	styleCombo  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
)

func (d *duel) draw() {
	s := d.round.Snapshot()
	d.screen.Clear()
	width, _ := d.screen.Size()

	d.text(0, 0, stylePlain, fmt.Sprintf("%s vs %s   [%s]", s.Player.Name, s.CPU.Name, d.diff))
	if s.Boss == nil || s.Boss.Kind != "survival" {
		d.text(width-8, 0, stylePlain, fmt.Sprintf("T %02d", s.Timer))
	}

	playerHP := s.Player.Health / s.Player.MaxHealth
	if s.Boss != nil && s.Boss.Kind == "survival" {
		playerHP = s.Boss.FakeHP / 100
	}
	d.bar(0, 2, stylePlayer, "YOU", playerHP)
	d.bar(0, 3, styleCPU, "CPU", s.CPU.Health/s.CPU.MaxHealth)

	d.arena(5, width, s)

	row := 7
	if s.ComboName != "" {
		d.text(0, row, styleCombo, fmt.Sprintf("%s  x%d", s.ComboName, s.ComboCount))
	}
	row++
	if s.ParryReadyIn > 0 {
		d.text(0, row, styleDim, fmt.Sprintf("Parry ready in %ds", s.ParryReadyIn))
	}
	row++

	if b := s.Boss; b != nil {
		d.bossHUD(row, b)
		row += 2
	}

	row++
	for i, line := range d.feed {
		d.text(0, row+i, styleDim, line)
	}
	row += feedLines + 1

	d.text(0, row, stylePlain, fmt.Sprintf("score %d", s.Score))
	if d.status != "" {
		d.text(0, row+1, styleCombo, d.status)
	} else {
		d.text(0, row+1, styleDim, "a/d move  j punch  k kick  l special  space parry  q quit")
	}
	d.screen.Show()
}

// arena maps [ArenaMin, ArenaMax] onto the terminal width.
func (d *duel) arena(y, width int, s battle.Snapshot) {
	cols := width - 2
	if cols < 10 {
		cols = 10
	}
	col := func(x float64) int {
		t := (x - battle.ArenaMin) / (battle.ArenaMax - battle.ArenaMin)
		return 1 + int(math.Round(t*float64(cols-1)))
	}
	for x := 0; x < cols+2; x++ {
		d.screen.SetContent(x, y+1, '─', nil, styleDim)
	}
	d.screen.SetContent(col(s.Player.X), y, glyph(s.Player.State, 'P'), nil, stylePlayer)
	cpuStyle := styleCPU
	if s.Boss != nil {
		cpuStyle = styleBoss
	}
	d.screen.SetContent(col(s.CPU.X), y, glyph(s.CPU.State, 'C'), nil, cpuStyle)
}

func glyph(state string, idle rune) rune {
	if state == "attack" {
		return '*'
	}
	return idle
}

func (d *duel) bossHUD(row int, b *battle.BossView) {
	switch b.Kind {
	case "survival":
		if b.Cutscene != "" {
			style := styleBoss
			if b.CutsceneAlpha < 0.5 {
				style = styleDim
			}
			d.text(0, row, style, b.Cutscene)
			return
		}
		line := fmt.Sprintf("SURVIVE %ds  phase %d", b.SecondsLeft, b.Phase)
		if b.Stunned {
			line += "  STUNNED"
		}
		if b.SecondLife {
			line += "  (second life used)"
		}
		d.text(0, row, styleBoss, line)
	default:
		line := "boss " + b.TurnPhase
		if b.Vulnerable {
			line += "  OPEN! hit now"
		}
		d.text(0, row, styleBoss, line)
	}
}

func (d *duel) bar(x, y int, style tcell.Style, label string, ratio float64) {
	ratio = math.Max(0, math.Min(1, ratio))
	filled := int(math.Round(ratio * barWidth))
	d.text(x, y, style, fmt.Sprintf("%-4s", label))
	for i := 0; i < barWidth; i++ {
		r := '░'
		if i < filled {
			r = '█'
		}
		d.screen.SetContent(x+4+i, y, r, nil, style)
	}
	d.text(x+5+barWidth, y, style, fmt.Sprintf("%3.0f%%", ratio*100))
}

func (d *duel) text(x, y int, style tcell.Style, s string) {
	for _, r := range s {
		d.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func describe(e battle.Event) string {
	switch e.Kind {
	case battle.EventHit:
		if e.Cosmetic {
			return fmt.Sprintf("%s on %s: no effect", e.Move, e.Target)
		}
		return fmt.Sprintf("%s hits %s for %.0f", e.Move, e.Target, e.Amount)
	case battle.EventCombo:
		return fmt.Sprintf("COMBO %s for %.0f", e.Text, e.Amount)
	case battle.EventParryCooldown:
		return e.Text
	}
	if e.Text != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Text)
	}
	return e.Kind.String()
}
