package battle

import (
	"encoding/json"
	"fmt"
	"strings"

	"brainrot67/internal/roster"
)

const (
	maxDodgeChance   = 0.6
	maxCounterChance = 0.5
	dodgeStep        = 0.05
)

// CpuMemory is what the CPU remembers about a player for one character and
// difficulty pair. It is created on first encounter, mutated every fight and
// never deleted; persistence belongs to the caller.
type CpuMemory struct {
	Moves         map[string]int `json:"moves"`
	Patterns      map[string]int `json:"patterns"`
	DodgeChance   float64        `json:"dodgeChance"`
	CounterChance float64        `json:"counterChance"`
	Fights        int            `json:"fights"`
}

func NewMemory() *CpuMemory {
	return &CpuMemory{
		Moves:         make(map[string]int),
		Patterns:      make(map[string]int),
		DodgeChance:   0.05,
		CounterChance: 0.1,
	}
}

// MemoryKey is the persistence key of a memory entry.
func MemoryKey(characterIndex int, difficulty string) string {
	return fmt.Sprintf("%d_%s", characterIndex, difficulty)
}

// ParseMemory decodes a stored memory. Empty or malformed input yields a
// fresh memory rather than an error: a broken record must not block a fight.
func ParseMemory(raw string) *CpuMemory {
	if strings.TrimSpace(raw) == "" {
		return NewMemory()
	}
	m := NewMemory()
	if err := json.Unmarshal([]byte(raw), m); err != nil {
		return NewMemory()
	}
	if m.Moves == nil {
		m.Moves = make(map[string]int)
	}
	if m.Patterns == nil {
		m.Patterns = make(map[string]int)
	}
	m.DodgeChance = clamp(m.DodgeChance, 0, maxDodgeChance)
	m.CounterChance = clamp(m.CounterChance, 0, maxCounterChance)
	if m.Fights < 0 {
		m.Fights = 0
	}
	return m
}

func (m *CpuMemory) Encode() string {
	data, _ := json.Marshal(m)
	return string(data)
}

func (m *CpuMemory) recordMove(mv roster.Move) {
	m.Moves[mv.String()]++
}

func (m *CpuMemory) recordPattern(window []roster.Token) {
	parts := make([]string, len(window))
	for i, t := range window {
		parts[i] = t.String()
	}
	m.Patterns[strings.Join(parts, ">")]++
}

// comboLanded ratchets the CPU's defensive instincts after a combo hits.
func (m *CpuMemory) comboLanded(learningRate float64) {
	m.DodgeChance = clamp(m.DodgeChance+dodgeStep, 0, maxDodgeChance)
	m.CounterChance = clamp(m.CounterChance+learningRate, 0, maxCounterChance)
}

// FavoriteMove returns the move the player used most, if any.
func (m *CpuMemory) FavoriteMove() (string, int) {
	best, count := "", 0
	for mv, n := range m.Moves {
		if n > count || (n == count && mv < best) {
			best, count = mv, n
		}
	}
	return best, count
}
