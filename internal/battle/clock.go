package battle

import (
	"math/rand"
	"sync"
	"time"
)

// Two clocks drive a round. Combat cooldowns count ticks and follow the
// caller's frame rate. Parry availability and the combo input window follow
// wall-clock time so the "seconds remaining" display stays honest when the
// frame rate drops.

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real time.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// MockClock is a controllable Clock for tests and replays of recorded input.
type MockClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewMockClock(start time.Time) *MockClock {
	return &MockClock{now: start}
}

func (m *MockClock) Now() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.now
}

func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Dice is the source of every random roll in a round. *rand.Rand satisfies it.
type Dice interface {
	Float64() float64
	Intn(n int) int
}

// NewDice returns a seeded pseudo-random source.
func NewDice(seed int64) Dice {
	return rand.New(rand.NewSource(seed))
}

// msToTicks converts a wall-clock delay into simulation ticks.
func msToTicks(ms int) int {
	return ms * TicksPerSecond / 1000
}
