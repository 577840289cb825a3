package battle

// Scheduler is the timer queue for delayed effects (counter attacks, the boss
// dash return, transient HUD text). Every entry carries the generation of the
// round that scheduled it; Cancel bumps the generation so a finished round's
// callbacks can never touch the next round.
type Scheduler struct {
	gen   uint64
	queue []scheduled
}

type scheduled struct {
	due int
	gen uint64
	fn  func()
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Begin opens a new generation and drops anything left from the previous one.
func (s *Scheduler) Begin() uint64 {
	s.gen++
	s.queue = s.queue[:0]
	return s.gen
}

// After runs fn once tick now+delay is reached, provided gen is still live.
func (s *Scheduler) After(gen uint64, now, delay int, fn func()) {
	if gen != s.gen {
		return
	}
	if delay < 1 {
		delay = 1
	}
	s.queue = append(s.queue, scheduled{due: now + delay, gen: gen, fn: fn})
}

// Run fires every due callback of generation gen in scheduling order.
func (s *Scheduler) Run(gen uint64, now int) {
	if len(s.queue) == 0 {
		return
	}
	var due []scheduled
	kept := s.queue[:0]
	for _, e := range s.queue {
		switch {
		case e.gen != s.gen:
			// stale, drop
		case e.gen == gen && e.due <= now:
			due = append(due, e)
		default:
			kept = append(kept, e)
		}
	}
	s.queue = kept
	for _, e := range due {
		if e.gen != s.gen {
			return
		}
		e.fn()
	}
}

// Cancel invalidates every pending callback of gen.
func (s *Scheduler) Cancel(gen uint64) {
	if gen != s.gen {
		return
	}
	s.gen++
	s.queue = s.queue[:0]
}

// Pending counts callbacks still waiting in the live generation.
func (s *Scheduler) Pending() int {
	n := 0
	for _, e := range s.queue {
		if e.gen == s.gen {
			n++
		}
	}
	return n
}
