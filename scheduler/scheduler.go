// Package scheduler multiplexes CPU time across a population of
// organisms: plain round-robin with an occasional random reseed to avoid
// starving the tail of the population, plus dead-organism reaping.
package scheduler

import (
	"math/rand"

	"github.com/tlinden-labs/tierrasoup/organism"
)

// jitterProbability is the chance SelectNext randomizes its cursor
// before looking for the next live organism.
const jitterProbability = 0.10

// Scheduler tracks the round-robin cursor and the time slice it grants.
type Scheduler struct {
	cursor    int
	TimeSlice int
}

// New builds a scheduler handing out timeSlice instructions per turn.
func New(timeSlice int) *Scheduler {
	return &Scheduler{TimeSlice: timeSlice}
}

// SelectNext returns the index of the next live organism to run, having
// reset its energy to TimeSlice, or false if none are alive. With 10%
// probability the cursor is first randomized to break pathological
// locality among a population's early indices.
func (s *Scheduler) SelectNext(population []*organism.Organism, rng *rand.Rand) (int, bool) {
	if len(population) == 0 {
		return 0, false
	}

	if rng.Float64() < jitterProbability {
		s.cursor = rng.Intn(len(population))
	} else {
		s.cursor %= len(population)
	}

	start := s.cursor
	for {
		if population[s.cursor].Alive {
			idx := s.cursor
			population[idx].ResetEnergy(s.TimeSlice)
			s.cursor = (s.cursor + 1) % len(population)
			return idx, true
		}

		s.cursor = (s.cursor + 1) % len(population)
		if s.cursor == start {
			return 0, false
		}
	}
}

// ReapDead removes dead organisms from population, preserving the
// relative order of survivors, and returns the number removed.
func ReapDead(population []*organism.Organism) ([]*organism.Organism, int) {
	survivors := population[:0]
	for _, o := range population {
		if o.Alive {
			survivors = append(survivors, o)
		}
	}
	removed := len(population) - len(survivors)
	return survivors, removed
}
