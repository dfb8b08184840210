// Package simulator drives the VM ecology: it owns the soup, the
// population, the scheduler, and the statistics block, and resolves the
// effects the CPU returns (allocation requests, reproduction, death)
// against them.
package simulator

import (
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/tlinden-labs/tierrasoup/cpu"
	"github.com/tlinden-labs/tierrasoup/organism"
	"github.com/tlinden-labs/tierrasoup/scheduler"
	"github.com/tlinden-labs/tierrasoup/soup"
	"github.com/tlinden-labs/tierrasoup/stats"
)

// Config holds the tunable knobs spec.md §6 names.
type Config struct {
	MemorySize    int
	MutationRate  float64
	MaxPopulation int
	TimeSlice     int

	// Seed, if non-zero, makes the RNG deterministic; 0 means time-seeded.
	Seed int64
}

// DefaultConfig returns spec.md §6's documented defaults.
func DefaultConfig() Config {
	return Config{
		MemorySize:    65536,
		MutationRate:  0.001,
		MaxPopulation: 200,
		TimeSlice:     25,
	}
}

// Simulator is the VM ecology's orchestrator.
type Simulator struct {
	Soup       *soup.Soup
	Population []*organism.Organism
	Scheduler  *scheduler.Scheduler
	Stats      *stats.Statistics
	Config     Config

	rng           *rand.Rand
	nextOrganismID int
	logger        zerolog.Logger
}

// Option configures a Simulator at construction time.
type Option func(*Simulator)

// WithLogger attaches a structured logger for lifecycle events (births,
// deaths, reap batches). VM-level fault accounting always stays on the
// organism's own counters regardless of logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Simulator) { s.logger = logger }
}

// New builds a Simulator with an empty soup and population.
func New(cfg Config, opts ...Option) *Simulator {
	s := &Simulator{
		Soup:      soup.New(cfg.MemorySize),
		Scheduler: scheduler.New(cfg.TimeSlice),
		Stats:     stats.New(cfg.MemorySize),
		Config:    cfg,
		logger:    zerolog.Nop(),
	}

	if cfg.Seed != 0 {
		s.rng = rand.New(rand.NewSource(cfg.Seed))
	} else {
		s.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// InitializeWithAncestor seeds the soup with the minimal self-replicator
// and creates the single founding organism.
func (s *Simulator) InitializeWithAncestor() {
	ancestor := createAncestor()
	size := len(ancestor)

	addr, ok := s.Soup.Allocate(size, s.rng)
	if !ok {
		s.logger.Error().Int("size", size).Msg("failed to allocate ancestor")
		return
	}

	for i, inst := range ancestor {
		s.Soup.Write(addr+i, inst)
	}

	org := organism.New(s.nextOrganismID, addr, size, 0, nil)
	s.nextOrganismID++
	s.Population = append(s.Population, org)
	s.Stats.RecordBirth(size, 0)

	s.logger.Info().Int("address", addr).Int("size", size).Msg("ancestor seeded")
}

// Step advances the simulation by granting one organism up to
// Config.TimeSlice instructions, resolving whatever effect it produces,
// and performing periodic reaping/stat maintenance.
func (s *Simulator) Step() {
	idx, ok := s.Scheduler.SelectNext(s.Population, s.rng)
	if ok {
		s.runSlice(idx)
	}

	if s.Stats.TotalInstructions%1000 == 0 {
		s.reap()
	}
	if s.Stats.TotalInstructions%100 == 0 {
		s.updateStats()
	}
}

func (s *Simulator) runSlice(idx int) {
	for i := 0; i < s.Scheduler.TimeSlice; i++ {
		org := s.Population[idx]
		if !org.Alive || !org.ConsumeEnergy() {
			break
		}

		effect := cpu.Step(org, s.Soup)
		s.Stats.RecordInstruction()

		switch effect.Kind {
		case cpu.Continue:
			// nothing to resolve

		case cpu.Dead:
			s.Stats.RecordDeath(org.Size, org.Generation)
			s.Soup.Free(org.Address, org.Size)
			s.logger.Debug().Int("id", org.ID).Msg("organism died")
			return

		case cpu.Malloc:
			if addr, ok := s.Soup.Allocate(effect.Size, s.rng); ok {
				org.BX = addr
			} else {
				org.Errors++
			}
			org.IncrementIP()

		case cpu.DivideEffect:
			s.handleDivide(idx)
			org.IncrementIP()
			return
		}
	}
}

// handleDivide resolves a Divide effect into a new organism, or records a
// failed replication. Per spec §4.6/§9, the allocation bitmap is never
// re-marked here — MallocA's earlier Soup.Allocate call is the sole
// source of truth for which cells are reserved.
func (s *Simulator) handleDivide(parentIdx int) {
	parent := s.Population[parentIdx]

	if len(s.Population) >= s.Config.MaxPopulation {
		s.Stats.RecordReplication(false)
		return
	}

	childAddr := parent.BX
	childSize := parent.CX

	if childSize == 0 || childSize > s.Config.MemorySize/10 {
		s.Stats.RecordReplication(false)
		return
	}

	copySize := parent.Size
	if childSize < copySize {
		copySize = childSize
	}

	for i := 0; i < copySize; i++ {
		inst := s.Soup.Read(parent.Address + i)
		s.Soup.Write(childAddr+i, inst)

		if mutated := s.Soup.MaybeMutate(childAddr+i, s.Config.MutationRate, s.rng); mutated {
			s.Stats.RecordMutation()
		}
	}

	parentID := parent.ID
	child := organism.New(s.nextOrganismID, childAddr, childSize, parent.Generation+1, &parentID)
	s.nextOrganismID++
	s.Population = append(s.Population, child)

	s.Stats.RecordBirth(childSize, child.Generation)
	s.Stats.RecordReplication(true)

	s.logger.Debug().Int("parent", parentID).Int("child", child.ID).
		Int("generation", child.Generation).Msg("organism divided")
}

func (s *Simulator) reap() {
	before := len(s.Population)
	survivors, removed := scheduler.ReapDead(s.Population)
	s.Population = survivors
	if removed > 0 {
		s.logger.Debug().Int("removed", removed).Int("remaining", len(survivors)).
			Int("before", before).Msg("reaped dead organisms")
	}
}

func (s *Simulator) updateStats() {
	alive := 0
	for _, o := range s.Population {
		if o.Alive {
			alive++
		}
	}
	used := s.Soup.Size() - s.Soup.CountFreeCells()
	s.Stats.UpdateMemoryUsage(used)
	s.Stats.UpdateHistory(alive)
}

// RunSteps advances the simulation n times.
func (s *Simulator) RunSteps(n int) {
	for i := 0; i < n; i++ {
		s.Step()
	}
}

// Reset clears the soup, population, and statistics back to a fresh
// state at the current Config.
func (s *Simulator) Reset() {
	s.Soup = soup.New(s.Config.MemorySize)
	s.Population = nil
	s.Stats = stats.New(s.Config.MemorySize)
	s.nextOrganismID = 0
}

// View produces a read-only snapshot suitable for an observer. It copies
// the soup contents and organism fields out; mutating the returned value
// never affects the live simulation.
func (s *Simulator) View() SimulatorView {
	cells := s.Soup.GetSlice(0, s.Soup.Size())
	soupBytes := make([]byte, len(cells))
	for i, c := range cells {
		soupBytes[i] = byte(c.ToInt())
	}

	population := make([]OrganismView, len(s.Population))
	for i, o := range s.Population {
		population[i] = OrganismView{
			ID:         o.ID,
			Address:    o.Address,
			Size:       o.Size,
			Generation: o.Generation,
			IP:         o.IP,
			AX:         o.AX,
			BX:         o.BX,
			CX:         o.CX,
			DX:         o.DX,
			Cycles:     o.Cycles,
			Errors:     o.Errors,
			Alive:      o.Alive,
		}
	}

	return SimulatorView{
		Soup:       soupBytes,
		FreeCells:  s.Soup.CountFreeCells(),
		Population: population,
		Stats:      *s.Stats,
	}
}

