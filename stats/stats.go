// Package stats tracks the simulation-wide counters, distributions, and
// bounded population history the simulator and its observers read from.
package stats

// DefaultMaxHistorySize bounds the population sample FIFO.
const DefaultMaxHistorySize = 1000

// Statistics accumulates monotonic counters, size/generation histograms,
// memory occupancy, and a bounded history of population samples.
type Statistics struct {
	TotalInstructions       uint64
	TotalOrganismsCreated   uint64
	TotalOrganismsDied      uint64
	CurrentPopulation       int
	TotalMutations          uint64
	FailedReplications      uint64
	SuccessfulReplications  uint64

	SizeDistribution       map[int]int
	GenerationDistribution map[int]int

	MemoryUsed  int
	MemoryTotal int

	PopulationHistory []int
	MaxHistorySize    int
}

// New builds a zeroed Statistics block sized against a soup of
// memoryTotal cells.
func New(memoryTotal int) *Statistics {
	return &Statistics{
		SizeDistribution:       make(map[int]int),
		GenerationDistribution: make(map[int]int),
		MemoryTotal:            memoryTotal,
		MaxHistorySize:         DefaultMaxHistorySize,
	}
}

// RecordInstruction counts one executed instruction.
func (s *Statistics) RecordInstruction() {
	s.TotalInstructions++
}

// RecordBirth accounts for a newly created organism of the given size and
// generation.
func (s *Statistics) RecordBirth(size, generation int) {
	s.TotalOrganismsCreated++
	s.CurrentPopulation++
	s.SizeDistribution[size]++
	s.GenerationDistribution[generation]++
}

// RecordDeath accounts for an organism leaving the population. Histogram
// decrements saturate at zero and remove the entry once it hits zero.
func (s *Statistics) RecordDeath(size, generation int) {
	s.TotalOrganismsDied++
	if s.CurrentPopulation > 0 {
		s.CurrentPopulation--
	}

	decrementAndPrune(s.SizeDistribution, size)
	decrementAndPrune(s.GenerationDistribution, generation)
}

func decrementAndPrune(dist map[int]int, key int) {
	count, ok := dist[key]
	if !ok {
		return
	}
	if count <= 1 {
		delete(dist, key)
		return
	}
	dist[key] = count - 1
}

// RecordMutation counts one applied mutation.
func (s *Statistics) RecordMutation() {
	s.TotalMutations++
}

// RecordReplication counts a reproduction attempt as successful or failed.
func (s *Statistics) RecordReplication(success bool) {
	if success {
		s.SuccessfulReplications++
	} else {
		s.FailedReplications++
	}
}

// UpdateMemoryUsage records the current number of allocated cells.
func (s *Statistics) UpdateMemoryUsage(used int) {
	s.MemoryUsed = used
}

// UpdateHistory appends a population sample, evicting from the front once
// MaxHistorySize is exceeded.
func (s *Statistics) UpdateHistory(population int) {
	s.PopulationHistory = append(s.PopulationHistory, population)
	if len(s.PopulationHistory) > s.MaxHistorySize {
		s.PopulationHistory = s.PopulationHistory[1:]
	}
}

// ReplicationSuccessRate returns successful / (successful + failed), or 0
// if there have been no replication attempts.
func (s *Statistics) ReplicationSuccessRate() float64 {
	total := s.SuccessfulReplications + s.FailedReplications
	if total == 0 {
		return 0
	}
	return float64(s.SuccessfulReplications) / float64(total)
}

// MemoryUsagePercent returns the fraction of soup cells currently
// allocated, as a percentage.
func (s *Statistics) MemoryUsagePercent() float64 {
	if s.MemoryTotal == 0 {
		return 0
	}
	return float64(s.MemoryUsed) / float64(s.MemoryTotal) * 100
}

// MostCommonSize returns the organism size with the highest live count.
func (s *Statistics) MostCommonSize() (int, bool) {
	best, bestCount := 0, -1
	for size, count := range s.SizeDistribution {
		if count > bestCount || (count == bestCount && size < best) {
			best, bestCount = size, count
		}
	}
	return best, bestCount >= 0
}

// HighestGeneration returns the highest generation with a live organism,
// or 0 if the population is empty.
func (s *Statistics) HighestGeneration() int {
	highest := 0
	for gen := range s.GenerationDistribution {
		if gen > highest {
			highest = gen
		}
	}
	return highest
}
