package simulator

import "github.com/tlinden-labs/tierrasoup/stats"

// OrganismView is the read-only projection of an Organism exposed to
// observers: the fields spec.md's observation surface promises, nothing
// more (no stack contents, no internal pointers).
type OrganismView struct {
	ID         int  `json:"id"`
	Address    int  `json:"address"`
	Size       int  `json:"size"`
	Generation int  `json:"generation"`
	IP         int  `json:"ip"`
	AX         int  `json:"ax"`
	BX         int  `json:"bx"`
	CX         int  `json:"cx"`
	DX         int  `json:"dx"`
	Cycles     int  `json:"cycles"`
	Errors     int  `json:"errors"`
	Alive      bool `json:"alive"`
}

// SimulatorView is the read-only snapshot a UI or observation transport
// consumes: soup cells, free-cell count, the live population, and the
// statistics block. It owns no reference back into the simulator's live
// state, so holding one never blocks or races with further stepping.
type SimulatorView struct {
	Soup       []byte          `json:"soup"`
	FreeCells  int             `json:"free_cells"`
	Population []OrganismView  `json:"population"`
	Stats      stats.Statistics `json:"stats"`
}

// PopulationSnapshot aggregates coarse population statistics computable
// from a SimulatorView's Population slice: total/alive counts, average
// size and generation, and the oldest (highest) generation alive.
type PopulationSnapshot struct {
	TotalOrganisms    int     `json:"total_organisms"`
	AliveOrganisms    int     `json:"alive_organisms"`
	AverageSize       float64 `json:"average_size"`
	AverageGeneration float64 `json:"average_generation"`
	OldestGeneration  int     `json:"oldest_generation"`
}

// SummarizePopulation computes a PopulationSnapshot from a population
// view, mirroring the original implementation's PopulationStats helper.
func SummarizePopulation(population []OrganismView) PopulationSnapshot {
	snap := PopulationSnapshot{TotalOrganisms: len(population)}

	var totalSize, totalGen int
	for _, o := range population {
		if !o.Alive {
			continue
		}
		snap.AliveOrganisms++
		totalSize += o.Size
		totalGen += o.Generation
		if o.Generation > snap.OldestGeneration {
			snap.OldestGeneration = o.Generation
		}
	}

	if snap.AliveOrganisms > 0 {
		snap.AverageSize = float64(totalSize) / float64(snap.AliveOrganisms)
		snap.AverageGeneration = float64(totalGen) / float64(snap.AliveOrganisms)
	}

	return snap
}
