package heuristic

import (
	"context"
	"sort"

	"github.com/montanaflynn/stats"

	"cladeshift/domain/combine"
	"cladeshift/domain/core"
	"cladeshift/ports"
)

// Computer is a deterministic in-process ShiftComputer for tests and
// offline runs: it compares mean abundance of each element inside the
// clade against its complement and reports the shift direction. The real
// pipeline delegates this to an external statistical collaborator.
type Computer struct {
	// Abundance maps element -> sample -> measured abundance.
	Abundance map[string]map[core.SampleID]float64
}

// NewComputer creates a heuristic shift computer over an abundance matrix.
func NewComputer(abundance map[string]map[core.SampleID]float64) *Computer {
	return &Computer{Abundance: abundance}
}

// ComputeShifts returns one row per element with samples in both groups.
// Elements are emitted in sorted order so repeated runs are byte-identical.
func (c *Computer) ComputeShifts(_ context.Context, req ports.ShiftRequest) ([]combine.ShiftRow, error) {
	elements := make([]string, 0, len(c.Abundance))
	for el := range c.Abundance {
		elements = append(elements, el)
	}
	sort.Strings(elements)

	var out []combine.ShiftRow
	for _, el := range elements {
		values := c.Abundance[el]
		inClade := collect(values, req.SampleIDs)
		inComp := collect(values, req.Complement)
		if len(inClade) == 0 || len(inComp) == 0 {
			continue
		}

		cladeMean, err := stats.Mean(inClade)
		if err != nil {
			return nil, err
		}
		compMean, err := stats.Mean(inComp)
		if err != nil {
			return nil, err
		}
		sd, err := stats.StandardDeviation(append(append([]float64{}, inClade...), inComp...))
		if err != nil {
			return nil, err
		}

		out = append(out, combine.ShiftRow{Element: el, ObservedShift: direction(cladeMean-compMean, sd)})
	}
	return out, nil
}

// direction collapses a mean difference to {1, 0, -1}; differences within
// half a pooled standard deviation count as no shift.
func direction(diff, sd float64) float64 {
	threshold := 0.5 * sd
	switch {
	case diff > threshold:
		return 1
	case diff < -threshold:
		return -1
	default:
		return 0
	}
}

func collect(values map[core.SampleID]float64, samples []core.SampleID) []float64 {
	out := make([]float64, 0, len(samples))
	for _, s := range samples {
		if v, ok := values[s]; ok {
			out = append(out, v)
		}
	}
	return out
}
