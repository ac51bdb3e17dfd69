// Package snap pulls dragged clip edges onto nearby clip boundaries and grid
// ticks.
package snap

import (
	"math"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

const (
	DefaultGridInterval = 1.0
	DefaultThreshold    = 0.2
	// DefaultHorizon bounds how many grid ticks are generated.
	DefaultHorizon = 300.0
)

type Resolver struct {
	GridInterval float64
	Threshold    float64
	Horizon      float64
}

func NewResolver() Resolver {
	return Resolver{
		GridInterval: DefaultGridInterval,
		Threshold:    DefaultThreshold,
		Horizon:      DefaultHorizon,
	}
}

// Snap returns the snap point nearest to candidate when it lies within the
// threshold, and candidate otherwise. Neighbour boundaries are considered
// before grid ticks; on equal distance the earlier point wins.
func (r Resolver) Snap(candidate float64, neighbors []float64) float64 {
	best := candidate
	bestDist := math.Inf(1)

	consider := func(p float64) {
		if d := math.Abs(candidate - p); d < bestDist {
			best, bestDist = p, d
		}
	}

	for _, p := range neighbors {
		consider(p)
	}
	if r.GridInterval > 0 {
		ticks := int(r.Horizon / r.GridInterval)
		for k := 0; k <= ticks; k++ {
			consider(float64(k) * r.GridInterval)
		}
	}

	if bestDist < r.Threshold {
		return best
	}
	return candidate
}

// NeighborBoundaries returns the start and end of every clip except skipID.
func NeighborBoundaries(clips []timeline.Clip, skipID string) []float64 {
	out := make([]float64, 0, 2*len(clips))
	for _, c := range clips {
		if c.ID == skipID {
			continue
		}
		out = append(out, c.StartTime, c.End())
	}
	return out
}
