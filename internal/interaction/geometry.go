package interaction

import (
	"math"

	"github.com/heimdex/heimdex-editor/internal/snap"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// MinWidthPx is the narrowest a clip can be dragged to on screen.
const MinWidthPx = 10.0

// ResizeStart trims or extends the left edge of orig by deltaPx. The right
// edge stays put and MediaOffset moves with the start so the visible media
// does not jump. others must not contain orig.
func ResizeStart(orig timeline.Clip, others []timeline.Clip, deltaPx, zoom float64, r snap.Resolver) timeline.Clip {
	initialWidth := orig.Duration * zoom
	newWidth := math.Max(MinWidthPx, initialWidth-deltaPx)
	newDuration := newWidth / zoom

	candidate := orig.StartTime + (orig.Duration - newDuration)
	start := r.Snap(candidate, snap.NeighborBoundaries(others, ""))

	// Never earlier than the previous clip's end, zero, or the head of the media.
	floor := math.Max(0, orig.StartTime-orig.MediaOffset)
	for _, o := range others {
		if o.StartTime < orig.StartTime {
			floor = math.Max(floor, o.End())
		}
	}
	start = math.Max(start, floor)

	end := orig.End()
	if end-start < timeline.MinDuration {
		start = end - timeline.MinDuration
	}

	out := orig
	out.StartTime = start
	out.Duration = end - start
	out.MediaOffset = math.Max(0, orig.MediaOffset+(start-orig.StartTime))
	return out
}

// ResizeEnd trims or extends the right edge of orig by deltaPx. Start and
// MediaOffset are untouched. others must not contain orig.
func ResizeEnd(orig timeline.Clip, others []timeline.Clip, deltaPx, zoom float64, r snap.Resolver) timeline.Clip {
	initialWidth := orig.Duration * zoom
	newWidth := math.Max(MinWidthPx, initialWidth+deltaPx)
	newDuration := newWidth / zoom

	end := r.Snap(orig.StartTime+newDuration, snap.NeighborBoundaries(others, ""))

	for _, o := range others {
		if o.StartTime > orig.StartTime {
			end = math.Min(end, o.StartTime)
		}
	}

	out := orig
	out.Duration = math.Max(end-orig.StartTime, timeline.MinDuration)
	return out
}

// ResolveMove returns where orig may land when dropped at dropTime. A drop
// onto another clip slides to the nearest free edge of a neighbour; ok is
// false when no such spot exists.
func ResolveMove(orig timeline.Clip, others []timeline.Clip, dropTime float64) (float64, bool) {
	proposed := orig
	proposed.StartTime = math.Max(0, dropTime)
	if timeline.CheckPlacement(others, -1, proposed) == nil {
		return proposed.StartTime, true
	}

	best, bestDist := 0.0, math.Inf(1)
	for _, o := range others {
		for _, cand := range []float64{o.StartTime - orig.Duration, o.End()} {
			if cand < 0 {
				continue
			}
			proposed.StartTime = cand
			if timeline.CheckPlacement(others, -1, proposed) != nil {
				continue
			}
			if d := math.Abs(cand - dropTime); d < bestDist {
				best, bestDist = cand, d
			}
		}
	}
	return best, !math.IsInf(bestDist, 1)
}

// without returns clips minus the one at index.
func without(clips []timeline.Clip, index int) []timeline.Clip {
	out := make([]timeline.Clip, 0, len(clips))
	for i, c := range clips {
		if i != index {
			out = append(out, c)
		}
	}
	return out
}
