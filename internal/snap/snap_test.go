package snap

import (
	"testing"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func TestResolver_Snap(t *testing.T) {
	tests := []struct {
		name      string
		candidate float64
		neighbors []float64
		want      float64
	}{
		{"snaps to grid", 2.9, nil, 3},
		{"snaps down to grid", 4.15, nil, 4},
		{"outside threshold", 2.5, nil, 2.5},
		{"exactly at threshold is not snapped", 3.2, nil, 3.2},
		{"grid beats farther neighbour", 6.95, []float64{7.05}, 7},
		{"neighbour closer than grid", 7.4, []float64{7.45}, 7.45},
		{"neighbour within threshold", 2.55, []float64{2.45}, 2.45},
		{"tie between neighbour and grid keeps neighbour", 2.125, []float64{2.25}, 2.25},
		{"zero", 0.05, nil, 0},
		{"beyond horizon stays raw", 400.1, nil, 400.1},
	}

	r := NewResolver()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Snap(tt.candidate, tt.neighbors); !near(got, tt.want) {
				t.Errorf("Snap(%v, %v) = %v, want %v", tt.candidate, tt.neighbors, got, tt.want)
			}
		})
	}
}

func TestResolver_SnapIdempotent(t *testing.T) {
	r := NewResolver()
	neighbors := []float64{1.3, 4.75, 12.1, 12.15}

	for x := -1.0; x < 20; x += 0.037 {
		once := r.Snap(x, neighbors)
		twice := r.Snap(once, neighbors)
		if once != twice {
			t.Fatalf("Snap not idempotent at %v: %v then %v", x, once, twice)
		}
	}
}

func TestResolver_CustomGrid(t *testing.T) {
	r := Resolver{GridInterval: 0.5, Threshold: 0.1, Horizon: 10}

	if got := r.Snap(2.45, nil); !near(got, 2.5) {
		t.Errorf("Snap(2.45) = %v, want 2.5", got)
	}
	if got := r.Snap(2.3, nil); !near(got, 2.3) {
		t.Errorf("Snap(2.3) = %v, want 2.3", got)
	}

	noGrid := Resolver{Threshold: 0.2}
	if got := noGrid.Snap(2.9, nil); got != 2.9 {
		t.Errorf("Snap without grid = %v, want 2.9", got)
	}
}

func TestNeighborBoundaries(t *testing.T) {
	clips := []timeline.Clip{
		{ID: "a", StartTime: 0, Duration: 5},
		{ID: "b", StartTime: 5, Duration: 2},
		{ID: "c", StartTime: 10, Duration: 1},
	}

	got := NeighborBoundaries(clips, "b")
	want := []float64{0, 5, 10, 11}
	if len(got) != len(want) {
		t.Fatalf("NeighborBoundaries() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("NeighborBoundaries()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func near(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
