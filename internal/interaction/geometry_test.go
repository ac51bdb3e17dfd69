package interaction

import (
	"math"
	"testing"

	"github.com/heimdex/heimdex-editor/internal/snap"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestResizeEnd(t *testing.T) {
	r := snap.NewResolver()
	a := timeline.Clip{ID: "a", StartTime: 0, Duration: 5}
	b := timeline.Clip{ID: "b", StartTime: 5, Duration: 5}

	tests := []struct {
		name    string
		others  []timeline.Clip
		deltaPx float64
		zoom    float64
		want    float64
	}{
		{"extend with no neighbour", nil, 30, 10, 8},
		{"shrink to grid point", nil, -20, 10, 3},
		{"snaps to grid within threshold", nil, -21, 10, 3},
		{"blocked by next clip", []timeline.Clip{b}, 150, 10, 5},
		{"minimum width in pixels", nil, -1000, 10, 1},
		{"minimum duration at high zoom", nil, -1000, 100, timeline.MinDuration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResizeEnd(a, tt.others, tt.deltaPx, tt.zoom, r)
			if !approx(got.Duration, tt.want) {
				t.Errorf("Duration = %v, want %v", got.Duration, tt.want)
			}
			if got.StartTime != a.StartTime || got.MediaOffset != a.MediaOffset {
				t.Errorf("start/offset changed: %+v", got)
			}
		})
	}
}

func TestResizeStart(t *testing.T) {
	r := snap.NewResolver()
	clip := timeline.Clip{ID: "c", StartTime: 5, Duration: 5, MediaOffset: 2}
	prev := timeline.Clip{ID: "p", StartTime: 0, Duration: 4}

	tests := []struct {
		name       string
		others     []timeline.Clip
		deltaPx    float64
		wantStart  float64
		wantOffset float64
	}{
		{"trim right advances media offset", nil, 20, 7, 4},
		{"extend left limited by media head", nil, -100, 3, 0},
		{"extend left limited by previous clip", []timeline.Clip{prev}, -100, 4, 1},
		{"trim to minimum width", nil, 1000, 9, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResizeStart(clip, tt.others, tt.deltaPx, 10, r)
			if !approx(got.StartTime, tt.wantStart) {
				t.Errorf("StartTime = %v, want %v", got.StartTime, tt.wantStart)
			}
			if !approx(got.MediaOffset, tt.wantOffset) {
				t.Errorf("MediaOffset = %v, want %v", got.MediaOffset, tt.wantOffset)
			}
			if !approx(got.End(), clip.End()) {
				t.Errorf("End = %v, want %v", got.End(), clip.End())
			}
		})
	}
}

func TestResizeStart_NeverBelowMinDuration(t *testing.T) {
	clip := timeline.Clip{ID: "c", StartTime: 5, Duration: 0.5}
	got := ResizeStart(clip, nil, 500, 100, snap.NewResolver())
	if got.Duration < timeline.MinDuration-1e-9 {
		t.Errorf("Duration = %v, want >= %v", got.Duration, timeline.MinDuration)
	}
	if !approx(got.End(), clip.End()) {
		t.Errorf("End = %v, want %v", got.End(), clip.End())
	}
}

func TestResolveMove(t *testing.T) {
	clip := timeline.Clip{ID: "a", StartTime: 0, Duration: 2}
	others := []timeline.Clip{
		{ID: "b", StartTime: 5, Duration: 2},
		{ID: "c", StartTime: 7.5, Duration: 1},
	}

	tests := []struct {
		name   string
		drop   float64
		want   float64
		wantOK bool
	}{
		{"free spot", 2, 2, true},
		{"negative clamps to zero", -3, 0, true},
		{"overlap slides left", 4.5, 3, true},
		{"overlap slides right", 8, 8.5, true},
		{"overlap with no room between picks outer edge", 6.5, 8.5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ResolveMove(clip, others, tt.drop)
			if ok != tt.wantOK || !approx(got, tt.want) {
				t.Errorf("ResolveMove(%v) = %v, %v; want %v, %v", tt.drop, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}
