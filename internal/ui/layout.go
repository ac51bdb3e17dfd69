package ui

import (
	"fmt"
	"math"

	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/timeline"
	"github.com/heimdex/heimdex-editor/internal/viewport"
)

const (
	gutterWidth = 4

	statusRow      = 0
	rulerLabelRow  = 1
	rulerTickRow   = 2
	firstTrackRow  = 3
	defaultCellPx  = 10.0
	minHandleCells = 3
)

// rowPx is the pixel height of one terminal row. It matches the context
// menu item height so every menu item occupies exactly one row.
const rowPx = interaction.DefaultMenuItemHeight

type trackRow struct {
	Type  timeline.TrackType
	ID    string
	Label string
}

// trackRows lists tracks in render order, video first.
func trackRows(tracks map[timeline.TrackType][]timeline.Track) []trackRow {
	var rows []trackRow
	for _, t := range timeline.TrackTypes {
		prefix := "V"
		if t == timeline.TrackAudio {
			prefix = "A"
		}
		for i, tr := range tracks[t] {
			rows = append(rows, trackRow{Type: t, ID: tr.ID, Label: fmt.Sprintf("%s%d", prefix, i+1)})
		}
	}
	return rows
}

// layout converts between terminal cells and timeline pixels for one frame.
type layout struct {
	cellPx  float64
	scrollX float64
	zoom    float64
	rows    []trackRow
}

// contentPx is the timeline pixel at the left edge of column col.
func (l layout) contentPx(col int) float64 {
	return float64(col-gutterWidth)*l.cellPx + l.scrollX
}

// clientX is the viewport pixel at the left edge of column col.
func (l layout) clientX(col int) float64 {
	return float64(col-gutterWidth) * l.cellPx
}

func (l layout) clientY(row int) float64 {
	return float64(row) * rowPx
}

// colOf returns the column whose span contains content pixel px.
func (l layout) colOf(px float64) int {
	return gutterWidth + int(math.Floor((px-l.scrollX)/l.cellPx))
}

func (l layout) trackAt(row int) (trackRow, bool) {
	i := row - firstTrackRow
	if i < 0 || i >= len(l.rows) {
		return trackRow{}, false
	}
	return l.rows[i], true
}

// clipCells returns the first and last column a clip covers.
func (l layout) clipCells(c timeline.Clip) (int, int) {
	startPx := viewport.TimeToPixel(c.StartTime, l.zoom)
	endPx := viewport.TimeToPixel(c.End(), l.zoom)
	first := gutterWidth + int(math.Ceil((startPx-l.scrollX)/l.cellPx))
	last := gutterWidth + int(math.Ceil((endPx-l.scrollX)/l.cellPx)) - 1
	return first, last
}

type hit struct {
	row   trackRow
	clip  timeline.Clip
	edge  interaction.Edge
	found bool
}

// hitClip finds the clip under column col of a track row and which part of
// it was grabbed. Clips narrower than minHandleCells only expose their body.
func (l layout) hitClip(row trackRow, clips []timeline.Clip, col int) hit {
	for _, c := range clips {
		first, last := l.clipCells(c)
		if col < first || col > last {
			continue
		}
		h := hit{row: row, clip: c, edge: interaction.EdgeNone, found: true}
		if last-first+1 >= minHandleCells {
			switch col {
			case first:
				h.edge = interaction.EdgeStart
			case last:
				h.edge = interaction.EdgeEnd
			}
		}
		return h
	}
	return hit{row: row}
}
