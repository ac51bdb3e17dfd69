package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/heimdex/heimdex-editor/internal/timeline"
	"github.com/heimdex/heimdex-editor/internal/viewport"
)

type cellKind int

const (
	kindPlain cellKind = iota
	kindRuler
	kindRulerMajor
	kindVideoClip
	kindAudioClip
	kindHandle
	kindGhost
	kindPlayhead
	kindMenu
	kindGutter
	kindGutterFocus
	kindStatus
)

var cellStyles = map[cellKind]lipgloss.Style{
	kindPlain:       lipgloss.NewStyle(),
	kindRuler:       lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	kindRulerMajor:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	kindVideoClip:   lipgloss.NewStyle().Background(lipgloss.Color("25")).Foreground(lipgloss.Color("231")),
	kindAudioClip:   lipgloss.NewStyle().Background(lipgloss.Color("29")).Foreground(lipgloss.Color("231")),
	kindHandle:      lipgloss.NewStyle().Background(lipgloss.Color("33")).Foreground(lipgloss.Color("231")),
	kindGhost:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	kindPlayhead:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	kindMenu:        lipgloss.NewStyle().Background(lipgloss.Color("237")).Foreground(lipgloss.Color("255")),
	kindGutter:      lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	kindGutterFocus: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	kindStatus:      lipgloss.NewStyle().Bold(true),
}

// canvas is a grid of runes with a style per cell.
type canvas struct {
	runes [][]rune
	kinds [][]cellKind
}

func newCanvas(width, height int) *canvas {
	c := &canvas{runes: make([][]rune, height), kinds: make([][]cellKind, height)}
	for y := range c.runes {
		c.runes[y] = []rune(strings.Repeat(" ", width))
		c.kinds[y] = make([]cellKind, width)
	}
	return c
}

func (c *canvas) set(x, y int, r rune, k cellKind) {
	if y < 0 || y >= len(c.runes) || x < 0 || x >= len(c.runes[y]) {
		return
	}
	c.runes[y][x] = r
	c.kinds[y][x] = k
}

func (c *canvas) text(x, y int, s string, k cellKind) {
	for i, r := range []rune(s) {
		c.set(x+i, y, r, k)
	}
}

// String renders each row, styling runs of equal kind together.
func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.runes {
		if y > 0 {
			b.WriteByte('\n')
		}
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && c.kinds[y][x] == c.kinds[y][start] {
				continue
			}
			b.WriteString(cellStyles[c.kinds[y][start]].Render(string(row[start:x])))
			start = x
		}
	}
	return b.String()
}

func (e *Editor) View() string {
	if e.width <= gutterWidth {
		return "resize the terminal to show the timeline"
	}

	f := e.view.Frame()
	l := layout{cellPx: e.cellPx, scrollX: f.ScrollX, zoom: f.Zoom, rows: trackRows(f.Tracks)}

	cv := newCanvas(e.width, firstTrackRow+len(l.rows))
	cv.text(0, statusRow, e.status(f), kindStatus)
	e.drawRuler(cv, f, l)
	e.drawTracks(cv, f, l)
	e.drawPlayhead(cv, f, l)
	e.drawMenu(cv, l)

	return cv.String() + "\n" + e.help.View(keys)
}

func (e *Editor) status(f viewport.Frame) string {
	state := "❚❚"
	if f.Playing {
		state = "▶"
	}
	return fmt.Sprintf("%s %s / %s   zoom %gpx/s",
		state,
		viewport.FormatTime(f.CurrentTime, 100),
		viewport.FormatTime(f.MaxDuration, 100),
		f.Zoom,
	)
}

func (e *Editor) drawRuler(cv *canvas, f viewport.Frame, l layout) {
	for _, m := range f.Markers {
		col := l.colOf(viewport.TimeToPixel(m.Time, f.Zoom))
		if col < gutterWidth {
			continue
		}
		if m.Major {
			cv.set(col, rulerTickRow, '┴', kindRulerMajor)
			cv.text(col, rulerLabelRow, m.Label, kindRulerMajor)
		} else if cv.kinds[rulerTickRow][min(col, e.width-1)] != kindRulerMajor {
			cv.set(col, rulerTickRow, '╵', kindRuler)
		}
	}
	for x := 0; x < gutterWidth; x++ {
		cv.set(x, rulerLabelRow, ' ', kindPlain)
		cv.set(x, rulerTickRow, ' ', kindPlain)
	}
}

func (e *Editor) drawTracks(cv *canvas, f viewport.Frame, l layout) {
	focus, _ := e.focus(l.rows)

	for i, row := range l.rows {
		y := firstTrackRow + i
		gutter := kindGutter
		if row == focus {
			gutter = kindGutterFocus
		}
		cv.text(0, y, fmt.Sprintf("%-3s│", row.Label), gutter)

		clipKind := kindVideoClip
		if row.Type == timeline.TrackAudio {
			clipKind = kindAudioClip
		}

		tr, _ := timeline.State{Tracks: f.Tracks}.Track(row.Type, row.ID)
		for _, c := range tr.Clips {
			e.drawClip(cv, l, y, c, clipKind)
		}
	}

	if e.active == nil {
		return
	}
	start, trackID, ok := e.active.Preview()
	if !ok {
		return
	}
	for i, row := range l.rows {
		if row.ID != trackID {
			continue
		}
		_, c, found := e.model.FindClip(e.active.TrackType(), e.active.TrackID(), e.active.ClipID())
		if !found {
			return
		}
		c.StartTime = start
		first, last := l.clipCells(c)
		for x := max(first, gutterWidth); x <= last; x++ {
			if cv.kinds[firstTrackRow+i][min(x, e.width-1)] == kindPlain {
				cv.set(x, firstTrackRow+i, '░', kindGhost)
			}
		}
	}
}

func (e *Editor) drawClip(cv *canvas, l layout, y int, c timeline.Clip, k cellKind) {
	first, last := l.clipCells(c)
	wide := last-first+1 >= minHandleCells

	for x := max(first, gutterWidth); x <= last; x++ {
		switch {
		case wide && x == first:
			cv.set(x, y, '▏', kindHandle)
		case wide && x == last:
			cv.set(x, y, '▕', kindHandle)
		default:
			cv.set(x, y, ' ', k)
		}
	}

	name := []rune(c.Name)
	for i, x := 0, max(first+1, gutterWidth); i < len(name) && x < last; i, x = i+1, x+1 {
		cv.set(x, y, name[i], k)
	}
}

func (e *Editor) drawPlayhead(cv *canvas, f viewport.Frame, l layout) {
	col := l.colOf(f.Playhead)
	if col < gutterWidth {
		return
	}
	cv.set(col, rulerTickRow, '▼', kindPlayhead)
	for i := range l.rows {
		cv.set(col, firstTrackRow+i, '┃', kindPlayhead)
	}
}

func (e *Editor) drawMenu(cv *canvas, l layout) {
	if e.menuOwner == nil {
		return
	}
	menu := e.menuOwner.Menu()
	if menu == nil {
		return
	}

	x := gutterWidth + int(menu.X/l.cellPx)
	y := int(menu.Y / rowPx)
	width := int(menu.Width / l.cellPx)

	for i, item := range menu.Items {
		if y+i >= len(cv.runes) {
			cv.runes = append(cv.runes, []rune(strings.Repeat(" ", e.width)))
			cv.kinds = append(cv.kinds, make([]cellKind, e.width))
		}
		label := fmt.Sprintf(" %-*s", width-1, item.Label)
		cv.text(x, y+i, string([]rune(label)[:width]), kindMenu)
	}
}
