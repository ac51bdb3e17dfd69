// Package ui hosts the editor front ends: a terminal timeline built on
// bubbletea and the system tray menu.
package ui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/snap"
	"github.com/heimdex/heimdex-editor/internal/timeline"
	"github.com/heimdex/heimdex-editor/internal/viewport"
)

const tickInterval = 50 * time.Millisecond

type tickMsg time.Time

type EditorConfig struct {
	Timeline  *timeline.Model
	Viewport  *viewport.Viewport
	Resolver  snap.Resolver
	Logger    *slog.Logger
	CellWidth float64
	OnQuit    func()
}

// Editor is the bubbletea model of the terminal timeline. Mouse input is
// translated into pointer events on a Document so clip gestures behave the
// same as in a browser front end.
type Editor struct {
	model    *timeline.Model
	view     *viewport.Viewport
	doc      *interaction.Document
	resolver snap.Resolver
	logger   *slog.Logger
	cellPx   float64
	onQuit   func()

	controllers map[string]*interaction.Controller
	active      *interaction.Controller
	menuOwner   *interaction.Controller

	focusType timeline.TrackType
	focusID   string

	help help.Model

	width, height int
}

func NewEditor(cfg EditorConfig) *Editor {
	cellPx := cfg.CellWidth
	if cellPx <= 0 {
		cellPx = defaultCellPx
	}
	return &Editor{
		model:       cfg.Timeline,
		view:        cfg.Viewport,
		doc:         interaction.NewDocument(),
		resolver:    cfg.Resolver,
		logger:      logging.WithComponent(logging.OrDiscard(cfg.Logger), "editor"),
		cellPx:      cellPx,
		onQuit:      cfg.OnQuit,
		controllers: make(map[string]*interaction.Controller),
		help:        help.New(),
	}
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (e *Editor) Init() tea.Cmd {
	return tick()
}

func (e *Editor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		e.width, e.height = msg.Width, msg.Height
		e.help.Width = msg.Width
		e.view.SetWidth(float64(max(0, msg.Width-gutterWidth)) * e.cellPx)
		return e, nil
	case tickMsg:
		e.view.SyncFromPlayer()
		e.pruneControllers()
		return e, tick()
	case tea.KeyMsg:
		return e.handleKey(msg)
	case tea.MouseMsg:
		e.handleMouse(msg)
		return e, nil
	}
	return e, nil
}

func (e *Editor) layout(s timeline.State) layout {
	return layout{
		cellPx:  e.cellPx,
		scrollX: e.view.ScrollX(),
		zoom:    s.Zoom,
		rows:    trackRows(s.Tracks),
	}
}

func (e *Editor) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		e.closeControllers()
		if e.onQuit != nil {
			e.onQuit()
		}
		return e, tea.Quit
	case key.Matches(msg, keys.Play):
		e.view.HandleKey(viewport.Key{Code: viewport.KeySpace})
	case key.Matches(msg, keys.Back):
		e.view.HandleKey(viewport.Key{Code: viewport.KeyLeft})
	case key.Matches(msg, keys.Forward):
		e.view.HandleKey(viewport.Key{Code: viewport.KeyRight})
	case key.Matches(msg, keys.BackFar):
		e.view.HandleKey(viewport.Key{Code: viewport.KeyLeft, Shift: true})
	case key.Matches(msg, keys.ForwardFar):
		e.view.HandleKey(viewport.Key{Code: viewport.KeyRight, Shift: true})
	case key.Matches(msg, keys.ZoomIn):
		e.view.ZoomIn()
	case key.Matches(msg, keys.ZoomOut):
		e.view.ZoomOut()
	case key.Matches(msg, keys.FocusUp):
		e.moveFocus(-1)
	case key.Matches(msg, keys.FocusDown):
		e.moveFocus(1)
	case key.Matches(msg, keys.Split):
		e.applyAtPlayhead(interaction.ActionSplit)
	case key.Matches(msg, keys.Delete):
		e.applyAtPlayhead(interaction.ActionDelete)
	case key.Matches(msg, keys.AddVideo):
		e.addTrack(timeline.TrackVideo)
	case key.Matches(msg, keys.AddAudio):
		e.addTrack(timeline.TrackAudio)
	case key.Matches(msg, keys.Help):
		e.help.ShowAll = !e.help.ShowAll
	case key.Matches(msg, keys.Cancel):
		if e.active != nil {
			e.active.Cancel()
			e.active = nil
		}
		if e.menuOwner != nil {
			e.menuOwner.CloseMenu()
			e.menuOwner = nil
		}
	}
	return e, nil
}

func (e *Editor) addTrack(t timeline.TrackType) {
	id, err := e.model.AddTrack(t)
	if err != nil {
		e.logger.Warn("failed to add track", "error", err)
		return
	}
	e.focusType, e.focusID = t, id
}

// focus returns the focused track, falling back to the first track.
func (e *Editor) focus(rows []trackRow) (trackRow, bool) {
	for _, r := range rows {
		if r.Type == e.focusType && r.ID == e.focusID {
			return r, true
		}
	}
	if len(rows) == 0 {
		return trackRow{}, false
	}
	return rows[0], true
}

func (e *Editor) moveFocus(delta int) {
	rows := trackRows(e.model.Snapshot().Tracks)
	cur, ok := e.focus(rows)
	if !ok {
		return
	}
	for i, r := range rows {
		if r == cur {
			next := rows[min(max(i+delta, 0), len(rows)-1)]
			e.focusType, e.focusID = next.Type, next.ID
			return
		}
	}
}

// applyAtPlayhead runs a clip action on the focused track's clip under the
// playhead.
func (e *Editor) applyAtPlayhead(action interaction.MenuAction) {
	s := e.model.Snapshot()
	row, ok := e.focus(trackRows(s.Tracks))
	if !ok {
		return
	}
	tr, _ := s.Track(row.Type, row.ID)
	for _, c := range tr.Clips {
		if s.CurrentTime >= c.StartTime && s.CurrentTime < c.End() {
			e.controllerFor(row, c.ID).Invoke(action)
			return
		}
	}
}

// controllerFor returns the clip's controller, replacing one bound to a
// stale track.
func (e *Editor) controllerFor(row trackRow, clipID string) *interaction.Controller {
	if c, ok := e.controllers[clipID]; ok {
		if c.TrackID() == row.ID {
			return c
		}
		c.Close()
	}
	c := interaction.NewController(interaction.ControllerConfig{
		Model:     e.model,
		Document:  e.doc,
		Resolver:  e.resolver,
		Logger:    e.logger,
		TrackType: row.Type,
		TrackID:   row.ID,
		ClipID:    clipID,
	})
	e.controllers[clipID] = c
	return c
}

// pruneControllers drops controllers whose clip no longer exists.
func (e *Editor) pruneControllers() {
	if e.active != nil {
		return
	}
	for id, c := range e.controllers {
		if _, _, ok := e.model.FindClip(c.TrackType(), c.TrackID(), id); !ok {
			c.Close()
			delete(e.controllers, id)
			if e.menuOwner == c {
				e.menuOwner = nil
			}
		}
	}
}

func (e *Editor) closeControllers() {
	for id, c := range e.controllers {
		c.Close()
		delete(e.controllers, id)
	}
	e.active, e.menuOwner = nil, nil
}

func (e *Editor) pointerEvent(kind interaction.PointerKind, msg tea.MouseMsg, l layout) interaction.PointerEvent {
	ev := interaction.PointerEvent{
		Kind:    kind,
		Button:  interaction.ButtonLeft,
		X:       l.contentPx(msg.X),
		Y:       l.clientY(msg.Y),
		ClientX: l.clientX(msg.X),
		ClientY: l.clientY(msg.Y),
		Shift:   msg.Shift,
	}
	if msg.Button == tea.MouseButtonRight {
		ev.Button = interaction.ButtonRight
	}
	if row, ok := l.trackAt(msg.Y); ok {
		ev.TrackType, ev.TrackID = row.Type, row.ID
	}
	return ev
}

func (e *Editor) handleMouse(msg tea.MouseMsg) {
	s := e.model.Snapshot()
	l := e.layout(s)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonLeft:
			e.leftPress(msg, s, l)
		case tea.MouseButtonRight:
			e.rightPress(msg, s, l)
		case tea.MouseButtonWheelUp:
			e.view.SetScrollX(e.view.ScrollX() - 4*e.cellPx)
		case tea.MouseButtonWheelDown:
			e.view.SetScrollX(e.view.ScrollX() + 4*e.cellPx)
		}
	case tea.MouseActionMotion:
		if e.active != nil {
			e.doc.Dispatch(e.pointerEvent(interaction.PointerMove, msg, l))
		}
		e.view.ScrubMove(l.contentPx(msg.X))
	case tea.MouseActionRelease:
		e.doc.Dispatch(e.pointerEvent(interaction.PointerUp, msg, l))
		e.active = nil
		e.view.ScrubEnd()
	}
}

func (e *Editor) leftPress(msg tea.MouseMsg, s timeline.State, l layout) {
	ev := e.pointerEvent(interaction.PointerDown, msg, l)

	// A press while a gesture is live means its release never arrived.
	if e.active != nil {
		e.active.Cancel()
		e.active = nil
	}

	if e.menuOwner != nil {
		if menu := e.menuOwner.Menu(); menu != nil {
			if item, ok := menu.ItemAt(ev.ClientX, ev.ClientY); ok {
				e.menuOwner.Invoke(item.Action)
				e.menuOwner = nil
				return
			}
		}
	}

	// Outside clicks close any open menu.
	e.doc.Dispatch(ev)
	if e.menuOwner != nil && e.menuOwner.Menu() == nil {
		e.menuOwner = nil
	}

	if msg.Y == rulerLabelRow || msg.Y == rulerTickRow {
		e.view.ScrubStart(ev.X)
		return
	}

	row, ok := l.trackAt(msg.Y)
	if !ok || msg.X < gutterWidth {
		return
	}
	e.focusType, e.focusID = row.Type, row.ID

	tr, _ := s.Track(row.Type, row.ID)
	h := l.hitClip(row, tr.Clips, msg.X)
	if !h.found {
		e.view.ScrubStart(ev.X)
		return
	}

	c := e.controllerFor(row, h.clip.ID)
	if h.edge == interaction.EdgeNone && !c.CanDrag() {
		return
	}
	if c.PointerDown(ev, h.edge) {
		e.active = c
	}
}

func (e *Editor) rightPress(msg tea.MouseMsg, s timeline.State, l layout) {
	row, ok := l.trackAt(msg.Y)
	if !ok || msg.X < gutterWidth || e.active != nil {
		return
	}
	tr, _ := s.Track(row.Type, row.ID)
	h := l.hitClip(row, tr.Clips, msg.X)
	if !h.found {
		return
	}

	if e.menuOwner != nil {
		e.menuOwner.CloseMenu()
	}
	c := e.controllerFor(row, h.clip.ID)
	if c.OpenContextMenu(e.pointerEvent(interaction.PointerContextMenu, msg, l)) != nil {
		e.menuOwner = c
	}
}
