// Package interaction turns pointer gestures on a clip into Timeline Model
// commits: drag-to-move, trimming either edge, and the per-clip context menu.
package interaction

import (
	"log/slog"
	"math"

	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/snap"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

type Mode int

const (
	ModeIdle Mode = iota
	ModeDragging
	ModeResizingStart
	ModeResizingEnd
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeDragging:
		return "dragging"
	case ModeResizingStart:
		return "resizing-start"
	case ModeResizingEnd:
		return "resizing-end"
	default:
		return "unknown"
	}
}

// Edge selects what a pointer-down on a clip grabs.
type Edge int

const (
	EdgeNone Edge = iota // clip body: move
	EdgeStart
	EdgeEnd
)

type ControllerConfig struct {
	Model     *timeline.Model
	Document  *Document
	Resolver  snap.Resolver
	Logger    *slog.Logger
	TrackType timeline.TrackType
	TrackID   string
	ClipID    string
}

// origin is the geometry captured at pointer-down. Every pointer-move is
// measured against it rather than against the previous move.
type origin struct {
	x          float64
	zoom       float64
	clip       timeline.Clip
	grabOffset float64
}

// Controller is the gesture state machine for a single clip.
type Controller struct {
	model     *timeline.Model
	doc       *Document
	resolver  snap.Resolver
	logger    *slog.Logger
	trackType timeline.TrackType
	trackID   string
	clipID    string

	mode    Mode
	gesture *Gesture
	origin  origin

	preview      float64
	previewTrack string

	menu      *ContextMenu
	menuClose func()
}

func NewController(cfg ControllerConfig) *Controller {
	logger := logging.WithClipID(logging.WithTrackID(logging.OrDiscard(cfg.Logger), cfg.TrackID), cfg.ClipID)
	return &Controller{
		model:     cfg.Model,
		doc:       cfg.Document,
		resolver:  cfg.Resolver,
		logger:    logger,
		trackType: cfg.TrackType,
		trackID:   cfg.TrackID,
		clipID:    cfg.ClipID,
	}
}

func (c *Controller) ClipID() string { return c.clipID }

func (c *Controller) TrackID() string { return c.trackID }

func (c *Controller) TrackType() timeline.TrackType { return c.trackType }

func (c *Controller) Mode() Mode { return c.mode }

// CanDrag reports whether a move gesture may start. It is false while the
// clip is being resized or its context menu is open.
func (c *Controller) CanDrag() bool {
	return c.mode == ModeIdle && c.menu == nil
}

// Preview returns the start time a move gesture would currently drop at and
// the track under the pointer.
func (c *Controller) Preview() (float64, string, bool) {
	if c.mode != ModeDragging {
		return 0, "", false
	}
	return c.preview, c.previewTrack, true
}

// PointerDown starts a gesture on the clip. It returns false when the
// gesture is refused, either because another gesture is active or the menu
// is open.
func (c *Controller) PointerDown(ev PointerEvent, edge Edge) bool {
	if ev.Button != ButtonLeft || c.mode != ModeIdle || c.menu != nil {
		return false
	}
	_, clip, ok := c.model.FindClip(c.trackType, c.trackID, c.clipID)
	if !ok {
		return false
	}

	zoom := c.model.Zoom()
	c.origin = origin{
		x:          ev.X,
		zoom:       zoom,
		clip:       clip,
		grabOffset: ev.X - clip.StartTime*zoom,
	}

	switch edge {
	case EdgeStart:
		c.mode = ModeResizingStart
		c.gesture = newGesture(c.doc, c.onResizeMove, c.onResizeUp, c.endGesture)
	case EdgeEnd:
		c.mode = ModeResizingEnd
		c.gesture = newGesture(c.doc, c.onResizeMove, c.onResizeUp, c.endGesture)
	default:
		c.mode = ModeDragging
		c.preview, c.previewTrack = clip.StartTime, c.trackID
		c.gesture = newGesture(c.doc, c.onDragMove, c.onDrop, c.endGesture)
	}

	c.logger.Debug("gesture started", "mode", c.mode.String())
	return true
}

func (c *Controller) endGesture() {
	c.logger.Debug("gesture ended", "mode", c.mode.String())
	c.mode = ModeIdle
	c.gesture = nil
}

func (c *Controller) dropTime(x float64) float64 {
	return math.Max(0, (x-c.origin.grabOffset)/c.origin.zoom)
}

func (c *Controller) onDragMove(ev PointerEvent) {
	c.preview = c.dropTime(ev.X)
	c.previewTrack = ev.TrackID
}

// onDrop commits the move when the clip is released over its own track.
// Drops elsewhere are ignored.
func (c *Controller) onDrop(ev PointerEvent) {
	if ev.TrackID != c.trackID || ev.TrackType != c.trackType {
		c.logger.Debug("drop outside source track ignored", "target_track", ev.TrackID)
		return
	}

	index, clip, ok := c.model.FindClip(c.trackType, c.trackID, c.clipID)
	if !ok {
		return
	}
	clips, err := c.model.Clips(c.trackType, c.trackID)
	if err != nil {
		return
	}

	start, ok := ResolveMove(clip, without(clips, index), c.dropTime(ev.X))
	if !ok || start == clip.StartTime {
		return
	}
	if err := c.model.MoveClip(c.trackType, c.trackID, index, start, ""); err != nil {
		c.logger.Warn("move commit failed", "error", err)
		return
	}
	c.logger.Debug("clip moved", "start_time", start)
}

func (c *Controller) onResizeMove(ev PointerEvent) {
	c.applyResize(ev.X - c.origin.x)
}

func (c *Controller) onResizeUp(ev PointerEvent) {
	c.applyResize(ev.X - c.origin.x)
}

func (c *Controller) applyResize(deltaPx float64) {
	index, _, ok := c.model.FindClip(c.trackType, c.trackID, c.clipID)
	if !ok {
		return
	}
	clips, err := c.model.Clips(c.trackType, c.trackID)
	if err != nil {
		return
	}
	others := without(clips, index)

	var patch timeline.ClipPatch
	switch c.mode {
	case ModeResizingStart:
		next := ResizeStart(c.origin.clip, others, deltaPx, c.origin.zoom, c.resolver)
		patch = timeline.ClipPatch{
			StartTime:   timeline.Float(next.StartTime),
			Duration:    timeline.Float(next.Duration),
			MediaOffset: timeline.Float(next.MediaOffset),
		}
	case ModeResizingEnd:
		next := ResizeEnd(c.origin.clip, others, deltaPx, c.origin.zoom, c.resolver)
		patch = timeline.ClipPatch{Duration: timeline.Float(next.Duration)}
	default:
		return
	}

	if err := c.model.UpdateClip(c.trackType, c.trackID, index, patch); err != nil {
		c.logger.Warn("resize commit failed", "error", err)
	}
}

// Cancel aborts the active gesture without committing it. A resize in
// progress is rolled back to the geometry captured at pointer-down.
func (c *Controller) Cancel() {
	if c.gesture == nil {
		return
	}
	if c.mode == ModeResizingStart || c.mode == ModeResizingEnd {
		if index, _, ok := c.model.FindClip(c.trackType, c.trackID, c.clipID); ok {
			orig := c.origin.clip
			err := c.model.UpdateClip(c.trackType, c.trackID, index, timeline.ClipPatch{
				StartTime:   timeline.Float(orig.StartTime),
				Duration:    timeline.Float(orig.Duration),
				MediaOffset: timeline.Float(orig.MediaOffset),
			})
			if err != nil {
				c.logger.Warn("resize rollback failed", "error", err)
			}
		}
	}
	c.gesture.Dispose()
	c.logger.Debug("gesture cancelled")
}

// OpenContextMenu opens the clip's menu at the event's viewport position.
// It is refused while a gesture is active.
func (c *Controller) OpenContextMenu(ev PointerEvent) *ContextMenu {
	if c.mode != ModeIdle {
		return nil
	}
	c.CloseMenu()

	c.menu = newContextMenu(ev.ClientX, ev.ClientY)
	menu := c.menu
	c.menuClose = c.doc.AddListener(PointerDown, func(ev PointerEvent) {
		if c.menu == menu && !menu.Contains(ev.ClientX, ev.ClientY) {
			c.CloseMenu()
		}
	})
	return c.menu
}

func (c *Controller) Menu() *ContextMenu { return c.menu }

func (c *Controller) CloseMenu() {
	if c.menuClose != nil {
		c.menuClose()
		c.menuClose = nil
	}
	c.menu = nil
}

// Invoke runs a menu action against the clip and closes the menu.
func (c *Controller) Invoke(action MenuAction) {
	defer c.CloseMenu()

	index, _, ok := c.model.FindClip(c.trackType, c.trackID, c.clipID)
	if !ok {
		return
	}

	var err error
	switch action {
	case ActionDelete:
		err = c.model.DeleteClip(c.trackType, c.trackID, index)
	case ActionSplit:
		err = c.model.SplitClip(c.trackType, c.trackID, index, c.model.CurrentTime())
	default:
		return
	}
	if err != nil {
		c.logger.Warn("menu action failed", "action", string(action), "error", err)
		return
	}
	c.logger.Info("menu action applied", "action", string(action))
}

// Close releases the gesture and menu listeners held by the controller.
func (c *Controller) Close() {
	if c.gesture != nil {
		c.gesture.Dispose()
	}
	c.CloseMenu()
}
