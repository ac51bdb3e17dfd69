// Package viewport maps the timeline onto a scrollable strip of pixels and
// drives transport: scrubbing, keyboard seeking, zoom steps and keeping the
// playhead in view.
package viewport

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/media"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

const (
	// AutoScrollMargin keeps the playhead this far from the right edge.
	AutoScrollMargin = 100.0

	SeekStep      = 1.0
	SeekStepShift = 5.0
)

var ErrNoPlayer = errors.New("no player attached")

type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeySpace
	KeyK
	KeyLeft
	KeyRight
)

type Key struct {
	Code  KeyCode
	Shift bool
}

type Config struct {
	Model  *timeline.Model
	Player media.Player
	Logger *slog.Logger
	Width  float64
}

// Frame is everything needed to draw the timeline, derived from one model
// snapshot.
type Frame struct {
	Tracks       map[timeline.TrackType][]timeline.Track
	Zoom         float64
	CurrentTime  float64
	MaxDuration  float64
	Playhead     float64
	ContentWidth float64
	ScrollX      float64
	Width        float64
	Markers      []Marker
	Playing      bool
}

type Viewport struct {
	model  *timeline.Model
	player media.Player
	logger *slog.Logger

	mu        sync.Mutex
	width     float64
	scrollX   float64
	lastTime  float64
	scrubbing bool

	unsubscribe func()
}

func New(cfg Config) *Viewport {
	v := &Viewport{
		model:    cfg.Model,
		player:   cfg.Player,
		logger:   logging.WithComponent(logging.OrDiscard(cfg.Logger), "viewport"),
		width:    cfg.Width,
		lastTime: cfg.Model.CurrentTime(),
	}
	v.unsubscribe = cfg.Model.Subscribe(v.onCommit)
	return v
}

func (v *Viewport) Close() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

func (v *Viewport) onCommit(s timeline.State) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s.CurrentTime == v.lastTime {
		return
	}
	v.lastTime = s.CurrentTime
	v.autoScroll(TimeToPixel(s.CurrentTime, s.Zoom))
}

// autoScroll centres the playhead when it leaves the visible window.
func (v *Viewport) autoScroll(px float64) {
	if v.width <= 0 {
		return
	}
	if px < v.scrollX || px > v.scrollX+v.width-AutoScrollMargin {
		v.scrollX = math.Max(0, px-v.width/2)
	}
}

func (v *Viewport) SetWidth(w float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width = math.Max(0, w)
}

func (v *Viewport) Width() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.width
}

func (v *Viewport) ScrollX() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrollX
}

func (v *Viewport) SetScrollX(x float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrollX = math.Max(0, x)
}

// seek writes t to the model and mirrors the clamped result onto the player.
func (v *Viewport) seek(t float64) {
	v.model.SetCurrentTime(t)
	if v.player == nil {
		return
	}
	if err := v.player.SetCurrentTime(v.model.CurrentTime()); err != nil {
		v.logger.Warn("failed to seek player", "error", err)
	}
}

// ScrubStart begins a scrub at content pixel px.
func (v *Viewport) ScrubStart(px float64) {
	v.mu.Lock()
	v.scrubbing = true
	v.mu.Unlock()

	v.seek(PixelToTime(px, v.model.Zoom()))
}

func (v *Viewport) ScrubMove(px float64) {
	if !v.Scrubbing() {
		return
	}
	v.seek(PixelToTime(px, v.model.Zoom()))
}

func (v *Viewport) ScrubEnd() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.scrubbing = false
}

func (v *Viewport) Scrubbing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scrubbing
}

// HandleKey applies a transport key and reports whether it was consumed.
func (v *Viewport) HandleKey(k Key) bool {
	switch k.Code {
	case KeySpace, KeyK:
		v.TogglePlay()
	case KeyLeft:
		v.seek(math.Max(0, v.model.CurrentTime()-seekStep(k.Shift)))
	case KeyRight:
		v.seek(v.model.CurrentTime() + seekStep(k.Shift))
	default:
		return false
	}
	return true
}

func seekStep(shift bool) float64 {
	if shift {
		return SeekStepShift
	}
	return SeekStep
}

func (v *Viewport) TogglePlay() {
	if v.player == nil {
		return
	}
	var err error
	if v.player.Paused() {
		err = v.player.Play()
	} else {
		err = v.player.Pause()
	}
	if err != nil {
		v.logger.Warn("failed to toggle playback", "error", err)
	}
}

func (v *Viewport) Playing() bool {
	return v.player != nil && !v.player.Paused()
}

// LoadMedia opens src on the player, rewinds the playhead and extends the
// timeline to the media length.
func (v *Viewport) LoadMedia(src media.Source) error {
	if v.player == nil {
		return ErrNoPlayer
	}
	if err := v.player.Load(src); err != nil {
		return fmt.Errorf("failed to load media: %w", err)
	}
	if !v.SyncMediaDuration() {
		v.model.SetMediaDuration(src.Duration)
	}
	v.model.SetCurrentTime(0)
	v.logger.Info("media loaded", "path", logging.SanitizePath(src.Path), "duration", v.model.MediaDuration())
	return nil
}

// SyncMediaDuration copies the player's media length into the model and
// reports whether the player had one.
func (v *Viewport) SyncMediaDuration() bool {
	if v.player == nil {
		return false
	}
	d, err := v.player.Duration()
	if err != nil {
		v.logger.Debug("media duration unavailable", "error", err)
		return false
	}
	if d <= 0 {
		return false
	}
	v.model.SetMediaDuration(d)
	return true
}

// SyncFromPlayer copies the player's position into the model while playing.
// The media length is refreshed first so the playhead is not clamped to a
// timeline shorter than the media.
func (v *Viewport) SyncFromPlayer() {
	if !v.Playing() {
		return
	}
	v.SyncMediaDuration()
	t, err := v.player.CurrentTime()
	if err != nil {
		v.logger.Warn("failed to read player time", "error", err)
		return
	}
	v.model.SetCurrentTime(t)
}

func (v *Viewport) CanZoomIn() bool {
	return v.model.Zoom() < timeline.ZoomLevels[len(timeline.ZoomLevels)-1]
}

func (v *Viewport) CanZoomOut() bool {
	return v.model.Zoom() > timeline.ZoomLevels[0]
}

// ZoomIn moves to the next zoom level and reports whether zoom changed.
func (v *Viewport) ZoomIn() bool {
	zoom := v.model.Zoom()
	for _, level := range timeline.ZoomLevels {
		if level > zoom {
			return v.model.SetZoom(level)
		}
	}
	return false
}

func (v *Viewport) ZoomOut() bool {
	zoom := v.model.Zoom()
	for i := len(timeline.ZoomLevels) - 1; i >= 0; i-- {
		if level := timeline.ZoomLevels[i]; level < zoom {
			return v.model.SetZoom(level)
		}
	}
	return false
}

func (v *Viewport) Frame() Frame {
	s := v.model.Snapshot()
	maxDuration := s.MaxDuration()

	v.mu.Lock()
	scrollX, width := v.scrollX, v.width
	v.mu.Unlock()

	return Frame{
		Tracks:       s.Tracks,
		Zoom:         s.Zoom,
		CurrentTime:  s.CurrentTime,
		MaxDuration:  maxDuration,
		Playhead:     TimeToPixel(s.CurrentTime, s.Zoom),
		ContentWidth: TimeToPixel(maxDuration, s.Zoom),
		ScrollX:      scrollX,
		Width:        width,
		Markers:      Markers(s.Zoom, maxDuration),
		Playing:      v.Playing(),
	}
}
