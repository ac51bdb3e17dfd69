// Package media provides playback handles the viewport drives: a virtual
// clock for headless use and an mpv player controlled over JSON IPC.
package media

import (
	"math"
	"sync"
	"time"
)

// Player is the playback handle kept in sync with the timeline playhead.
type Player interface {
	CurrentTime() (float64, error)
	SetCurrentTime(t float64) error
	Play() error
	Pause() error
	Paused() bool
	// Duration is the length of the loaded media, 0 when nothing is loaded.
	Duration() (float64, error)
	Load(src Source) error
}

// Source is a media file to preview. Duration is the probed length and is
// used when the player cannot report one itself.
type Source struct {
	Path     string
	Duration float64
}

// ClockPlayer is a Player with no decoder behind it. Time advances with the
// wall clock while playing and stops at the larger of the loaded media length
// and the bound set with SetDuration.
type ClockPlayer struct {
	mu        sync.Mutex
	now       func() time.Time
	base      float64
	startedAt time.Time
	playing   bool
	duration  float64
	media     float64
}

func NewClockPlayer(duration float64) *ClockPlayer {
	return NewClockPlayerWithClock(duration, time.Now)
}

// NewClockPlayerWithClock is NewClockPlayer with an injectable clock.
func NewClockPlayerWithClock(duration float64, now func() time.Time) *ClockPlayer {
	return &ClockPlayer{now: now, duration: duration}
}

func (p *ClockPlayer) CurrentTime() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position(), nil
}

func (p *ClockPlayer) position() float64 {
	t := p.base
	if p.playing {
		t += p.now().Sub(p.startedAt).Seconds()
	}
	if limit := p.limit(); limit > 0 {
		t = math.Min(t, limit)
	}
	return t
}

func (p *ClockPlayer) limit() float64 {
	return math.Max(p.duration, p.media)
}

func (p *ClockPlayer) SetCurrentTime(t float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.base = math.Max(0, t)
	if limit := p.limit(); limit > 0 {
		p.base = math.Min(p.base, limit)
	}
	p.startedAt = p.now()
	return nil
}

func (p *ClockPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		return nil
	}
	p.startedAt = p.now()
	p.playing = true
	return nil
}

func (p *ClockPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return nil
	}
	p.base = p.position()
	p.playing = false
	return nil
}

func (p *ClockPlayer) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.playing
}

// SetDuration bounds playback, typically to the timeline's MaxDuration.
func (p *ClockPlayer) SetDuration(d float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.playing {
		p.base = p.position()
		p.startedAt = p.now()
	}
	p.duration = d
}

func (p *ClockPlayer) Duration() (float64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.media, nil
}

// Load takes the media length from src and rewinds to the start.
func (p *ClockPlayer) Load(src Source) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.media = math.Max(0, src.Duration)
	p.base = 0
	p.startedAt = p.now()
	return nil
}
