// Package timeline holds the editor's single source of truth: ordered tracks of
// clips, the playhead and the zoom level.
package timeline

import (
	"math"

	"github.com/google/uuid"
)

const (
	// MinDuration is the shortest clip the editor will ever produce, in seconds.
	MinDuration = 0.1

	// maxDurationPadding leaves scrollable room past the last clip.
	maxDurationPadding = 10.0
	// maxDurationFloor is the minimum length of the timeline in seconds.
	maxDurationFloor = 30.0

	DefaultZoom = 20.0
)

// ZoomLevels are the pixel-per-second steps the viewport moves through.
var ZoomLevels = []float64{5, 10, 15, 20, 30, 40, 50, 60, 80, 100}

type TrackType string

const (
	TrackVideo TrackType = "video"
	TrackAudio TrackType = "audio"
)

// TrackTypes lists track groups in render order.
var TrackTypes = []TrackType{TrackVideo, TrackAudio}

func (t TrackType) Valid() bool {
	return t == TrackVideo || t == TrackAudio
}

type Clip struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	StartTime   float64 `json:"start_time"`
	Duration    float64 `json:"duration"`
	MediaOffset float64 `json:"media_offset"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	MediaID     string  `json:"media_id,omitempty"`
}

// End returns the exclusive end of the clip's span.
func (c Clip) End() float64 {
	return c.StartTime + c.Duration
}

// Overlaps reports whether the half-open spans of c and o intersect.
func (c Clip) Overlaps(o Clip) bool {
	return c.StartTime < o.End()-epsilon && o.StartTime < c.End()-epsilon
}

type Track struct {
	ID    string `json:"id"`
	Clips []Clip `json:"clips"`
}

// ClipPatch carries the fields of an UpdateClip call. Nil fields are left alone.
type ClipPatch struct {
	Name        *string  `json:"name,omitempty"`
	StartTime   *float64 `json:"start_time,omitempty"`
	Duration    *float64 `json:"duration,omitempty"`
	MediaOffset *float64 `json:"media_offset,omitempty"`
	Thumbnail   *string  `json:"thumbnail,omitempty"`
}

func (p ClipPatch) apply(c Clip) Clip {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.StartTime != nil {
		c.StartTime = *p.StartTime
	}
	if p.Duration != nil {
		c.Duration = *p.Duration
	}
	if p.MediaOffset != nil {
		c.MediaOffset = *p.MediaOffset
	}
	if p.Thumbnail != nil {
		c.Thumbnail = *p.Thumbnail
	}
	return c
}

// Float returns a pointer to v, for building patches.
func Float(v float64) *float64 {
	return &v
}

// String returns a pointer to v, for building patches.
func String(v string) *string {
	return &v
}

// State is a snapshot of the timeline.
type State struct {
	Tracks        map[TrackType][]Track `json:"tracks"`
	Zoom          float64               `json:"zoom"`
	CurrentTime   float64               `json:"current_time"`
	MediaDuration float64               `json:"media_duration"`
}

// MaxDuration is max(mediaDuration, last clip end) plus padding, floored.
func (s State) MaxDuration() float64 {
	end := s.MediaDuration
	for _, tracks := range s.Tracks {
		for _, tr := range tracks {
			for _, c := range tr.Clips {
				end = math.Max(end, c.End())
			}
		}
	}
	return math.Max(end+maxDurationPadding, maxDurationFloor)
}

// Track looks up a track by type and id.
func (s State) Track(t TrackType, trackID string) (Track, bool) {
	for _, tr := range s.Tracks[t] {
		if tr.ID == trackID {
			return tr, true
		}
	}
	return Track{}, false
}

func (s State) clone() State {
	out := State{
		Tracks:        make(map[TrackType][]Track, len(s.Tracks)),
		Zoom:          s.Zoom,
		CurrentTime:   s.CurrentTime,
		MediaDuration: s.MediaDuration,
	}
	for t, tracks := range s.Tracks {
		cp := make([]Track, len(tracks))
		for i, tr := range tracks {
			cp[i] = Track{ID: tr.ID, Clips: append([]Clip(nil), tr.Clips...)}
		}
		out.Tracks[t] = cp
	}
	return out
}

func NewID() string {
	return uuid.NewString()
}
