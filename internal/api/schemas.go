package api

import (
	"time"

	"github.com/heimdex/heimdex-editor/internal/library"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type TimelineResponse struct {
	Tracks        map[timeline.TrackType][]timeline.Track `json:"tracks"`
	Zoom          float64                                 `json:"zoom"`
	CurrentTime   float64                                 `json:"current_time"`
	MediaDuration float64                                 `json:"media_duration"`
	MaxDuration   float64                                 `json:"max_duration"`
}

type AddTrackRequest struct {
	Type timeline.TrackType `json:"type"`
}

type AddTrackResponse struct {
	ID   string             `json:"id"`
	Type timeline.TrackType `json:"type"`
}

type AddClipRequest struct {
	Name        string  `json:"name"`
	StartTime   float64 `json:"start_time"`
	Duration    float64 `json:"duration"`
	MediaOffset float64 `json:"media_offset"`
	Thumbnail   string  `json:"thumbnail,omitempty"`
	MediaID     string  `json:"media_id,omitempty"`
}

type ClipResponse struct {
	Index int           `json:"index"`
	Clip  timeline.Clip `json:"clip"`
}

type ClipsResponse struct {
	Clips []timeline.Clip `json:"clips"`
}

type MoveClipRequest struct {
	StartTime     *float64 `json:"start_time"`
	TargetTrackID string   `json:"target_track_id,omitempty"`
}

type SplitClipRequest struct {
	At *float64 `json:"at,omitempty"`
}

type ZoomRequest struct {
	Zoom float64 `json:"zoom"`
}

type CurrentTimeRequest struct {
	CurrentTime *float64 `json:"current_time"`
}

type PreviewRequest struct {
	MediaID string `json:"media_id"`
}

type ImportMediaRequest struct {
	Path   string `json:"path,omitempty"`
	Folder string `json:"folder,omitempty"`
}

type MediaResponse struct {
	ID        string  `json:"id"`
	Path      string  `json:"path"`
	Filename  string  `json:"filename"`
	Size      int64   `json:"size"`
	SizeHuman string  `json:"size_human"`
	Duration  float64 `json:"duration"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	FrameRate float64 `json:"frame_rate,omitempty"`
	CreatedAt string  `json:"created_at"`
}

type MediaListResponse struct {
	Media []MediaResponse `json:"media"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func TimelineToResponse(s timeline.State) TimelineResponse {
	return TimelineResponse{
		Tracks:        s.Tracks,
		Zoom:          s.Zoom,
		CurrentTime:   s.CurrentTime,
		MediaDuration: s.MediaDuration,
		MaxDuration:   s.MaxDuration(),
	}
}

func MediaToResponse(m *library.Media) MediaResponse {
	return MediaResponse{
		ID:        m.ID,
		Path:      m.Path,
		Filename:  m.Filename,
		Size:      m.Size,
		SizeHuman: m.HumanSize(),
		Duration:  m.Duration,
		Width:     m.Width,
		Height:    m.Height,
		FrameRate: m.FrameRate,
		CreatedAt: m.CreatedAt.Format(time.RFC3339),
	}
}
