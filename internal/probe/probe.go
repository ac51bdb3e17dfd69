// Package probe reads container and stream metadata from media files.
package probe

import (
	"context"
	"log/slog"
)

type Prober interface {
	Probe(ctx context.Context, path string) (*Result, error)
}

type Result struct {
	Duration   float64
	Width      int
	Height     int
	Codec      string
	Bitrate    int64
	FrameRate  float64
	AudioCodec string
	SampleRate int
}

// Stub returns a fixed result without touching the file.
type Stub struct {
	Result Result
	Err    error
	logger *slog.Logger
}

func NewStub(logger *slog.Logger) *Stub {
	return &Stub{logger: logger}
}

func (s *Stub) Probe(ctx context.Context, path string) (*Result, error) {
	if s.logger != nil {
		s.logger.Debug("probe stub: metadata requested", "path", path)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	r := s.Result
	return &r, nil
}
