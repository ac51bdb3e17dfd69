// Package library keeps the source media that timeline clips reference.
package library

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

type Media struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Filename  string    `json:"filename"`
	Size      int64     `json:"size"`
	Duration  float64   `json:"duration"`
	Width     int       `json:"width,omitempty"`
	Height    int       `json:"height,omitempty"`
	FrameRate float64   `json:"frame_rate,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// HumanSize renders Size the way listings show it, e.g. "12 MB".
func (m *Media) HumanSize() string {
	return humanize.Bytes(uint64(m.Size))
}

// IsVideo reports whether the media carries a picture.
func (m *Media) IsVideo() bool {
	return m.Width > 0 && m.Height > 0
}

var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

var AudioExtensions = map[string]bool{
	".wav": true,
	".mp3": true,
	".m4a": true,
	".aac": true,
}

func IsMediaFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return VideoExtensions[ext] || AudioExtensions[ext]
}
