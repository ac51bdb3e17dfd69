package viewport

import (
	"errors"
	"testing"
	"time"

	"github.com/heimdex/heimdex-editor/internal/media"
	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func TestMarkers(t *testing.T) {
	tests := []struct {
		name       string
		zoom       float64
		max        float64
		wantCount  int
		wantMajor  []float64
		wantLabels []string
	}{
		{"coarse", 10, 30, 7, []float64{0, 25}, []string{"0:00", "0:25"}},
		{"seconds", 20, 30, 31, []float64{0, 5, 10, 15, 20, 25, 30}, []string{"0:00", "0:05", "0:10", "0:15", "0:20", "0:25", "0:30"}},
		{"half seconds", 40, 5, 11, []float64{0, 2.5, 5}, []string{"0:00.0", "0:02.5", "0:05.0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Markers(tt.zoom, tt.max)
			if len(got) != tt.wantCount {
				t.Fatalf("len(Markers) = %d, want %d", len(got), tt.wantCount)
			}
			var major []float64
			var labels []string
			for _, m := range got {
				if m.Major {
					major = append(major, m.Time)
					labels = append(labels, m.Label)
				} else if m.Label != "" {
					t.Errorf("minor marker %v has label %q", m.Time, m.Label)
				}
			}
			if len(major) != len(tt.wantMajor) {
				t.Fatalf("major = %v, want %v", major, tt.wantMajor)
			}
			for i := range major {
				if major[i] != tt.wantMajor[i] || labels[i] != tt.wantLabels[i] {
					t.Errorf("major[%d] = %v %q, want %v %q", i, major[i], labels[i], tt.wantMajor[i], tt.wantLabels[i])
				}
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		t    float64
		zoom float64
		want string
	}{
		{0, 10, "0:00"},
		{65, 10, "1:05"},
		{65.9, 29, "1:05"},
		{65.2, 30, "1:05.2"},
		{599.96, 50, "10:00.0"},
		{-1, 10, "0:00"},
	}
	for _, tt := range tests {
		if got := FormatTime(tt.t, tt.zoom); got != tt.want {
			t.Errorf("FormatTime(%v, %v) = %q, want %q", tt.t, tt.zoom, got, tt.want)
		}
	}
}

func TestPixelMapping(t *testing.T) {
	if got := TimeToPixel(2.5, 20); got != 50 {
		t.Errorf("TimeToPixel = %v, want 50", got)
	}
	if got := PixelToTime(50, 20); got != 2.5 {
		t.Errorf("PixelToTime = %v, want 2.5", got)
	}
	if got := PixelToTime(50, 0); got != 0 {
		t.Errorf("PixelToTime with zero zoom = %v, want 0", got)
	}
}

type fakePlayer struct {
	t        float64
	paused   bool
	seekErr  error
	duration float64
	durErr   error
	loaded   []media.Source
}

func (p *fakePlayer) CurrentTime() (float64, error) { return p.t, nil }

func (p *fakePlayer) SetCurrentTime(t float64) error {
	if p.seekErr != nil {
		return p.seekErr
	}
	p.t = t
	return nil
}

func (p *fakePlayer) Play() error  { p.paused = false; return nil }
func (p *fakePlayer) Pause() error { p.paused = true; return nil }
func (p *fakePlayer) Paused() bool { return p.paused }

func (p *fakePlayer) Duration() (float64, error) { return p.duration, p.durErr }

func (p *fakePlayer) Load(src media.Source) error {
	p.loaded = append(p.loaded, src)
	p.t = 0
	return nil
}

func newViewport(t *testing.T, width float64) (*Viewport, *timeline.Model, *fakePlayer) {
	t.Helper()
	m := timeline.NewModel()
	p := &fakePlayer{paused: true}
	v := New(Config{Model: m, Player: p, Width: width})
	t.Cleanup(v.Close)
	return v, m, p
}

func TestViewport_KeyboardSeek(t *testing.T) {
	tests := []struct {
		name  string
		start float64
		key   Key
		want  float64
	}{
		{"right", 3, Key{Code: KeyRight}, 4},
		{"shift right", 3, Key{Code: KeyRight, Shift: true}, 8},
		{"shift right clamps at max duration", 28, Key{Code: KeyRight, Shift: true}, 30},
		{"left", 3, Key{Code: KeyLeft}, 2},
		{"left clamps at zero", 0.5, Key{Code: KeyLeft}, 0},
		{"shift left clamps at zero", 3, Key{Code: KeyLeft, Shift: true}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, m, p := newViewport(t, 800)
			m.SetCurrentTime(tt.start)

			if !v.HandleKey(tt.key) {
				t.Fatal("HandleKey() = false")
			}
			if got := m.CurrentTime(); got != tt.want {
				t.Errorf("CurrentTime() = %v, want %v", got, tt.want)
			}
			if p.t != tt.want {
				t.Errorf("player time = %v, want %v", p.t, tt.want)
			}
		})
	}
}

func TestViewport_TogglePlay(t *testing.T) {
	v, _, p := newViewport(t, 800)

	v.HandleKey(Key{Code: KeySpace})
	if p.paused {
		t.Error("space did not start playback")
	}
	if !v.Frame().Playing {
		t.Error("Frame().Playing = false")
	}
	v.HandleKey(Key{Code: KeyK})
	if !p.paused {
		t.Error("k did not pause playback")
	}
	if v.HandleKey(Key{Code: KeyUnknown}) {
		t.Error("unknown key was consumed")
	}
}

func TestViewport_Scrub(t *testing.T) {
	v, m, p := newViewport(t, 800)

	v.ScrubStart(100)
	if got := m.CurrentTime(); got != 5 {
		t.Errorf("CurrentTime() = %v, want 5", got)
	}
	v.ScrubMove(200)
	if got := m.CurrentTime(); got != 10 || p.t != 10 {
		t.Errorf("CurrentTime() = %v player %v, want 10", got, p.t)
	}
	v.ScrubMove(5000)
	if got := m.CurrentTime(); got != 30 {
		t.Errorf("CurrentTime() = %v, want clamp to 30", got)
	}
	v.ScrubEnd()
	v.ScrubMove(40)
	if got := m.CurrentTime(); got != 30 {
		t.Errorf("CurrentTime() = %v after ScrubEnd, want 30", got)
	}
}

func TestViewport_SeekSurvivesPlayerError(t *testing.T) {
	v, m, p := newViewport(t, 800)
	p.seekErr = errors.New("ipc down")

	v.HandleKey(Key{Code: KeyRight})
	if got := m.CurrentTime(); got != 1 {
		t.Errorf("CurrentTime() = %v, want 1", got)
	}
}

func TestViewport_AutoScroll(t *testing.T) {
	v, m, _ := newViewport(t, 400)

	m.SetCurrentTime(20)
	if got := v.ScrollX(); got != 200 {
		t.Errorf("ScrollX() = %v, want 200", got)
	}
	m.SetCurrentTime(21)
	if got := v.ScrollX(); got != 200 {
		t.Errorf("ScrollX() = %v, want 200 while playhead visible", got)
	}
	m.SetCurrentTime(1)
	if got := v.ScrollX(); got != 0 {
		t.Errorf("ScrollX() = %v, want 0", got)
	}
}

func TestViewport_Zoom(t *testing.T) {
	v, m, _ := newViewport(t, 800)

	if !v.ZoomIn() || m.Zoom() != 30 {
		t.Fatalf("ZoomIn() zoom = %v, want 30", m.Zoom())
	}
	if !v.ZoomOut() || !v.ZoomOut() || m.Zoom() != 15 {
		t.Fatalf("ZoomOut() zoom = %v, want 15", m.Zoom())
	}

	for v.ZoomOut() {
	}
	if m.Zoom() != 5 || v.CanZoomOut() {
		t.Errorf("zoom = %v CanZoomOut = %v, want 5 false", m.Zoom(), v.CanZoomOut())
	}

	for v.ZoomIn() {
	}
	if m.Zoom() != 100 || v.CanZoomIn() {
		t.Errorf("zoom = %v CanZoomIn = %v, want 100 false", m.Zoom(), v.CanZoomIn())
	}
}

func TestViewport_Frame(t *testing.T) {
	v, m, _ := newViewport(t, 800)
	trackID, _ := m.AddTrack(timeline.TrackVideo)
	m.AddClip(timeline.TrackVideo, trackID, timeline.Clip{StartTime: 20, Duration: 5})
	m.SetCurrentTime(2)

	f := v.Frame()
	if f.MaxDuration != 35 {
		t.Errorf("MaxDuration = %v, want 35", f.MaxDuration)
	}
	if f.ContentWidth != 700 || f.Playhead != 40 {
		t.Errorf("ContentWidth = %v Playhead = %v, want 700 40", f.ContentWidth, f.Playhead)
	}
	if len(f.Markers) != 36 {
		t.Errorf("len(Markers) = %d, want 36", len(f.Markers))
	}
	if len(f.Tracks[timeline.TrackVideo]) != 1 {
		t.Errorf("video tracks = %d, want 1", len(f.Tracks[timeline.TrackVideo]))
	}
}

func TestViewport_SyncFromPlayer(t *testing.T) {
	now := time.Unix(0, 0)
	clock := media.NewClockPlayerWithClock(0, func() time.Time { return now })
	m := timeline.NewModel()
	v := New(Config{Model: m, Player: clock, Width: 800})
	defer v.Close()

	v.SyncFromPlayer()
	if got := m.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime() = %v while paused, want 0", got)
	}

	clock.Play()
	now = now.Add(3 * time.Second)
	v.SyncFromPlayer()
	if got := m.CurrentTime(); got != 3 {
		t.Errorf("CurrentTime() = %v, want 3", got)
	}
}

func TestViewport_SyncFromPlayer_LongMedia(t *testing.T) {
	v, m, p := newViewport(t, 800)
	p.duration = 120
	p.paused = false
	p.t = 100

	v.SyncFromPlayer()
	if got := m.MediaDuration(); got != 120 {
		t.Errorf("MediaDuration() = %v, want 120", got)
	}
	if got := m.MaxDuration(); got != 130 {
		t.Errorf("MaxDuration() = %v, want 130", got)
	}
	if got := m.CurrentTime(); got != 100 {
		t.Fatalf("CurrentTime() = %v, want 100", got)
	}

	// Seeking forward past the timeline floor must not rewind the player.
	v.HandleKey(Key{Code: KeyRight, Shift: true})
	if got := m.CurrentTime(); got != 105 {
		t.Errorf("CurrentTime() after seek = %v, want 105", got)
	}
	if p.t != 105 {
		t.Errorf("player time = %v, want 105", p.t)
	}
}

func TestViewport_LoadMedia(t *testing.T) {
	v, m, p := newViewport(t, 800)
	m.SetCurrentTime(12)

	if err := v.LoadMedia(media.Source{Path: "/clips/a.mp4", Duration: 90}); err != nil {
		t.Fatalf("LoadMedia() error = %v", err)
	}
	if len(p.loaded) != 1 || p.loaded[0].Path != "/clips/a.mp4" {
		t.Errorf("loaded = %v", p.loaded)
	}
	// The fake reports no duration, so the probed one is used.
	if got := m.MediaDuration(); got != 90 {
		t.Errorf("MediaDuration() = %v, want 90", got)
	}
	if got := m.CurrentTime(); got != 0 {
		t.Errorf("CurrentTime() = %v, want 0 after load", got)
	}

	p.duration = 64
	if err := v.LoadMedia(media.Source{Path: "/clips/b.mp4", Duration: 60}); err != nil {
		t.Fatalf("LoadMedia() error = %v", err)
	}
	if got := m.MediaDuration(); got != 64 {
		t.Errorf("MediaDuration() = %v, want the player's 64", got)
	}

	p.duration, p.durErr = 0, errors.New("closed")
	if v.SyncMediaDuration() {
		t.Error("SyncMediaDuration() = true with a failing player")
	}
	if got := m.MediaDuration(); got != 64 {
		t.Errorf("MediaDuration() changed to %v on player error", got)
	}

	bare := New(Config{Model: timeline.NewModel(), Width: 800})
	defer bare.Close()
	if err := bare.LoadMedia(media.Source{Path: "/x.mp4"}); !errors.Is(err, ErrNoPlayer) {
		t.Errorf("LoadMedia() without player error = %v, want ErrNoPlayer", err)
	}
}
