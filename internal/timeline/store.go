package timeline

import (
	"fmt"
	"math"
	"sync"
)

// Model owns the timeline state. It is the only write path for tracks, clips,
// zoom and the playhead; readers get copies through Snapshot.
type Model struct {
	mu    sync.RWMutex
	state State

	subMu     sync.Mutex
	subs      map[int]func(State)
	nextSubID int
}

func NewModel() *Model {
	return &Model{
		state: State{
			Tracks: map[TrackType][]Track{
				TrackVideo: {},
				TrackAudio: {},
			},
			Zoom: DefaultZoom,
		},
		subs: make(map[int]func(State)),
	}
}

// Snapshot returns a deep copy of the current state.
func (m *Model) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

func (m *Model) Zoom() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Zoom
}

func (m *Model) CurrentTime() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.CurrentTime
}

func (m *Model) MaxDuration() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.MaxDuration()
}

// Subscribe registers fn to receive a snapshot after every commit. The
// returned func removes the subscription.
func (m *Model) Subscribe(fn func(State)) func() {
	m.subMu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subs[id] = fn
	m.subMu.Unlock()

	return func() {
		m.subMu.Lock()
		delete(m.subs, id)
		m.subMu.Unlock()
	}
}

func (m *Model) notify() {
	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	if len(fns) == 0 {
		return
	}
	snap := m.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// mutate runs fn under the write lock and notifies subscribers when fn
// reports a change.
func (m *Model) mutate(fn func(s *State) (bool, error)) error {
	m.mu.Lock()
	changed, err := fn(&m.state)
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if changed {
		m.notify()
	}
	return nil
}

func (m *Model) AddTrack(t TrackType) (string, error) {
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidTrack, t)
	}
	id := NewID()
	err := m.mutate(func(s *State) (bool, error) {
		s.Tracks[t] = append(s.Tracks[t], Track{ID: id, Clips: []Clip{}})
		return true, nil
	})
	return id, err
}

// AddClip places c on a track and returns the stored clip with its index.
// Out-of-range geometry is clamped, and a clip whose span is taken is
// appended after the last clip on the track.
func (m *Model) AddClip(t TrackType, trackID string, c Clip) (Clip, int, error) {
	if c.ID == "" {
		c.ID = NewID()
	}
	c.StartTime = math.Max(c.StartTime, 0)
	c.Duration = math.Max(c.Duration, MinDuration)
	c.MediaOffset = math.Max(c.MediaOffset, 0)

	index := -1
	err := m.mutate(func(s *State) (bool, error) {
		tr, err := findTrack(s, t, trackID)
		if err != nil {
			return false, err
		}
		if CheckPlacement(tr.Clips, -1, c) != nil {
			end := 0.0
			for _, other := range tr.Clips {
				end = math.Max(end, other.End())
			}
			c.StartTime = end
		}
		tr.Clips = append(tr.Clips, c)
		index = len(tr.Clips) - 1
		return true, nil
	})
	if err != nil {
		return Clip{}, -1, err
	}
	return c, index, nil
}

// UpdateClip merges patch into the clip at index. Geometry is applied as
// given; the caller is responsible for keeping the track consistent.
func (m *Model) UpdateClip(t TrackType, trackID string, index int, patch ClipPatch) error {
	return m.mutate(func(s *State) (bool, error) {
		tr, err := findTrack(s, t, trackID)
		if err != nil {
			return false, err
		}
		if index < 0 || index >= len(tr.Clips) {
			return false, fmt.Errorf("%w: index %d", ErrClipNotFound, index)
		}
		tr.Clips[index] = patch.apply(tr.Clips[index])
		return true, nil
	})
}

// MoveClip sets the start of the clip at index. When targetTrackID names a
// different track of the same type, the clip is transferred there.
func (m *Model) MoveClip(t TrackType, trackID string, index int, newStart float64, targetTrackID string) error {
	return m.mutate(func(s *State) (bool, error) {
		src, err := findTrack(s, t, trackID)
		if err != nil {
			return false, err
		}
		if index < 0 || index >= len(src.Clips) {
			return false, fmt.Errorf("%w: index %d", ErrClipNotFound, index)
		}

		clip := src.Clips[index]
		clip.StartTime = newStart

		if targetTrackID == "" || targetTrackID == trackID {
			src.Clips[index] = clip
			return true, nil
		}

		dst, err := findTrack(s, t, targetTrackID)
		if err != nil {
			return false, err
		}
		src.Clips = append(src.Clips[:index], src.Clips[index+1:]...)
		dst.Clips = append(dst.Clips, clip)
		return true, nil
	})
}

// UpdateClipChecked is UpdateClip for untrusted callers: the patched clip
// must pass CheckPlacement against its track or nothing changes.
func (m *Model) UpdateClipChecked(t TrackType, trackID string, index int, patch ClipPatch) (Clip, error) {
	var out Clip
	err := m.mutate(func(s *State) (bool, error) {
		tr, err := findTrack(s, t, trackID)
		if err != nil {
			return false, err
		}
		if index < 0 || index >= len(tr.Clips) {
			return false, fmt.Errorf("%w: index %d", ErrClipNotFound, index)
		}
		c := patch.apply(tr.Clips[index])
		if err := CheckPlacement(tr.Clips, index, c); err != nil {
			return false, err
		}
		tr.Clips[index] = c
		out = c
		return true, nil
	})
	return out, err
}

// MoveClipChecked is MoveClip for untrusted callers. The destination track
// must have room for the clip at newStart.
func (m *Model) MoveClipChecked(t TrackType, trackID string, index int, newStart float64, targetTrackID string) (Clip, error) {
	var out Clip
	err := m.mutate(func(s *State) (bool, error) {
		src, err := findTrack(s, t, trackID)
		if err != nil {
			return false, err
		}
		if index < 0 || index >= len(src.Clips) {
			return false, fmt.Errorf("%w: index %d", ErrClipNotFound, index)
		}

		clip := src.Clips[index]
		clip.StartTime = newStart

		if targetTrackID == "" || targetTrackID == trackID {
			if err := CheckPlacement(src.Clips, index, clip); err != nil {
				return false, err
			}
			src.Clips[index] = clip
			out = clip
			return true, nil
		}

		dst, err := findTrack(s, t, targetTrackID)
		if err != nil {
			return false, err
		}
		if err := CheckPlacement(dst.Clips, -1, clip); err != nil {
			return false, err
		}
		src.Clips = append(src.Clips[:index], src.Clips[index+1:]...)
		dst.Clips = append(dst.Clips, clip)
		out = clip
		return true, nil
	})
	return out, err
}

func (m *Model) DeleteClip(t TrackType, trackID string, index int) error {
	return m.mutate(func(s *State) (bool, error) {
		tr, err := findTrack(s, t, trackID)
		if err != nil {
			return false, err
		}
		if index < 0 || index >= len(tr.Clips) {
			return false, fmt.Errorf("%w: index %d", ErrClipNotFound, index)
		}
		tr.Clips = append(tr.Clips[:index], tr.Clips[index+1:]...)
		return true, nil
	})
}

// SplitClip replaces the clip at index with two contiguous halves meeting at
// at. The split point is kept MinDuration away from either edge; clips too
// short to split are left unchanged.
func (m *Model) SplitClip(t TrackType, trackID string, index int, at float64) error {
	return m.mutate(func(s *State) (bool, error) {
		tr, err := findTrack(s, t, trackID)
		if err != nil {
			return false, err
		}
		if index < 0 || index >= len(tr.Clips) {
			return false, fmt.Errorf("%w: index %d", ErrClipNotFound, index)
		}

		orig := tr.Clips[index]
		if orig.Duration < 2*MinDuration {
			return false, nil
		}
		at = math.Min(math.Max(at, orig.StartTime+MinDuration), orig.End()-MinDuration)

		head := orig
		head.Duration = at - orig.StartTime

		tail := orig
		tail.ID = NewID()
		tail.StartTime = at
		tail.Duration = orig.Duration - head.Duration
		tail.MediaOffset = orig.MediaOffset + head.Duration

		clips := make([]Clip, 0, len(tr.Clips)+1)
		clips = append(clips, tr.Clips[:index]...)
		clips = append(clips, head, tail)
		clips = append(clips, tr.Clips[index+1:]...)
		tr.Clips = clips
		return true, nil
	})
}

// SetZoom sets the pixel-per-second scale. Values outside the zoom level
// range are ignored; the return value reports whether zoom changed.
func (m *Model) SetZoom(pps float64) bool {
	if pps < ZoomLevels[0] || pps > ZoomLevels[len(ZoomLevels)-1] {
		return false
	}
	changed := false
	m.mutate(func(s *State) (bool, error) {
		changed = s.Zoom != pps
		s.Zoom = pps
		return changed, nil
	})
	return changed
}

// SetCurrentTime moves the playhead, clamped to [0, MaxDuration].
func (m *Model) SetCurrentTime(t float64) {
	m.mutate(func(s *State) (bool, error) {
		t = math.Min(math.Max(t, 0), s.MaxDuration())
		if s.CurrentTime == t {
			return false, nil
		}
		s.CurrentTime = t
		return true, nil
	})
}

func (m *Model) MediaDuration() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.MediaDuration
}

// SetMediaDuration records the external media length, which extends MaxDuration.
func (m *Model) SetMediaDuration(d float64) {
	m.mutate(func(s *State) (bool, error) {
		d = math.Max(d, 0)
		if s.MediaDuration == d {
			return false, nil
		}
		s.MediaDuration = d
		return true, nil
	})
}

// FindClip returns the current index and value of the clip with clipID.
func (m *Model) FindClip(t TrackType, trackID, clipID string) (int, Clip, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tr, err := findTrack(&m.state, t, trackID)
	if err != nil {
		return -1, Clip{}, false
	}
	for i, c := range tr.Clips {
		if c.ID == clipID {
			return i, c, true
		}
	}
	return -1, Clip{}, false
}

// Clips returns a copy of a track's clips.
func (m *Model) Clips(t TrackType, trackID string) ([]Clip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tr, err := findTrack(&m.state, t, trackID)
	if err != nil {
		return nil, err
	}
	return append([]Clip(nil), tr.Clips...), nil
}

func findTrack(s *State, t TrackType, trackID string) (*Track, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrack, t)
	}
	tracks := s.Tracks[t]
	for i := range tracks {
		if tracks[i].ID == trackID {
			return &tracks[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrTrackNotFound, t, trackID)
}
