package timeline

import (
	"errors"
	"fmt"
)

// epsilon absorbs float noise from pixel/time conversions when comparing edges.
const epsilon = 1e-9

var (
	ErrTrackNotFound = errors.New("track not found")
	ErrClipNotFound  = errors.New("clip not found")
	ErrInvalidTrack  = errors.New("invalid track type")
	ErrOverlap       = errors.New("clip overlaps a neighbouring clip")
	ErrMinDuration   = errors.New("clip shorter than minimum duration")
	ErrNegativeStart = errors.New("clip starts before zero")
	ErrNegativeMedia = errors.New("clip media offset is negative")
)

// CheckPlacement reports whether c may sit in clips, ignoring the clip at
// skipIndex (pass -1 to check a new clip).
func CheckPlacement(clips []Clip, skipIndex int, c Clip) error {
	if c.StartTime < 0 {
		return ErrNegativeStart
	}
	if c.Duration < MinDuration-epsilon {
		return ErrMinDuration
	}
	if c.MediaOffset < 0 {
		return ErrNegativeMedia
	}
	for i, other := range clips {
		if i == skipIndex {
			continue
		}
		if c.Overlaps(other) {
			return fmt.Errorf("%w: %s", ErrOverlap, other.ID)
		}
	}
	return nil
}

// Validate checks every track of s against the clip invariants.
func Validate(s State) error {
	for t, tracks := range s.Tracks {
		for _, tr := range tracks {
			for i, c := range tr.Clips {
				if err := CheckPlacement(tr.Clips[:i], -1, c); err != nil {
					return fmt.Errorf("%s track %s clip %d: %w", t, tr.ID, i, err)
				}
			}
		}
	}
	return nil
}
