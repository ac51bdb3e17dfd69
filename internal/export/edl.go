// Package export writes timeline tracks out as CMX3600 edit decision lists.
package export

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

// MediaResolver maps a clip's media id to a file path.
type MediaResolver func(mediaID string) (string, bool)

// FromTrack turns a track's clips into EDL events in timeline order. Clips
// whose media cannot be resolved are skipped and reported by id.
func FromTrack(t timeline.TrackType, clips []timeline.Clip, resolve MediaResolver) ([]ResolvedClip, []string) {
	sorted := append([]timeline.Clip(nil), clips...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].StartTime < sorted[j].StartTime })

	channel := "V"
	if t == timeline.TrackAudio {
		channel = "A"
	}

	resolved := make([]ResolvedClip, 0, len(sorted))
	unresolved := make([]string, 0)
	for _, c := range sorted {
		path, ok := resolve(c.MediaID)
		if c.MediaID == "" || !ok {
			unresolved = append(unresolved, c.ID)
			continue
		}

		name := SanitizeName(c.Name, 160)
		if name == "" {
			name = c.ID
		}
		resolved = append(resolved, ResolvedClip{
			ClipName:    name,
			MediaPath:   path,
			Channel:     channel,
			SourceInMs:  secondsToMs(c.MediaOffset),
			SourceOutMs: secondsToMs(c.MediaOffset + c.Duration),
			RecordInMs:  secondsToMs(c.StartTime),
		})
	}
	return resolved, unresolved
}

func secondsToMs(s float64) int {
	return int(math.Round(s * 1000))
}

func GenerateEDL(clips []ResolvedClip, title string, frameRate float64) string {
	fps := int(math.Round(frameRate))
	if fps <= 0 {
		fps = 30
	}

	isDropFrame := math.Abs(frameRate-29.97) < 0.01 || math.Abs(frameRate-59.94) < 0.01

	lines := []string{fmt.Sprintf("TITLE: %s", title)}
	if isDropFrame {
		lines = append(lines, "FCM: DROP FRAME")
	} else {
		lines = append(lines, "FCM: NON-DROP FRAME")
	}
	lines = append(lines, "")

	for i, clip := range clips {
		channel := clip.Channel
		if channel == "" {
			channel = "V"
		}
		srcIn := msToTimecode(clip.SourceInMs, fps)
		srcOut := msToTimecode(clip.SourceOutMs, fps)
		recIn := msToTimecode(clip.RecordInMs, fps)
		recOut := msToTimecode(clip.RecordInMs+clip.SourceOutMs-clip.SourceInMs, fps)

		lines = append(lines,
			fmt.Sprintf("%03d  %-8s %-5s C        %s %s %s %s", i+1, "AX", channel, srcIn, srcOut, recIn, recOut),
			fmt.Sprintf("* FROM CLIP NAME:  %s", clip.ClipName),
			fmt.Sprintf("* MEDIA PATH:  %s", clip.MediaPath),
		)
	}

	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func msToTimecode(ms int, fps int) string {
	totalFrames := int(math.Round(float64(ms) * float64(fps) / 1000.0))
	frames := totalFrames % fps
	totalSeconds := totalFrames / fps
	seconds := totalSeconds % 60
	totalMinutes := totalSeconds / 60
	minutes := totalMinutes % 60
	hours := totalMinutes / 60
	return fmt.Sprintf("%02d:%02d:%02d:%02d", hours, minutes, seconds, frames)
}
