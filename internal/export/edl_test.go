package export

import (
	"strings"
	"testing"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

func TestGenerateEDL_SingleClip(t *testing.T) {
	clips := []ResolvedClip{{
		ClipName:    "Intro",
		MediaPath:   "/media/intro.mp4",
		SourceInMs:  0,
		SourceOutMs: 2000,
		RecordInMs:  0,
	}}

	edl := GenerateEDL(clips, "Project One", 30.0)

	if !strings.Contains(edl, "TITLE: Project One") {
		t.Fatalf("missing title in EDL: %q", edl)
	}
	if !strings.Contains(edl, "FCM: NON-DROP FRAME") {
		t.Fatalf("missing non-drop-frame FCM: %q", edl)
	}
	if !strings.Contains(edl, "001  AX       V     C        00:00:00:00 00:00:02:00 00:00:00:00 00:00:02:00") {
		t.Fatalf("missing event line: %q", edl)
	}
	if !strings.Contains(edl, "* FROM CLIP NAME:  Intro") {
		t.Fatalf("missing clip name comment: %q", edl)
	}
	if !strings.Contains(edl, "* MEDIA PATH:  /media/intro.mp4") {
		t.Fatalf("missing media path comment: %q", edl)
	}
}

func TestGenerateEDL_RecordTimesFollowTimeline(t *testing.T) {
	clips := []ResolvedClip{
		{ClipName: "Clip A", MediaPath: "/a.mp4", SourceInMs: 0, SourceOutMs: 1000, RecordInMs: 0},
		{ClipName: "Clip B", MediaPath: "/b.mp4", SourceInMs: 1000, SourceOutMs: 2500, RecordInMs: 3000, Channel: "A"},
	}

	edl := GenerateEDL(clips, "Multi", 30.0)

	if !strings.Contains(edl, "001  AX       V     C        00:00:00:00 00:00:01:00 00:00:00:00 00:00:01:00") {
		t.Fatalf("first event line mismatch: %q", edl)
	}
	if !strings.Contains(edl, "002  AX       A     C        00:00:01:00 00:00:02:15 00:00:03:00 00:00:04:15") {
		t.Fatalf("second event line mismatch or bad record time: %q", edl)
	}
}

func TestGenerateEDL_DropFrame(t *testing.T) {
	clips := []ResolvedClip{{ClipName: "Clip", MediaPath: "/x.mp4", SourceOutMs: 1000}}
	edl := GenerateEDL(clips, "Drop", 29.97)

	if !strings.Contains(edl, "FCM: DROP FRAME") {
		t.Fatalf("expected drop frame FCM, got: %q", edl)
	}
}

func TestFromTrack(t *testing.T) {
	clips := []timeline.Clip{
		{ID: "c2", Name: "Second", StartTime: 4, Duration: 1.5, MediaOffset: 2, MediaID: "m1"},
		{ID: "c1", Name: "First<cut>", StartTime: 0, Duration: 2, MediaID: "m1"},
		{ID: "c3", Name: "Orphan", StartTime: 7, Duration: 1, MediaID: "gone"},
		{ID: "c4", StartTime: 9, Duration: 1},
	}
	paths := map[string]string{"m1": "/media/one.mp4"}
	resolve := func(id string) (string, bool) {
		p, ok := paths[id]
		return p, ok
	}

	got, unresolved := FromTrack(timeline.TrackVideo, clips, resolve)

	if len(got) != 2 {
		t.Fatalf("resolved = %d, want 2", len(got))
	}
	want := []ResolvedClip{
		{ClipName: "First_cut_", MediaPath: "/media/one.mp4", Channel: "V", SourceInMs: 0, SourceOutMs: 2000, RecordInMs: 0},
		{ClipName: "Second", MediaPath: "/media/one.mp4", Channel: "V", SourceInMs: 2000, SourceOutMs: 3500, RecordInMs: 4000},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if len(unresolved) != 2 || unresolved[0] != "c3" || unresolved[1] != "c4" {
		t.Errorf("unresolved = %v, want [c3 c4]", unresolved)
	}

	audio, _ := FromTrack(timeline.TrackAudio, clips[:1], resolve)
	if audio[0].Channel != "A" {
		t.Errorf("audio channel = %q, want A", audio[0].Channel)
	}
}

func TestMsToTimecode(t *testing.T) {
	tests := []struct {
		name string
		ms   int
		fps  int
		want string
	}{
		{name: "zero", ms: 0, fps: 30, want: "00:00:00:00"},
		{name: "one second", ms: 1000, fps: 30, want: "00:00:01:00"},
		{name: "fractional second", ms: 500, fps: 30, want: "00:00:00:15"},
		{name: "one minute", ms: 60000, fps: 30, want: "00:01:00:00"},
		{name: "one hour", ms: 3600000, fps: 30, want: "01:00:00:00"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := msToTimecode(tc.ms, tc.fps)
			if got != tc.want {
				t.Fatalf("msToTimecode(%d, %d) = %q, want %q", tc.ms, tc.fps, got, tc.want)
			}
		})
	}
}
