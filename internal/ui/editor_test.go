package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/media"
	"github.com/heimdex/heimdex-editor/internal/snap"
	"github.com/heimdex/heimdex-editor/internal/timeline"
	"github.com/heimdex/heimdex-editor/internal/viewport"
)

type editorFixture struct {
	editor  *Editor
	model   *timeline.Model
	trackID string
	clipID  string
}

// newEditorFixture builds an 80x20 editor at zoom 20 with 10px cells, so
// clip A (0s to 5s) covers columns 4 through 13 of the first track row.
func newEditorFixture(t *testing.T) *editorFixture {
	t.Helper()
	m := timeline.NewModel()
	trackID, _ := m.AddTrack(timeline.TrackVideo)
	_, idx, _ := m.AddClip(timeline.TrackVideo, trackID, timeline.Clip{Name: "A", StartTime: 0, Duration: 5})
	clips, _ := m.Clips(timeline.TrackVideo, trackID)

	v := viewport.New(viewport.Config{Model: m})
	t.Cleanup(v.Close)

	e := NewEditor(EditorConfig{Timeline: m, Viewport: v, Resolver: snap.NewResolver(), CellWidth: 10})
	e.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	return &editorFixture{editor: e, model: m, trackID: trackID, clipID: clips[idx].ID}
}

func (f *editorFixture) mouse(action tea.MouseAction, button tea.MouseButton, x, y int) {
	f.editor.Update(tea.MouseMsg{X: x, Y: y, Action: action, Button: button})
}

func (f *editorFixture) key(msg tea.KeyMsg) {
	f.editor.Update(msg)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func (f *editorFixture) clip(t *testing.T) timeline.Clip {
	t.Helper()
	_, c, ok := f.model.FindClip(timeline.TrackVideo, f.trackID, f.clipID)
	if !ok {
		t.Fatal("clip not found")
	}
	return c
}

func TestLayout_HitClip(t *testing.T) {
	l := layout{cellPx: 10, zoom: 20}
	row := trackRow{Type: timeline.TrackVideo, ID: "t"}
	clips := []timeline.Clip{
		{ID: "wide", StartTime: 0, Duration: 5},
		{ID: "narrow", StartTime: 6, Duration: 0.5},
	}

	tests := []struct {
		col      int
		wantID   string
		wantEdge interaction.Edge
	}{
		{4, "wide", interaction.EdgeStart},
		{8, "wide", interaction.EdgeNone},
		{13, "wide", interaction.EdgeEnd},
		{14, "", interaction.EdgeNone},
		{16, "narrow", interaction.EdgeNone},
	}
	for _, tt := range tests {
		h := l.hitClip(row, clips, tt.col)
		if h.clip.ID != tt.wantID || h.edge != tt.wantEdge {
			t.Errorf("hitClip(col %d) = %q edge %v, want %q edge %v", tt.col, h.clip.ID, h.edge, tt.wantID, tt.wantEdge)
		}
		if h.found != (tt.wantID != "") {
			t.Errorf("hitClip(col %d).found = %v", tt.col, h.found)
		}
	}
}

func TestEditor_DragClip(t *testing.T) {
	f := newEditorFixture(t)

	f.mouse(tea.MouseActionPress, tea.MouseButtonLeft, 8, firstTrackRow)
	f.mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 12, firstTrackRow)
	if f.clip(t).StartTime != 0 {
		t.Fatal("move committed before drop")
	}
	if !strings.Contains(f.editor.View(), "░") {
		t.Error("View() does not show the drag preview")
	}
	f.mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 12, firstTrackRow)

	if got := f.clip(t).StartTime; got != 2 {
		t.Errorf("StartTime = %v, want 2", got)
	}
	if f.editor.doc.ListenerCount() != 0 {
		t.Errorf("ListenerCount() = %d, want 0", f.editor.doc.ListenerCount())
	}
}

func TestEditor_TrimEnd(t *testing.T) {
	f := newEditorFixture(t)

	f.mouse(tea.MouseActionPress, tea.MouseButtonLeft, 13, firstTrackRow)
	f.mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 17, firstTrackRow)
	f.mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 17, firstTrackRow)

	if got := f.clip(t).Duration; got != 7 {
		t.Errorf("Duration = %v, want 7", got)
	}
}

func TestEditor_EscapeCancelsTrim(t *testing.T) {
	f := newEditorFixture(t)

	f.mouse(tea.MouseActionPress, tea.MouseButtonLeft, 13, firstTrackRow)
	f.mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 17, firstTrackRow)
	f.key(tea.KeyMsg{Type: tea.KeyEsc})
	f.mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 17, firstTrackRow)

	if got := f.clip(t).Duration; got != 5 {
		t.Errorf("Duration = %v, want 5", got)
	}
}

func TestEditor_ScrubRuler(t *testing.T) {
	f := newEditorFixture(t)

	f.mouse(tea.MouseActionPress, tea.MouseButtonLeft, 24, rulerTickRow)
	if got := f.model.CurrentTime(); got != 10 {
		t.Errorf("CurrentTime() = %v, want 10", got)
	}
	f.mouse(tea.MouseActionMotion, tea.MouseButtonLeft, 14, rulerTickRow)
	f.mouse(tea.MouseActionRelease, tea.MouseButtonLeft, 14, rulerTickRow)
	if got := f.model.CurrentTime(); got != 5 {
		t.Errorf("CurrentTime() = %v, want 5", got)
	}
}

func TestEditor_ContextMenuDelete(t *testing.T) {
	f := newEditorFixture(t)

	f.mouse(tea.MouseActionPress, tea.MouseButtonRight, 8, firstTrackRow)
	if f.editor.menuOwner == nil {
		t.Fatal("context menu not opened")
	}
	if !strings.Contains(f.editor.View(), "Delete") {
		t.Error("View() does not show the menu")
	}

	// The second item sits one row below the anchor.
	f.mouse(tea.MouseActionPress, tea.MouseButtonLeft, 9, firstTrackRow+1)

	clips, _ := f.model.Clips(timeline.TrackVideo, f.trackID)
	if len(clips) != 0 {
		t.Errorf("clips = %d, want 0", len(clips))
	}
	if f.editor.menuOwner != nil {
		t.Error("menu still open")
	}
}

func TestEditor_ContextMenuClosesOnOutsideClick(t *testing.T) {
	f := newEditorFixture(t)

	f.mouse(tea.MouseActionPress, tea.MouseButtonRight, 8, firstTrackRow)
	f.mouse(tea.MouseActionPress, tea.MouseButtonLeft, 60, rulerLabelRow)

	if f.editor.menuOwner != nil {
		t.Error("menu still open after outside click")
	}
	if f.editor.doc.ListenerCount() != 0 {
		t.Errorf("ListenerCount() = %d, want 0", f.editor.doc.ListenerCount())
	}
}

func TestEditor_Keys(t *testing.T) {
	f := newEditorFixture(t)

	f.key(tea.KeyMsg{Type: tea.KeyShiftRight})
	if got := f.model.CurrentTime(); got != 5 {
		t.Errorf("CurrentTime() = %v, want 5", got)
	}
	f.key(tea.KeyMsg{Type: tea.KeyLeft})
	f.key(tea.KeyMsg{Type: tea.KeyLeft})
	if got := f.model.CurrentTime(); got != 3 {
		t.Errorf("CurrentTime() = %v, want 3", got)
	}

	f.key(runes("s"))
	clips, _ := f.model.Clips(timeline.TrackVideo, f.trackID)
	if len(clips) != 2 || clips[1].StartTime != 3 {
		t.Fatalf("clips after split = %+v", clips)
	}

	f.key(runes("+"))
	if got := f.model.Zoom(); got != 30 {
		t.Errorf("Zoom() = %v, want 30", got)
	}
	f.key(runes("-"))
	f.key(runes("-"))
	if got := f.model.Zoom(); got != 15 {
		t.Errorf("Zoom() = %v, want 15", got)
	}

	f.key(runes("a"))
	s := f.model.Snapshot()
	if len(s.Tracks[timeline.TrackAudio]) != 1 {
		t.Errorf("audio tracks = %d, want 1", len(s.Tracks[timeline.TrackAudio]))
	}

	// Focus moved to the new audio track, which has nothing to delete.
	f.key(runes("x"))
	clips, _ = f.model.Clips(timeline.TrackVideo, f.trackID)
	if len(clips) != 2 {
		t.Errorf("clips = %d, want 2", len(clips))
	}
	f.key(tea.KeyMsg{Type: tea.KeyUp})
	f.key(runes("x"))
	clips, _ = f.model.Clips(timeline.TrackVideo, f.trackID)
	if len(clips) != 1 {
		t.Errorf("clips = %d after delete, want 1", len(clips))
	}
}

func TestEditor_Quit(t *testing.T) {
	f := newEditorFixture(t)
	quit := false
	f.editor.onQuit = func() { quit = true }

	_, cmd := f.editor.Update(runes("q"))
	if cmd == nil || !quit {
		t.Fatal("q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("command is not tea.Quit")
	}
}

func TestEditor_HelpToggle(t *testing.T) {
	f := newEditorFixture(t)
	if strings.Contains(f.editor.View(), "add track") {
		t.Fatal("short help shows full bindings")
	}

	f.key(runes("?"))
	out := f.editor.View()
	for _, want := range []string{"add track", "seek 5s", "cancel"} {
		if !strings.Contains(out, want) {
			t.Errorf("full help missing %q", want)
		}
	}

	f.key(runes("?"))
	if strings.Contains(f.editor.View(), "add track") {
		t.Error("second ? did not collapse help")
	}
}

func TestEditor_SpaceTogglesPlay(t *testing.T) {
	m := timeline.NewModel()
	v := viewport.New(viewport.Config{Model: m, Player: media.NewClockPlayer(0)})
	t.Cleanup(v.Close)
	e := NewEditor(EditorConfig{Timeline: m, Viewport: v, Resolver: snap.NewResolver()})

	e.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	if !v.Playing() {
		t.Fatal("space did not start playback")
	}
	e.Update(runes("k"))
	if v.Playing() {
		t.Error("k did not pause playback")
	}
}

func TestEditor_View(t *testing.T) {
	f := newEditorFixture(t)
	out := f.editor.View()

	for _, want := range []string{"V1", "0:00", "A", "q quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
