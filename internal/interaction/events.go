package interaction

import (
	"sort"
	"sync"

	"github.com/heimdex/heimdex-editor/internal/timeline"
)

type PointerKind int

const (
	PointerDown PointerKind = iota
	PointerMove
	PointerUp
	PointerContextMenu
)

func (k PointerKind) String() string {
	switch k {
	case PointerDown:
		return "pointerdown"
	case PointerMove:
		return "pointermove"
	case PointerUp:
		return "pointerup"
	case PointerContextMenu:
		return "contextmenu"
	default:
		return "unknown"
	}
}

type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// PointerEvent is a pointer event in timeline coordinates. X and Y are
// content pixels (scroll applied); ClientX and ClientY are viewport pixels.
// TrackID names the track row under the pointer, empty outside any track.
type PointerEvent struct {
	Kind      PointerKind
	Button    Button
	X, Y      float64
	ClientX   float64
	ClientY   float64
	Shift     bool
	TrackType timeline.TrackType
	TrackID   string
}

type Listener func(PointerEvent)

// Document fans pointer events out to listeners. Gestures attach to it for
// the lifetime of a drag so that moves outside the clip still reach them.
type Document struct {
	mu        sync.Mutex
	listeners map[PointerKind]map[int]Listener
	nextID    int
}

func NewDocument() *Document {
	return &Document{listeners: make(map[PointerKind]map[int]Listener)}
}

// AddListener registers fn for kind and returns its remover. Calling the
// remover more than once is harmless.
func (d *Document) AddListener(kind PointerKind, fn Listener) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.nextID
	d.nextID++
	if d.listeners[kind] == nil {
		d.listeners[kind] = make(map[int]Listener)
	}
	d.listeners[kind][id] = fn

	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.listeners[kind], id)
	}
}

// Dispatch delivers ev to every listener of its kind in registration order.
// Listeners may add or remove listeners while being called.
func (d *Document) Dispatch(ev PointerEvent) {
	d.mu.Lock()
	byID := d.listeners[ev.Kind]
	ids := make([]int, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, len(ids))
	for i, id := range ids {
		fns[i] = byID[id]
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// ListenerCount returns the number of attached listeners of every kind.
func (d *Document) ListenerCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, byID := range d.listeners {
		n += len(byID)
	}
	return n
}
