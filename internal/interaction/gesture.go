package interaction

import "sync"

// Gesture holds the document listeners of one pointer gesture. They are
// attached by newGesture and removed by Dispose, exactly once, whichever way
// the gesture ends.
type Gesture struct {
	removers []func()
	once     sync.Once
	onEnd    func()
}

// newGesture attaches onMove and onUp to doc. onUp runs before the listeners
// are detached; onEnd runs after, on every exit path.
func newGesture(doc *Document, onMove, onUp Listener, onEnd func()) *Gesture {
	g := &Gesture{onEnd: onEnd}
	g.removers = []func(){
		doc.AddListener(PointerMove, g.guard(onMove)),
		doc.AddListener(PointerUp, func(ev PointerEvent) {
			defer g.Dispose()
			onUp(ev)
		}),
	}
	return g
}

// guard disposes the gesture if fn panics and re-raises the panic.
func (g *Gesture) guard(fn Listener) Listener {
	return func(ev PointerEvent) {
		defer func() {
			if r := recover(); r != nil {
				g.Dispose()
				panic(r)
			}
		}()
		fn(ev)
	}
}

func (g *Gesture) Dispose() {
	g.once.Do(func() {
		for _, remove := range g.removers {
			remove()
		}
		if g.onEnd != nil {
			g.onEnd()
		}
	})
}
