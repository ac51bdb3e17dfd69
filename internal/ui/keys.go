package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Play       key.Binding
	Back       key.Binding
	Forward    key.Binding
	BackFar    key.Binding
	ForwardFar key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	FocusUp    key.Binding
	FocusDown  key.Binding
	Split      key.Binding
	Delete     key.Binding
	AddVideo   key.Binding
	AddAudio   key.Binding
	Cancel     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var keys = keyMap{
	Play: key.NewBinding(
		key.WithKeys(" ", "space", "k"),
		key.WithHelp("space", "play"),
	),
	Back: key.NewBinding(
		key.WithKeys("left"),
		key.WithHelp("←/→", "seek"),
	),
	Forward: key.NewBinding(
		key.WithKeys("right"),
	),
	BackFar: key.NewBinding(
		key.WithKeys("shift+left"),
		key.WithHelp("shift+←/→", "seek 5s"),
	),
	ForwardFar: key.NewBinding(
		key.WithKeys("shift+right"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+/-", "zoom"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
	),
	FocusUp: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑/↓", "track"),
	),
	FocusDown: key.NewBinding(
		key.WithKeys("down"),
	),
	Split: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "split"),
	),
	Delete: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "delete"),
	),
	AddVideo: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v/a", "add track"),
	),
	AddAudio: key.NewBinding(
		key.WithKeys("a"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp fits an 80 column terminal. Partner keys such as Forward carry
// no help of their own and are described by their pair.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Back, k.ZoomIn, k.Split, k.Delete, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Back, k.BackFar},
		{k.ZoomIn, k.FocusUp},
		{k.Split, k.Delete, k.AddVideo},
		{k.Cancel, k.Help, k.Quit},
	}
}
