package interaction

type MenuAction string

const (
	ActionDelete MenuAction = "delete"
	ActionSplit  MenuAction = "split"
)

type MenuItem struct {
	Label  string
	Action MenuAction
}

const (
	DefaultMenuWidth      = 160.0
	DefaultMenuItemHeight = 24.0
)

// ContextMenu is a per-clip menu anchored at viewport coordinates.
type ContextMenu struct {
	X, Y       float64
	Width      float64
	ItemHeight float64
	Items      []MenuItem
}

func newContextMenu(x, y float64) *ContextMenu {
	return &ContextMenu{
		X:          x,
		Y:          y,
		Width:      DefaultMenuWidth,
		ItemHeight: DefaultMenuItemHeight,
		Items: []MenuItem{
			{Label: "Split at playhead", Action: ActionSplit},
			{Label: "Delete", Action: ActionDelete},
		},
	}
}

func (m *ContextMenu) Height() float64 {
	return float64(len(m.Items)) * m.ItemHeight
}

// Contains reports whether viewport point (x, y) falls inside the menu.
func (m *ContextMenu) Contains(x, y float64) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height()
}

// ItemAt returns the item under viewport point (x, y).
func (m *ContextMenu) ItemAt(x, y float64) (MenuItem, bool) {
	if !m.Contains(x, y) {
		return MenuItem{}, false
	}
	i := int((y - m.Y) / m.ItemHeight)
	if i < 0 || i >= len(m.Items) {
		return MenuItem{}, false
	}
	return m.Items[i], true
}
