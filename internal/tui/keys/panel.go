package keys

import "github.com/charmbracelet/bubbles/key"

// PanelKeys are the key bindings of the relay panel.
type PanelKeys struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	AllOn   key.Binding
	AllOff  key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func NewPanelKeys() PanelKeys {
	return PanelKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous channel"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next channel"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space/enter", "toggle relay"),
		),
		AllOn: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all relays on"),
		),
		AllOff: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "all relays off"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh states"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q/ctrl+c", "quit"),
		),
	}
}

func (k PanelKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.AllOn, k.AllOff, k.Help, k.Quit}
}

func (k PanelKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle},
		{k.AllOn, k.AllOff, k.Refresh},
		{k.Help, k.Quit},
	}
}
