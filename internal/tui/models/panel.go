package models

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/evertras/bubble-table/table"

	denkovi "github.com/Morishima-Yoru/denkovi-relayboard"
	"github.com/Morishima-Yoru/denkovi-relayboard/internal/tui/keys"
	"github.com/Morishima-Yoru/denkovi-relayboard/internal/tui/styles"
)

const (
	columnChannel = "channel"
	columnState   = "state"
)

// StatesMsg carries a fresh state vector read from the board.
type StatesMsg struct {
	States []bool
}

// ErrMsg carries a failed board operation into the update loop.
type ErrMsg struct {
	Err error
}

// PanelModel is an interactive relay panel for one connected board. All
// board I/O runs inside tea commands so the UI never blocks on the
// device.
type PanelModel struct {
	board  denkovi.Board
	title  string
	table  table.Model
	keys   keys.PanelKeys
	help   help.Model
	states []bool
	err    error
}

func NewPanelModel(board denkovi.Board, title string) *PanelModel {
	columns := []table.Column{
		table.NewColumn(columnChannel, "Channel", 9),
		table.NewColumn(columnState, "State", 7),
	}
	t := table.New(columns).
		Focused(true).
		WithPageSize(board.MaxChannel())

	return &PanelModel{
		board: board,
		title: title,
		table: t,
		keys:  keys.NewPanelKeys(),
		help:  help.New(),
	}
}

func (m *PanelModel) Init() tea.Cmd {
	return m.readStates()
}

func (m *PanelModel) readStates() tea.Cmd {
	return func() tea.Msg {
		states, err := m.board.GetAllStates()
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StatesMsg{States: states}
	}
}

func (m *PanelModel) toggleSelected() tea.Cmd {
	idx := m.table.GetHighlightedRowIndex()
	if idx < 0 || idx >= len(m.states) {
		return nil
	}
	addr := idx + 1
	target := !m.states[idx]
	return func() tea.Msg {
		if err := m.board.SetState(target, addr); err != nil {
			return ErrMsg{Err: err}
		}
		states, err := m.board.GetAllStates()
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StatesMsg{States: states}
	}
}

func (m *PanelModel) setAll(on bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		if on {
			err = m.board.SetAllStatesOn()
		} else {
			err = m.board.SetAllStatesOff()
		}
		if err != nil {
			return ErrMsg{Err: err}
		}
		states, err := m.board.GetAllStates()
		if err != nil {
			return ErrMsg{Err: err}
		}
		return StatesMsg{States: states}
	}
}

func (m *PanelModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StatesMsg:
		m.err = nil
		m.states = msg.States
		m.table = m.table.WithRows(m.rows())
		return m, nil

	case ErrMsg:
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Toggle):
			return m, m.toggleSelected()
		case key.Matches(msg, m.keys.AllOn):
			return m, m.setAll(true)
		case key.Matches(msg, m.keys.AllOff):
			return m, m.setAll(false)
		case key.Matches(msg, m.keys.Refresh):
			return m, m.readStates()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *PanelModel) rows() []table.Row {
	rows := make([]table.Row, len(m.states))
	for i, on := range m.states {
		state := styles.RelayOffStyle.Render("off")
		if on {
			state = styles.RelayOnStyle.Render("ON")
		}
		rows[i] = table.NewRow(table.RowData{
			columnChannel: fmt.Sprintf("%d", i+1),
			columnState:   state,
		})
	}
	return rows
}

func (m *PanelModel) View() string {
	view := styles.TitleStyle.Render(m.title) + "\n\n"
	view += m.table.View() + "\n"
	if m.err != nil {
		view += styles.ErrorStyle.Render("error: "+m.err.Error()) + "\n"
	}
	view += styles.PanelBorderStyle.Render(m.help.View(m.keys))
	return view
}
