// Package tui hosts a pricing sheet in the terminal.
package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Simplici0/preciario/internal/pricing"
)

type column int

const (
	columnLabel column = iota
	columnPercentage
	columnValue
)

const columnCount = 3

type model struct {
	title    string
	currency string
	session  *pricing.Session

	cursor  int
	column  column
	editing bool
	input   textinput.Model
	message string
	width   int

	result   *pricing.Calculation
	quitting bool
}

// New returns a model editing a fresh sheet for cost.
func New(title string, cost float64, defaults pricing.Defaults, currency string) tea.Model {
	input := textinput.New()
	input.Prompt = ""
	input.Width = 14
	input.CharLimit = 24

	return model{
		title:    title,
		currency: currency,
		session:  pricing.NewSession(cost, defaults, pricing.Hooks{}),
		column:   columnValue,
		input:    input,
	}
}

// Run drives the sheet until the user calculates or quits. The calculation is
// nil when the user quits.
func Run(title string, cost float64, defaults pricing.Defaults, currency string) (*pricing.Calculation, error) {
	final, err := tea.NewProgram(New(title, cost, defaults, currency)).Run()
	if err != nil {
		return nil, err
	}
	m, ok := final.(model)
	if !ok {
		return nil, nil
	}
	return m.result, nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateEditing(msg)
		}
		return m.updateBrowsing(msg)
	}
	return m, nil
}

func (m model) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	rows := m.session.Sheet().Rows()

	switch msg.String() {
	case "ctrl+c", "q", "esc":
		m.quitting = true
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case "left", "h", "shift+tab":
		m.column = (m.column + columnCount - 1) % columnCount
	case "right", "l", "tab":
		m.column = (m.column + 1) % columnCount

	case "enter":
		row := rows[m.cursor]
		if row.Role() == pricing.RoleCost && m.column != columnValue {
			m.message = "El costo solo admite editar su valor."
			return m, nil
		}
		m.editing = true
		m.message = ""
		m.input.SetValue(cellText(row, m.column))
		m.input.CursorEnd()
		return m, m.input.Focus()

	case "a":
		id := m.session.InsertRow()
		m.cursor = indexOf(m.session.Sheet(), id)
		m.column = columnLabel
		m.message = ""

	case "d":
		row := rows[m.cursor]
		if row.Role() == pricing.RoleCost {
			m.message = "La fila de costo no se puede eliminar."
			return m, nil
		}
		m.session.RemoveRow(row.ID)
		if m.cursor >= m.session.Sheet().Len() {
			m.cursor = m.session.Sheet().Len() - 1
		}
		m.message = ""

	case "c":
		calc, err := m.session.Calculate()
		if errors.Is(err, pricing.ErrNoValidRows) {
			m.message = "Agrega filas con nombre y valor antes de calcular."
			return m, nil
		}
		m.result = &calc
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// updateEditing feeds keystrokes to the input. Percentages and values are
// applied on every keystroke; enter, tab and esc commit the cell.
func (m model) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row := m.session.Sheet().Rows()[m.cursor]

	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "enter", "tab", "esc":
		m.commit(row.ID)
		m.editing = false
		m.input.Blur()
		if msg.String() == "tab" {
			m.column = (m.column + 1) % columnCount
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		switch m.column {
		case columnPercentage:
			m.session.EditPercentage(row.ID, after)
		case columnValue:
			m.session.EditValue(row.ID, after)
		}
	}
	return m, cmd
}

func (m *model) commit(id int) {
	raw := m.input.Value()
	switch m.column {
	case columnLabel:
		if err := m.session.Rename(id, raw); err != nil {
			m.message = renameMessage(err)
			return
		}
	case columnPercentage:
		m.session.CommitPercentage(id, raw)
	case columnValue:
		m.session.CommitValue(id, raw)
	}
	m.message = ""
}

func renameMessage(err error) string {
	switch {
	case errors.Is(err, pricing.ErrCostLocked):
		return "La fila de costo no se puede renombrar."
	case errors.Is(err, pricing.ErrRoleTaken):
		return "Ese nombre ya lo usa otra fila."
	default:
		return err.Error()
	}
}

func cellText(row pricing.Row, c column) string {
	switch c {
	case columnLabel:
		return row.Label
	case columnPercentage:
		return row.Percentage.String()
	default:
		return row.Value.String()
	}
}

func indexOf(s pricing.Sheet, id int) int {
	for i, r := range s.Rows() {
		if r.ID == id {
			return i
		}
	}
	return 0
}
