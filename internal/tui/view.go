package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Simplici0/preciario/internal/pricing"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FA8FF")).Bold(true)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Bold(true)
	cellStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#D1D5DB"))
	lockedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#374151")).Bold(true)
	totalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD54A")).Bold(true)
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F15B5B"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	panelStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4B5563")).Padding(0, 1)
)

var columnWidths = [columnCount]int{22, 10, 14}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	sheet := m.session.Sheet()
	lines := []string{
		titleStyle.Render("Desglose: " + m.title),
		helpStyle.Render(renderDefaults(sheet.Defaults())),
		"",
		m.renderHeader(),
	}
	for i, row := range sheet.Rows() {
		lines = append(lines, m.renderRow(i, row))
	}
	lines = append(lines,
		"",
		totalStyle.Render("Total: "+pricing.FormatFixed2(sheet.Total())+" "+m.currency),
	)
	if m.message != "" {
		lines = append(lines, warningStyle.Render(m.message))
	}
	lines = append(lines,
		"",
		helpStyle.Render("↑/↓ fila  ←/→ columna  enter editar/confirmar  a agregar  d eliminar  c calcular  q salir"),
	)

	return panelStyle.Render(strings.Join(lines, "\n"))
}

func renderDefaults(d pricing.Defaults) string {
	return "Por defecto: ganancia " + pricing.FormatFixed2(d.ProfitPercent) +
		"%  factura " + pricing.FormatFixed2(d.InvoicePercent) +
		"%  comisión " + pricing.FormatFixed2(d.CommissionPercent) + "%"
}

func (m model) renderHeader() string {
	return lipgloss.JoinHorizontal(lipgloss.Top,
		headerStyle.Width(columnWidths[columnLabel]).Render("Concepto"),
		headerStyle.Width(columnWidths[columnPercentage]).Align(lipgloss.Right).Render("%"),
		headerStyle.Width(columnWidths[columnValue]).Align(lipgloss.Right).Render("Valor"),
	)
}

func (m model) renderRow(i int, row pricing.Row) string {
	cells := make([]string, 0, columnCount)
	for c := columnLabel; c < columnCount; c++ {
		text := displayText(row, c)
		style := cellStyle
		if row.Role() == pricing.RoleCost && c != columnValue {
			style = lockedStyle
		}
		if i == m.cursor && c == m.column {
			style = selectedStyle
			if m.editing {
				text = m.input.View()
			}
		}
		style = style.Width(columnWidths[c])
		if c != columnLabel {
			style = style.Align(lipgloss.Right)
		}
		cells = append(cells, style.Render(text))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cells...)
}

func displayText(row pricing.Row, c column) string {
	switch c {
	case columnLabel:
		if row.Label == "" {
			return "(sin nombre)"
		}
		return row.Label
	case columnPercentage:
		if row.Role() == pricing.RoleCost {
			return ""
		}
		if row.Percentage.IsBlank() {
			return ""
		}
		return pricing.FormatFixed2(row.Percentage.Float()) + "%"
	default:
		if row.Value.IsBlank() {
			return ""
		}
		return pricing.FormatFixed2(row.Value.Float())
	}
}
