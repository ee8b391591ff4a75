package tui

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Simplici0/preciario/internal/pricing"
)

func press(t *testing.T, m tea.Model, keys ...tea.KeyMsg) model {
	t.Helper()
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	return m.(model)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeText(s string) []tea.KeyMsg {
	keys := make([]tea.KeyMsg, 0, len(s))
	for _, r := range s {
		keys = append(keys, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return keys
}

var (
	enter     = tea.KeyMsg{Type: tea.KeyEnter}
	tab       = tea.KeyMsg{Type: tea.KeyTab}
	down      = tea.KeyMsg{Type: tea.KeyDown}
	clearLine = tea.KeyMsg{Type: tea.KeyCtrlU}
)

func value(t *testing.T, m model, role pricing.Role) float64 {
	t.Helper()
	r, ok := m.session.Sheet().RowByRole(role)
	if !ok {
		t.Fatalf("missing %s row", role)
	}
	return r.Value.Float()
}

func nearlyEqual(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("%s = %v, want %v", name, got, want)
	}
}

func TestAddRowEditsLiveAndCommits(t *testing.T) {
	m := press(t, New("Mesa", 100, pricing.DefaultPercentages(), "Bs"), runes("a"))
	if m.cursor != 1 || m.column != columnLabel {
		t.Fatalf("expected cursor on new row label, got row %d column %d", m.cursor, m.column)
	}

	keys := append([]tea.KeyMsg{enter}, typeText("Flete")...)
	keys = append(keys, tab)
	m = press(t, m, keys...)
	if got := m.session.Sheet().Rows()[1].Label; got != "Flete" {
		t.Fatalf("label = %q", got)
	}
	if m.column != columnPercentage || m.editing {
		t.Fatalf("tab should commit and move to the percentage column")
	}

	m = press(t, m, tab, enter, clearLine, runes("2"))
	nearlyEqual(t, "invoice while typing", value(t, m, pricing.RoleInvoice), 23.4)

	m = press(t, m, runes("0"))
	nearlyEqual(t, "invoice while typing", value(t, m, pricing.RoleInvoice), 26.64)

	m = press(t, m, enter)
	row := m.session.Sheet().Rows()[1]
	if row.Value.String() != "20" || m.editing {
		t.Fatalf("unexpected committed row: %+v (editing=%v)", row, m.editing)
	}
	nearlyEqual(t, "total", m.session.Sheet().Total(), 186.48)
}

func TestCostRowGuards(t *testing.T) {
	m := New("Mesa", 100, pricing.DefaultPercentages(), "Bs").(model)
	m.column = columnLabel

	m = press(t, m, enter)
	if m.editing || m.message == "" {
		t.Fatalf("cost label must not be editable")
	}

	m = press(t, m, runes("d"))
	if m.session.Sheet().Len() != 4 || m.message == "" {
		t.Fatalf("cost row must not be removed")
	}
}

func TestRemoveRowClampsCursor(t *testing.T) {
	m := New("Mesa", 100, pricing.DefaultPercentages(), "Bs")
	state := press(t, m, down, down, down, runes("d"))

	if state.session.Sheet().Len() != 3 {
		t.Fatalf("expected commission row to be removed")
	}
	if state.cursor != 2 {
		t.Fatalf("cursor = %d, want 2", state.cursor)
	}
}

func TestCalculate(t *testing.T) {
	empty := press(t, New("Muestra", 0, pricing.DefaultPercentages(), "Bs"), runes("c"))
	if empty.result != nil || empty.quitting || empty.message == "" {
		t.Fatalf("calculate without valid rows must only show a hint")
	}

	m := New("Mesa", 100, pricing.DefaultPercentages(), "Bs")
	next, cmd := m.Update(runes("c"))
	done := next.(model)
	if done.result == nil || cmd == nil {
		t.Fatalf("expected calculation and quit")
	}
	nearlyEqual(t, "total", done.result.Total, 161.28)
	if len(done.result.Rows) != 4 {
		t.Fatalf("expected 4 valid rows, got %d", len(done.result.Rows))
	}
}

func TestViewShowsTotal(t *testing.T) {
	m := New("Mesa", 100, pricing.DefaultPercentages(), "Bs")

	view := m.View()

	for _, expected := range []string{"Desglose: Mesa", "Profit", "28.00%", "23.04", "Total: 161.28 Bs",
		"Por defecto: ganancia 28.00%  factura 18.00%  comisión 8.00%"} {
		if !strings.Contains(view, expected) {
			t.Fatalf("expected view to contain %q:\n%s", expected, view)
		}
	}
}

func TestViewShowsSeedDefaultsAfterEdits(t *testing.T) {
	m := New("Mesa", 100, pricing.Defaults{ProfitPercent: 30, InvoicePercent: 13, CommissionPercent: 5.5}, "Bs").(model)
	m.session.EditPercentage(2, "45")

	view := m.View()

	for _, expected := range []string{"ganancia 30.00%", "factura 13.00%", "comisión 5.50%", "45.00%"} {
		if !strings.Contains(view, expected) {
			t.Fatalf("expected view to contain %q:\n%s", expected, view)
		}
	}
}
