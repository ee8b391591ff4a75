package pricing

import (
	"errors"
	"testing"
)

func TestSession_HooksFireOnEveryChangeAndOnCalculate(t *testing.T) {
	var changes int
	var last Sheet
	var confirmed *Calculation

	s := NewSession(100, DefaultPercentages(), Hooks{
		OnChange: func(sheet Sheet) {
			changes++
			last = sheet
		},
		OnCalculate: func(c Calculation) {
			confirmed = &c
		},
	})
	if changes != 1 {
		t.Fatalf("expected seed to notify once, got %d", changes)
	}

	id := s.InsertRow()
	s.EditValue(id, "20")
	if err := s.Rename(id, "Instalación"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if changes != 4 {
		t.Fatalf("expected 4 notifications, got %d", changes)
	}
	nearlyEqual(t, "last invoice", rowValue(t, last, RoleInvoice), 26.64)

	calc, err := s.Calculate()
	if err != nil {
		t.Fatalf("calculate: %v", err)
	}
	if confirmed == nil {
		t.Fatalf("OnCalculate was not called")
	}
	nearlyEqual(t, "total", calc.Total, 186.48)
	if len(calc.Rows) != 5 || calc.Rows[1].Label != "Instalación" {
		t.Fatalf("unexpected valid rows: %+v", calc.Rows)
	}
}

func TestSession_CalculateWithoutValidRows(t *testing.T) {
	called := false
	s := NewSession(0, DefaultPercentages(), Hooks{
		OnCalculate: func(Calculation) { called = true },
	})

	_, err := s.Calculate()

	if !errors.Is(err, ErrNoValidRows) {
		t.Fatalf("expected ErrNoValidRows, got %v", err)
	}
	if called {
		t.Fatalf("OnCalculate must not fire without valid rows")
	}
}

func TestSession_ReopenReseeds(t *testing.T) {
	s := NewSession(100, DefaultPercentages(), Hooks{})
	s.InsertRow()
	s.EditPercentage(2, "50")

	s.Reopen(200)

	if s.Sheet().Len() != 4 {
		t.Fatalf("expected a fresh 4-row sheet, got %d rows", s.Sheet().Len())
	}
	nearlyEqual(t, "profit", rowValue(t, s.Sheet(), RoleProfit), 56)
	nearlyEqual(t, "total", s.Sheet().Total(), 322.56)
}

func TestSession_RenameErrorLeavesSheet(t *testing.T) {
	changes := 0
	s := NewSession(100, DefaultPercentages(), Hooks{OnChange: func(Sheet) { changes++ }})

	if err := s.Rename(1, "Material"); !errors.Is(err, ErrCostLocked) {
		t.Fatalf("expected ErrCostLocked, got %v", err)
	}
	if changes != 1 {
		t.Fatalf("failed rename must not notify, got %d notifications", changes)
	}
}
