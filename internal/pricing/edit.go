package pricing

import "errors"

var (
	ErrRowNotFound = errors.New("row not found")
	ErrCostLocked  = errors.New("cost row cannot be renamed")
	ErrRoleTaken   = errors.New("label already used by another row")
)

// EditPercentage stores a percentage typed into row id and rederives its value.
// Empty text leaves a blank field and defers the recompute.
func (s Sheet) EditPercentage(id int, raw string) Sheet {
	i := s.indexOf(id)
	if i < 0 || s.rows[i].Role() == RoleCost {
		return s
	}

	out := s.clone()
	r := &out.rows[i]
	if raw == "" {
		r.Percentage = Blank()
		return out
	}

	pct := ParseNum(raw)
	r.Percentage = N(pct)
	r.Source = SourcePercentage

	switch r.Role() {
	case RoleInvoice, RoleCommission:
		// the dependent pass applies the new percentage to the surcharge base
	default:
		r.Value = N(Round2(out.Cost() * (pct / 100)))
	}
	return out.RecalcDependents()
}

// EditValue stores a value typed into row id and rederives its percentage.
// Editing the Cost value rebuilds the whole sheet.
func (s Sheet) EditValue(id int, raw string) Sheet {
	i := s.indexOf(id)
	if i < 0 {
		return s
	}

	out := s.clone()
	r := &out.rows[i]
	if raw == "" {
		r.Value = Blank()
		return out
	}

	val := ParseNum(raw)
	r.Value = N(val)
	r.Source = SourceValue

	switch r.Role() {
	case RoleCost:
		return out.RecalcAll()
	case RoleInvoice, RoleCommission:
		r.Percentage = N(percentOf(val, out.surchargeBase()))
	default:
		r.Percentage = N(percentOf(val, out.Cost()))
	}
	return out.RecalcDependents()
}

// CommitPercentage is EditPercentage applied to the text normalised to two
// decimals, as done when the field loses focus.
func (s Sheet) CommitPercentage(id int, raw string) Sheet {
	return s.EditPercentage(id, FormatFixed2(ParseNum(raw)))
}

// CommitValue is EditValue applied to the text normalised to two decimals.
func (s Sheet) CommitValue(id int, raw string) Sheet {
	return s.EditValue(id, FormatFixed2(ParseNum(raw)))
}

// Rename changes the label of row id. The Cost row keeps its label and a
// reserved label can only be held by one row. Since the label decides the role,
// dependents are recomputed.
func (s Sheet) Rename(id int, label string) (Sheet, error) {
	i := s.indexOf(id)
	if i < 0 {
		return s, ErrRowNotFound
	}
	if s.rows[i].Role() == RoleCost {
		return s, ErrCostLocked
	}
	if role := RoleOf(label); role != RoleCustom {
		if j := s.indexOfRole(role); j >= 0 && j != i {
			return s, ErrRoleTaken
		}
	}

	out := s.clone()
	out.rows[i].Label = label
	return out.RecalcDependents(), nil
}
