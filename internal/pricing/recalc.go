package pricing

// RecalcAll rebuilds every derived field from the Cost value. It runs after the
// sheet is seeded and whenever the Cost value is replaced.
//
// Custom rows are synchronised first because their values feed the base of
// Invoice and Commission. A custom row with a non-zero percentage follows the
// new cost; one whose percentage is zero or blank keeps its value and has the
// percentage derived from it, unless the zero was typed as a percentage.
func (s Sheet) RecalcAll() Sheet {
	out := s.clone()
	cost := out.Cost()

	for i := range out.rows {
		r := &out.rows[i]
		if r.Role() != RoleCustom {
			continue
		}
		p := r.Percentage
		switch {
		case !p.IsBlank() && p.Float() != 0:
			r.Value = N(Round2(cost * (p.Float() / 100)))
		case !p.IsBlank() && r.Source == SourcePercentage:
			r.Value = N(0)
		default:
			r.Percentage = N(percentOf(r.Value.Float(), cost))
		}
	}

	if i := out.indexOfRole(RoleProfit); i >= 0 {
		r := &out.rows[i]
		p := out.percentOrDefault(*r)
		r.Percentage = N(p)
		r.Value = N(Round2(cost * (p / 100)))
	}

	base := out.surchargeBase()
	for _, role := range []Role{RoleInvoice, RoleCommission} {
		i := out.indexOfRole(role)
		if i < 0 {
			continue
		}
		r := &out.rows[i]
		p := out.percentOrDefault(*r)
		r.Percentage = N(p)
		r.Value = N(Round2(base * (p / 100)))
	}

	return out
}

// RecalcDependents refreshes Invoice and Commission, the only rows whose base
// moves when Profit or a custom row changes. A blank percentage is computed
// with its default but stays blank in the row.
func (s Sheet) RecalcDependents() Sheet {
	out := s.clone()
	base := out.surchargeBase()

	for _, role := range []Role{RoleInvoice, RoleCommission} {
		i := out.indexOfRole(role)
		if i < 0 {
			continue
		}
		r := &out.rows[i]
		p := out.percentOrDefault(*r)
		r.Value = N(Round2(base * (p / 100)))
	}

	return out
}

// percentOrDefault reads a fixed-role percentage. Only a blank field falls
// back to the default; an explicit 0 is kept.
func (s Sheet) percentOrDefault(r Row) float64 {
	if r.Percentage.IsBlank() {
		return s.defaults.forRole(r.Role())
	}
	return r.Percentage.Float()
}

// percentOf derives a percentage from a value and its base, 0 when the base is
// not positive.
func percentOf(value, base float64) float64 {
	if base <= 0 {
		return 0
	}
	return Round2((value / base) * 100)
}
