package pricing

// InsertCustomRow adds an empty line item right before Profit, or right after
// Cost when there is no Profit row, and returns the new row id.
func (s Sheet) InsertCustomRow() (Sheet, int) {
	out := s.clone()
	id := out.allocID()
	row := Row{ID: id, Percentage: N(0), Value: N(0), Source: SourceValue}

	at := len(out.rows)
	if i := out.indexOfRole(RoleProfit); i >= 0 {
		at = i
	} else if i := out.indexOfRole(RoleCost); i >= 0 {
		at = i + 1
	}

	out.rows = append(out.rows, Row{})
	copy(out.rows[at+1:], out.rows[at:])
	out.rows[at] = row
	return out.RecalcDependents(), id
}

// RemoveRow deletes row id. The Cost row cannot be removed; asking for it, or
// for an unknown id, returns the sheet unchanged.
func (s Sheet) RemoveRow(id int) Sheet {
	i := s.indexOf(id)
	if i < 0 || s.rows[i].Role() == RoleCost {
		return s
	}

	out := Sheet{
		rows:     make([]Row, 0, len(s.rows)-1),
		defaults: s.defaults,
		nextID:   s.nextID,
	}
	out.rows = append(out.rows, s.rows[:i]...)
	out.rows = append(out.rows, s.rows[i+1:]...)
	return out.RecalcDependents()
}

// allocID hands out ids that are never reused within the sheet.
func (s *Sheet) allocID() int {
	if s.nextID <= 0 {
		for _, r := range s.rows {
			if r.ID >= s.nextID {
				s.nextID = r.ID + 1
			}
		}
		if s.nextID <= 0 {
			s.nextID = 1
		}
	}
	id := s.nextID
	s.nextID++
	return id
}
