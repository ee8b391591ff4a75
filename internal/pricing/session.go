package pricing

import "errors"

// ErrNoValidRows is returned by Calculate when no row has both a label and a
// positive value. Hosts show it as a hint; the sheet is left as is.
var ErrNoValidRows = errors.New("add rows with a name and a value before calculating")

// Calculation is what a confirmed sheet reports to its caller.
type Calculation struct {
	Total float64
	Rows  []Row
}

// Hooks are the callbacks a host registers on a Session. Both are optional.
type Hooks struct {
	OnChange    func(Sheet)
	OnCalculate func(Calculation)
}

// Session owns the sheet of one open dialog. It is not safe for concurrent use.
type Session struct {
	sheet    Sheet
	defaults Defaults
	hooks    Hooks
}

// NewSession seeds a sheet for cost and notifies OnChange.
func NewSession(cost float64, defaults Defaults, hooks Hooks) *Session {
	s := &Session{defaults: defaults, hooks: hooks}
	s.Reopen(cost)
	return s
}

// Sheet returns the current sheet.
func (s *Session) Sheet() Sheet {
	return s.sheet
}

// Reopen discards the current sheet and seeds a new one for cost.
func (s *Session) Reopen(cost float64) {
	s.apply(Seed(cost, s.defaults))
}

func (s *Session) EditPercentage(id int, raw string) {
	s.apply(s.sheet.EditPercentage(id, raw))
}

func (s *Session) EditValue(id int, raw string) {
	s.apply(s.sheet.EditValue(id, raw))
}

func (s *Session) CommitPercentage(id int, raw string) {
	s.apply(s.sheet.CommitPercentage(id, raw))
}

func (s *Session) CommitValue(id int, raw string) {
	s.apply(s.sheet.CommitValue(id, raw))
}

func (s *Session) Rename(id int, label string) error {
	next, err := s.sheet.Rename(id, label)
	if err != nil {
		return err
	}
	s.apply(next)
	return nil
}

// InsertRow adds a custom row and returns its id.
func (s *Session) InsertRow() int {
	next, id := s.sheet.InsertCustomRow()
	s.apply(next)
	return id
}

func (s *Session) RemoveRow(id int) {
	s.apply(s.sheet.RemoveRow(id))
}

// Calculate confirms the sheet: the total of every row and the itemised valid
// rows are handed to OnCalculate.
func (s *Session) Calculate() (Calculation, error) {
	valid := s.sheet.ValidRows()
	if len(valid) == 0 {
		return Calculation{}, ErrNoValidRows
	}

	calc := Calculation{Total: s.sheet.Total(), Rows: valid}
	if s.hooks.OnCalculate != nil {
		s.hooks.OnCalculate(calc)
	}
	return calc, nil
}

func (s *Session) apply(next Sheet) {
	s.sheet = next
	if s.hooks.OnChange != nil {
		s.hooks.OnChange(next)
	}
}
