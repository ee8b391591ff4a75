// Package pricing implements the price-composition sheet: a cost anchor, a
// markup, surcharges computed on cost-plus-markup, and free line items, where
// every row keeps its percentage and its value consistent with each other.
package pricing

import (
	"math"
	"strings"
)

// Reserved labels. Any other label, including "", is a custom line item.
const (
	LabelCost       = "Cost"
	LabelProfit     = "Profit"
	LabelInvoice    = "Invoice"
	LabelCommission = "Commission"
)

// Role is the part a row plays in the computation, derived from its label.
type Role int

const (
	RoleCustom Role = iota
	RoleCost
	RoleProfit
	RoleInvoice
	RoleCommission
)

func (r Role) String() string {
	switch r {
	case RoleCost:
		return "cost"
	case RoleProfit:
		return "profit"
	case RoleInvoice:
		return "invoice"
	case RoleCommission:
		return "commission"
	default:
		return "custom"
	}
}

// RoleOf maps a label to its role.
func RoleOf(label string) Role {
	switch label {
	case LabelCost:
		return RoleCost
	case LabelProfit:
		return RoleProfit
	case LabelInvoice:
		return RoleInvoice
	case LabelCommission:
		return RoleCommission
	default:
		return RoleCustom
	}
}

// Source names the field of a row that was last written by the user; the other
// field is derived from it.
type Source int

const (
	SourcePercentage Source = iota
	SourceValue
)

// Row is one line of the breakdown.
type Row struct {
	ID         int
	Label      string
	Percentage Num
	Value      Num
	Source     Source
}

// Role returns the role implied by the row label.
func (r Row) Role() Role {
	return RoleOf(r.Label)
}

// Defaults holds the percentages applied to the fixed-role rows when a sheet is
// seeded, and when one of those percentages is left blank.
type Defaults struct {
	ProfitPercent     float64
	InvoicePercent    float64
	CommissionPercent float64
}

// DefaultPercentages returns the stock 28% profit, 18% invoice, 8% commission.
func DefaultPercentages() Defaults {
	return Defaults{
		ProfitPercent:     28,
		InvoicePercent:    18,
		CommissionPercent: 8,
	}
}

func (d Defaults) forRole(role Role) float64 {
	switch role {
	case RoleProfit:
		return d.ProfitPercent
	case RoleInvoice:
		return d.InvoicePercent
	case RoleCommission:
		return d.CommissionPercent
	default:
		return 0
	}
}

// Sheet is an ordered, immutable list of rows. Every operation returns a new
// Sheet and leaves the receiver untouched.
type Sheet struct {
	rows     []Row
	defaults Defaults
	nextID   int
}

// Seed builds the four fixed rows for a product cost and runs a full recompute.
func Seed(cost float64, defaults Defaults) Sheet {
	s := Sheet{
		rows: []Row{
			{ID: 1, Label: LabelCost, Percentage: N(0), Value: N(cost), Source: SourceValue},
			{ID: 2, Label: LabelProfit, Percentage: N(defaults.ProfitPercent)},
			{ID: 3, Label: LabelInvoice, Percentage: N(defaults.InvoicePercent)},
			{ID: 4, Label: LabelCommission, Percentage: N(defaults.CommissionPercent)},
		},
		defaults: defaults,
		nextID:   5,
	}
	return s.RecalcAll()
}

// Rows returns a copy of the rows in display order.
func (s Sheet) Rows() []Row {
	out := make([]Row, len(s.rows))
	copy(out, s.rows)
	return out
}

// Len returns the number of rows.
func (s Sheet) Len() int {
	return len(s.rows)
}

// Defaults returns the percentages the sheet was seeded with.
func (s Sheet) Defaults() Defaults {
	return s.defaults
}

// Row looks a row up by id.
func (s Sheet) Row(id int) (Row, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Row{}, false
	}
	return s.rows[i], true
}

// RowByRole returns the first row holding role.
func (s Sheet) RowByRole(role Role) (Row, bool) {
	i := s.indexOfRole(role)
	if i < 0 {
		return Row{}, false
	}
	return s.rows[i], true
}

// Cost returns the anchor value of the sheet.
func (s Sheet) Cost() float64 {
	return s.valueOf(RoleCost)
}

// Total is the rounded sum of every row value, the Cost row included.
func (s Sheet) Total() float64 {
	sum := 0.0
	for _, r := range s.rows {
		sum += r.Value.Float()
	}
	return Round2(sum)
}

// ValidRows returns the rows reported to the caller on confirmation: a
// non-blank label and a positive value.
func (s Sheet) ValidRows() []Row {
	valid := make([]Row, 0, len(s.rows))
	for _, r := range s.rows {
		if strings.TrimSpace(r.Label) != "" && r.Value.Float() > 0 {
			valid = append(valid, r)
		}
	}
	return valid
}

// Base returns the amount the percentage of row id applies to. Profit and
// custom rows are computed on cost; Invoice and Commission on cost plus profit
// plus every custom row. The Cost row has no base.
func (s Sheet) Base(id int) (float64, bool) {
	r, ok := s.Row(id)
	if !ok {
		return 0, false
	}
	return s.base(r.Role()), true
}

func (s Sheet) base(role Role) float64 {
	switch role {
	case RoleCost:
		return 0
	case RoleInvoice, RoleCommission:
		return s.surchargeBase()
	default:
		return s.Cost()
	}
}

// surchargeBase is 0 once the sum no longer fits in a float64.
func (s Sheet) surchargeBase() float64 {
	b := s.Cost() + s.valueOf(RoleProfit) + s.additionals()
	if math.IsInf(b, 0) || math.IsNaN(b) {
		return 0
	}
	return b
}

// additionals sums custom row values in display order.
func (s Sheet) additionals() float64 {
	sum := 0.0
	for _, r := range s.rows {
		if r.Role() == RoleCustom {
			sum += r.Value.Float()
		}
	}
	return sum
}

func (s Sheet) valueOf(role Role) float64 {
	i := s.indexOfRole(role)
	if i < 0 {
		return 0
	}
	return s.rows[i].Value.Float()
}

func (s Sheet) indexOf(id int) int {
	for i, r := range s.rows {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func (s Sheet) indexOfRole(role Role) int {
	for i, r := range s.rows {
		if r.Role() == role {
			return i
		}
	}
	return -1
}

// clone returns a Sheet with its own row slice, ready to be modified.
func (s Sheet) clone() Sheet {
	s.rows = s.Rows()
	return s
}
