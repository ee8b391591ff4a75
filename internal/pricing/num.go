package pricing

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// epsilon is added before rounding so values sitting just under a .xx5 boundary
// because of binary representation still round up.
const epsilon = 0x1p-52

// Num is a breakdown field: either a number or the blank sentinel left behind
// while the user is still typing. The zero value is the number 0.
type Num struct {
	v     float64
	blank bool
}

// N wraps a number.
func N(v float64) Num {
	return Num{v: v}
}

// Blank returns the empty sentinel.
func Blank() Num {
	return Num{blank: true}
}

// IsBlank reports whether the field holds the empty sentinel.
func (n Num) IsBlank() bool {
	return n.blank
}

// Float returns the numeric value; blank reads as 0.
func (n Num) Float() float64 {
	if n.blank {
		return 0
	}
	return n.v
}

func (n Num) String() string {
	if n.blank {
		return ""
	}
	return strconv.FormatFloat(n.v, 'f', -1, 64)
}

// MarshalJSON encodes blank as "" and numbers as JSON numbers.
func (n Num) MarshalJSON() ([]byte, error) {
	if n.blank {
		return []byte(`""`), nil
	}
	return json.Marshal(n.v)
}

// ParseNum turns user-entered text into a number. It accepts a decimal comma,
// ignores leading zeros and trailing garbage, and returns 0 for anything that
// does not start with a finite number.
func ParseNum(raw string) float64 {
	s := strings.Replace(raw, ",", ".", 1)
	s = stripLeadingZeros(s)

	n, ok := parseFloatPrefix(s)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// Round2 rounds to cents, ties toward +Inf. Non-finite input rounds to 0;
// magnitudes from 2^52 up are already whole and pass through unchanged.
func Round2(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	if math.Abs(n) >= 1<<52 {
		return n
	}
	return roundHalfUp((n+epsilon)*100) / 100
}

// FormatFixed2 renders n with exactly two decimals, rounding the exact binary
// value half away from zero. 1.005 is stored as 1.00499... and renders "1.00".
func FormatFixed2(n float64) string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		n = 0
	}
	exact, err := decimal.NewFromString(strconv.FormatFloat(n, 'f', 1074, 64))
	if err != nil {
		return strconv.FormatFloat(n, 'f', 2, 64)
	}
	return exact.StringFixed(2)
}

func roundHalfUp(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return x
	}
	f := math.Floor(x)
	if x-f >= 0.5 {
		return f + 1
	}
	return f
}

// stripLeadingZeros drops a run of zeros that is followed by another digit,
// keeping one zero in front of a decimal point: "0150" -> "150", "00.5" -> "0.5".
func stripLeadingZeros(s string) string {
	i := 0
	for i < len(s) && s[i] == '0' {
		i++
	}
	if i == 0 {
		return s
	}
	if i < len(s) && isDigit(s[i]) {
		return s[i:]
	}
	if i > 1 {
		return s[i-1:]
	}
	return s
}

// parseFloatPrefix parses the longest leading decimal literal of s.
func parseFloatPrefix(s string) (float64, bool) {
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})

	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits > 0 || frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0, false
	}

	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			i = k
		}
	}

	n, err := strconv.ParseFloat(s[:i], 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return n, true
		}
		return 0, false
	}
	return n, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
