package localeformat

import "github.com/shopspring/decimal"

// DefaultTolerance is the absolute difference under which two amounts match.
const DefaultTolerance = 0.01

// SameDate reports whether a and b name the same calendar date once
// normalized. Two unparseable values compare equal.
func SameDate(a, b string) bool {
	return NormalizeDate(a) == NormalizeDate(b)
}

// SameNumber reports whether a and b parse to numbers closer than tol.
func SameNumber(a, b string, tol float64) bool {
	da, ok := ParseAmount(a)
	if !ok {
		return false
	}
	db, ok := ParseAmount(b)
	if !ok {
		return false
	}
	return da.Sub(db).Abs().LessThan(decimal.NewFromFloat(tol))
}
