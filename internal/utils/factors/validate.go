// Package factors implements the business-rule validation applied to one
// row or submission of DJ 1949 factor values (declaration columns 8-37).
package factors

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// ColumnMin and ColumnMax bound the declaration-form columns carrying
	// factor values.
	ColumnMin = 8
	ColumnMax = 37

	// CreditColumnMin and CreditColumnMax bound the credit-factor columns
	// whose values must sum to at most 1.
	CreditColumnMin = 8
	CreditColumnMax = 19
)

// creditSumLimit is 1 plus an epsilon of 1e-6 to absorb floating-point noise
// in upstream spreadsheets.
var creditSumLimit = decimal.RequireFromString("1.000001")

// Validate checks the factor values of one row against the DJ 1949 business
// rules: credit factors (columns 8-19) must be non-negative and sum to at
// most 1 (epsilon 1e-6), and the per-unit amount must be non-negative.
// It returns nil when the row is valid, otherwise a list of human-readable
// violation descriptions. The caller decides whether a violation aborts a
// single row or a whole batch.
func Validate(values map[int]decimal.Decimal, unitAmount decimal.Decimal) []string {
	var violations []string

	cols := make([]int, 0, len(values))
	for col := range values {
		cols = append(cols, col)
	}
	sort.Ints(cols)

	creditSum := decimal.Zero
	for _, col := range cols {
		v := values[col]
		if col < CreditColumnMin || col > CreditColumnMax {
			continue
		}
		if v.IsNegative() {
			violations = append(violations, fmt.Sprintf("el factor de la columna %d no puede ser negativo (%s)", col, v.String()))
			continue
		}
		creditSum = creditSum.Add(v)
	}

	if creditSum.GreaterThan(creditSumLimit) {
		violations = append(violations, fmt.Sprintf("la suma de factores %d-%d (%s) excede 1", CreditColumnMin, CreditColumnMax, creditSum.StringFixed(4)))
	}

	if unitAmount.IsNegative() {
		violations = append(violations, fmt.Sprintf("el monto unitario no puede ser negativo (%s)", unitAmount.String()))
	}

	return violations
}
