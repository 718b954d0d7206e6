package fine

import (
	"time"

	"github.com/shopspring/decimal"
)

// OverdueDays counts chargeable days between dueAt and asOf. A started day
// counts in full; at or before the due moment nothing is owed.
func OverdueDays(dueAt, asOf time.Time) int {
	if !asOf.After(dueAt) {
		return 0
	}
	hours := asOf.Sub(dueAt).Hours()
	days := int(hours / 24)
	if hours > float64(days)*24 {
		days++
	}
	return days
}

// Evaluate derives the fine owed on a loan as of a moment in time. It is a
// pure function of (dueAt, asOf) and the policy amounts: calling it on read,
// on a sweep and on return always yields the same value for the same inputs,
// so a fine is recomputed, never accumulated.
func Evaluate(dueAt, asOf time.Time, dailyRate, maxFine decimal.Decimal) decimal.Decimal {
	days := OverdueDays(dueAt, asOf)
	if days == 0 {
		return decimal.Zero
	}

	amount := dailyRate.Mul(decimal.NewFromInt(int64(days)))
	if maxFine.IsPositive() && amount.GreaterThan(maxFine) {
		return maxFine
	}
	return amount
}

// Finalize freezes the fine for a closed loan using its return moment.
func Finalize(dueAt, returnedAt time.Time, dailyRate, maxFine decimal.Decimal) decimal.Decimal {
	return Evaluate(dueAt, returnedAt, dailyRate, maxFine)
}
