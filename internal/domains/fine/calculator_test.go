package fine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOverdueDays(t *testing.T) {
	due := date(2024, time.January, 1)

	assert.Equal(t, 0, OverdueDays(due, due))
	assert.Equal(t, 0, OverdueDays(due, due.Add(-time.Hour)))
	assert.Equal(t, 1, OverdueDays(due, due.Add(time.Minute)))
	assert.Equal(t, 1, OverdueDays(due, due.Add(24*time.Hour)))
	assert.Equal(t, 2, OverdueDays(due, due.Add(25*time.Hour)))
	assert.Equal(t, 4, OverdueDays(due, date(2024, time.January, 5)))
}

func TestEvaluateFourDaysLate(t *testing.T) {
	due := date(2024, time.January, 1)
	returned := date(2024, time.January, 5)
	rate := decimal.RequireFromString("2.00")
	maxFine := decimal.RequireFromString("50.00")

	fine := Evaluate(due, returned, rate, maxFine)
	assert.True(t, fine.Equal(decimal.RequireFromString("8.00")), "got %s", fine)
}

func TestEvaluateIsPureNotAccumulating(t *testing.T) {
	due := date(2024, time.January, 1)
	returned := date(2024, time.January, 5)
	rate := decimal.RequireFromString("2.00")
	maxFine := decimal.RequireFromString("50.00")

	// Intermediate evaluations at earlier moments must not change the final
	// amount computed at the return moment.
	for day := 2; day <= 4; day++ {
		Evaluate(due, date(2024, time.January, day), rate, maxFine)
	}

	final := Finalize(due, returned, rate, maxFine)
	assert.True(t, final.Equal(decimal.RequireFromString("8.00")), "got %s", final)

	// Repeated finalization yields the same amount.
	again := Finalize(due, returned, rate, maxFine)
	assert.True(t, final.Equal(again))
}

func TestEvaluateCappedAtMax(t *testing.T) {
	due := date(2024, time.January, 1)
	asOf := date(2024, time.March, 1)
	rate := decimal.RequireFromString("2.00")
	maxFine := decimal.RequireFromString("50.00")

	fine := Evaluate(due, asOf, rate, maxFine)
	assert.True(t, fine.Equal(maxFine), "got %s", fine)
}

func TestEvaluateNoCapWhenMaxIsZero(t *testing.T) {
	due := date(2024, time.January, 1)
	asOf := date(2024, time.January, 31)
	rate := decimal.RequireFromString("2.00")

	fine := Evaluate(due, asOf, rate, decimal.Zero)
	assert.True(t, fine.Equal(decimal.RequireFromString("60.00")), "got %s", fine)
}

func TestEvaluateZeroBeforeDue(t *testing.T) {
	due := date(2024, time.January, 10)
	rate := decimal.RequireFromString("2.00")
	maxFine := decimal.RequireFromString("50.00")

	assert.True(t, Evaluate(due, date(2024, time.January, 5), rate, maxFine).IsZero())
	assert.True(t, Evaluate(due, due, rate, maxFine).IsZero())
}
