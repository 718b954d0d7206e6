package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// RenewalHoldScope decides which pending requests block a loan renewal.
type RenewalHoldScope string

const (
	// HoldScopeAny blocks renewal while any reader has a pending request for the book.
	HoldScopeAny RenewalHoldScope = "any"
	// HoldScopeOthers only counts pending requests from readers other than the borrower.
	HoldScopeOthers RenewalHoldScope = "others"
)

func (s RenewalHoldScope) IsValid() bool {
	return s == HoldScopeAny || s == HoldScopeOthers
}

// ErrPolicyNotFound is returned when no policy row has been stored yet
var ErrPolicyNotFound = errors.New("lending policy not found")

// LendingPolicy is the runtime-configurable rule set of the lending engine.
type LendingPolicy struct {
	MaxBooksPerReader    int              `json:"max_books_per_reader" db:"max_books_per_reader"`
	LoanPeriodDays       int              `json:"loan_period_days" db:"loan_period_days"`
	MaxRenewals          int              `json:"max_renewals" db:"max_renewals"`
	DailyFineRate        decimal.Decimal  `json:"daily_fine_rate" db:"daily_fine_rate"`
	MaxFine              decimal.Decimal  `json:"max_fine" db:"max_fine"`
	FineSuspendThreshold decimal.Decimal  `json:"fine_suspend_threshold" db:"fine_suspend_threshold"`
	RenewalHoldScope     RenewalHoldScope `json:"renewal_hold_scope" db:"renewal_hold_scope"`
	UpdatedAt            time.Time        `json:"updated_at" db:"updated_at"`
}

// LoanPeriod returns the loan period as a duration.
func (p LendingPolicy) LoanPeriod() time.Duration {
	return time.Duration(p.LoanPeriodDays) * 24 * time.Hour
}
