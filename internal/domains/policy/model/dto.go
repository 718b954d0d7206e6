package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/shopspring/decimal"
)

// UpdatePolicyRequest replaces the lending policy. Amounts arrive as decimal
// strings so no float rounding sneaks in.
type UpdatePolicyRequest struct {
	MaxBooksPerReader    int    `json:"max_books_per_reader" binding:"required"`
	LoanPeriodDays       int    `json:"loan_period_days" binding:"required"`
	MaxRenewals          *int   `json:"max_renewals" binding:"required"`
	DailyFineRate        string `json:"daily_fine_rate" binding:"required"`
	MaxFine              string `json:"max_fine" binding:"required"`
	FineSuspendThreshold string `json:"fine_suspend_threshold" binding:"required"`
	RenewalHoldScope     string `json:"renewal_hold_scope" binding:"required"`
}

func (r UpdatePolicyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MaxBooksPerReader,
			validation.Required.Error("max books per reader is required"),
			validation.Min(1), validation.Max(100),
		),
		validation.Field(&r.LoanPeriodDays,
			validation.Required.Error("loan period is required"),
			validation.Min(1), validation.Max(365),
		),
		validation.Field(&r.MaxRenewals,
			validation.NotNil.Error("max renewals is required"),
			validation.Min(0), validation.Max(10),
		),
		validation.Field(&r.DailyFineRate, validation.Required, validation.By(validDecimal)),
		validation.Field(&r.MaxFine, validation.Required, validation.By(validDecimal)),
		validation.Field(&r.FineSuspendThreshold, validation.Required, validation.By(validDecimal)),
		validation.Field(&r.RenewalHoldScope,
			validation.Required,
			validation.In(string(HoldScopeAny), string(HoldScopeOthers)).
				Error("renewal hold scope must be 'any' or 'others'"),
		),
	)
}

func validDecimal(value interface{}) error {
	s, _ := value.(string)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return validation.NewError("validation_decimal", "must be a decimal amount")
	}
	if d.IsNegative() {
		return validation.NewError("validation_decimal_negative", "must not be negative")
	}
	return nil
}
