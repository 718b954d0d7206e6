package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/shared/authz"
)

// Reader is a system user. ActiveLoanCount and OutstandingFines are owned by
// the lending flow and mutated only through repository primitives; the fields
// here are snapshots for display.
type Reader struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	FullName         string          `json:"full_name" db:"full_name"`
	Email            string          `json:"email" db:"email"`
	Role             authz.Role      `json:"role" db:"role"`
	MembershipDate   time.Time       `json:"membership_date" db:"membership_date"`
	ActiveLoanCount  int             `json:"active_loan_count" db:"active_loan_count"`
	OutstandingFines decimal.Decimal `json:"outstanding_fines" db:"outstanding_fines"`
	Active           bool            `json:"active" db:"active"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}
