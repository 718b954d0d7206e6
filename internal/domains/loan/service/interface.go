package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/loan/model"
	"library-backend/internal/shared/authz"
)

// ServiceInterface is the loan ledger. Return and ReportLost close a loan and
// push the copy and the reader's loan slot back; Renew extends an open loan
// subject to the renewal policy.
type ServiceInterface interface {
	GetLoan(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Loan, error)
	ListReaderLoans(ctx context.Context, actor authz.Actor, readerID uuid.UUID, filter model.ListLoansFilter) (*model.ListLoansResponse, error)
	ListOverdue(ctx context.Context, actor authz.Actor, limit int) ([]model.Loan, error)

	// Return closes the loan, finalizes its fine and releases the copy.
	Return(ctx context.Context, actor authz.Actor, loanID uuid.UUID) (*model.Loan, error)

	// Renew extends the due date by one loan period when the renewal count is
	// below max and no pending request holds the book.
	Renew(ctx context.Context, actor authz.Actor, loanID uuid.UUID) (*model.Loan, error)

	// ReportLost closes the open loan on the copy as a loss and retires the copy.
	ReportLost(ctx context.Context, actor authz.Actor, copyID uuid.UUID) (*model.Loan, error)

	CountOpen(ctx context.Context) (int, error)
	CountOverdue(ctx context.Context) (int, error)
}
