package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	catalogmodel "library-backend/internal/domains/catalog/model"
	catalogrepo "library-backend/internal/domains/catalog/repository"
	"library-backend/internal/domains/fine"
	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/repository"
	policymodel "library-backend/internal/domains/policy/model"
	policyservice "library-backend/internal/domains/policy/service"
	readerrepo "library-backend/internal/domains/reader/repository"
	requestrepo "library-backend/internal/domains/request/repository"
	"library-backend/internal/infrastructure/notify"
	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/fault"
	"library-backend/pkg/logger"
)

type LoanService struct {
	repo       repository.Repository
	catalog    catalogrepo.Repository
	readers    readerrepo.Repository
	requests   requestrepo.Repository
	policy     policyservice.ServiceInterface
	dispatcher notify.Dispatcher
}

// NewService creates a new loan service. dispatcher may be nil.
func NewService(
	repo repository.Repository,
	catalog catalogrepo.Repository,
	readers readerrepo.Repository,
	requests requestrepo.Repository,
	policy policyservice.ServiceInterface,
	dispatcher notify.Dispatcher,
) ServiceInterface {
	return &LoanService{
		repo:       repo,
		catalog:    catalog,
		readers:    readers,
		requests:   requests,
		policy:     policy,
		dispatcher: dispatcher,
	}
}

func (s *LoanService) GetLoan(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.Loan, error) {
	loan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.classify(err, "failed to load loan")
	}
	if err := s.authorizeView(actor, loan.ReaderID); err != nil {
		return nil, err
	}
	return loan, nil
}

func (s *LoanService) ListReaderLoans(ctx context.Context, actor authz.Actor, readerID uuid.UUID, filter model.ListLoansFilter) (*model.ListLoansResponse, error) {
	if err := s.authorizeView(actor, readerID); err != nil {
		return nil, err
	}
	filter.Normalize()

	loans, total, err := s.repo.ListByReader(ctx, readerID, filter)
	if err != nil {
		return nil, fault.Infrastructure(err, "failed to list loans")
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	return &model.ListLoansResponse{
		Loans: loans,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *LoanService) ListOverdue(ctx context.Context, actor authz.Actor, limit int) ([]model.Loan, error) {
	if err := authz.Authorize(actor, authz.PermProcessReturn); err != nil {
		return nil, err
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	loans, err := s.repo.ListOpenOverdue(ctx, time.Now(), limit)
	if err != nil {
		return nil, fault.Infrastructure(err, "failed to list overdue loans")
	}
	if loans == nil {
		loans = []model.Loan{}
	}
	return loans, nil
}

func (s *LoanService) Return(ctx context.Context, actor authz.Actor, loanID uuid.UUID) (*model.Loan, error) {
	if err := authz.Authorize(actor, authz.PermProcessReturn); err != nil {
		return nil, err
	}

	loan, err := s.repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.classify(err, "failed to load loan")
	}

	return s.close(ctx, loan, false)
}

func (s *LoanService) ReportLost(ctx context.Context, actor authz.Actor, copyID uuid.UUID) (*model.Loan, error) {
	if err := authz.Authorize(actor, authz.PermProcessReturn); err != nil {
		return nil, err
	}

	loan, err := s.repo.GetOpenByCopy(ctx, copyID)
	if err != nil {
		return nil, s.classify(err, "failed to find open loan for copy")
	}

	return s.close(ctx, loan, true)
}

// close stamps the loan, finalizes the fine, releases the copy and the
// reader's slot. The guarded Close is the commit point: a lost race against
// a concurrent close surfaces as a conflict with nothing else touched.
func (s *LoanService) close(ctx context.Context, loan *model.Loan, lost bool) (*model.Loan, error) {
	policy, err := s.policy.Effective(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	finalFine := fine.Finalize(loan.DueAt, now, policy.DailyFineRate, policy.MaxFine)

	if err := s.repo.Close(ctx, loan.ID, now, lost, finalFine); err != nil {
		return nil, s.classify(err, "failed to close loan")
	}

	copyTarget := catalogmodel.CopyAvailable
	if lost {
		copyTarget = catalogmodel.CopyLost
	}
	if err := s.catalog.TransitionCopy(ctx, loan.CopyID, catalogmodel.CopyOnLoan, copyTarget); err != nil {
		logger.Error("Failed to release copy on loan close", err)
	}

	if err := s.readers.ReleaseLoanSlot(ctx, loan.ReaderID); err != nil {
		logger.Error("Failed to release loan slot", err)
	}

	if finalFine.IsPositive() {
		if err := s.readers.AddFine(ctx, loan.ReaderID, finalFine); err != nil {
			logger.Error("Failed to post fine to reader balance", err)
		}
	}

	closed, err := s.repo.GetByID(ctx, loan.ID)
	if err != nil {
		return nil, s.classify(err, "failed to reload loan")
	}

	logger.Info("Loan closed", map[string]interface{}{
		"loan_id":   closed.ID.String(),
		"copy_id":   closed.CopyID.String(),
		"reader_id": closed.ReaderID.String(),
		"lost":      lost,
		"fine":      finalFine.StringFixed(2),
	})

	s.notifyClosed(ctx, closed, lost)
	return closed, nil
}

func (s *LoanService) Renew(ctx context.Context, actor authz.Actor, loanID uuid.UUID) (*model.Loan, error) {
	loan, err := s.repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.classify(err, "failed to load loan")
	}
	if actor.UserID != loan.ReaderID {
		if err := authz.Authorize(actor, authz.PermRenewOnBehalf); err != nil {
			return nil, err
		}
	}

	policy, err := s.policy.Effective(ctx)
	if err != nil {
		return nil, err
	}

	if loan.RenewalCount >= policy.MaxRenewals {
		return nil, fault.Wrap(fault.KindPolicyViolation, model.ErrRenewalLimitReached,
			"loan has used all %d renewals", policy.MaxRenewals)
	}

	exclude := uuid.Nil
	if policy.RenewalHoldScope == policymodel.HoldScopeOthers {
		exclude = loan.ReaderID
	}
	holds, err := s.requests.CountPendingByBook(ctx, loan.BookID, exclude)
	if err != nil {
		return nil, fault.Infrastructure(err, "failed to check pending requests")
	}
	if holds > 0 {
		return nil, fault.Wrap(fault.KindPolicyViolation, model.ErrRenewalHold,
			"%d pending request(s) hold this book", holds)
	}

	if err := s.repo.Renew(ctx, loanID, loan.DueAt.Add(policy.LoanPeriod()), policy.MaxRenewals); err != nil {
		return nil, s.classify(err, "failed to renew loan")
	}

	renewed, err := s.repo.GetByID(ctx, loanID)
	if err != nil {
		return nil, s.classify(err, "failed to reload loan")
	}

	logger.Info("Loan renewed", map[string]interface{}{
		"loan_id":       renewed.ID.String(),
		"renewal_count": renewed.RenewalCount,
		"due_at":        renewed.DueAt.Format(time.RFC3339),
	})

	return renewed, nil
}

func (s *LoanService) CountOpen(ctx context.Context) (int, error) {
	count, err := s.repo.CountOpen(ctx)
	if err != nil {
		return 0, fault.Infrastructure(err, "failed to count open loans")
	}
	return count, nil
}

func (s *LoanService) CountOverdue(ctx context.Context) (int, error) {
	count, err := s.repo.CountOverdue(ctx, time.Now())
	if err != nil {
		return 0, fault.Infrastructure(err, "failed to count overdue loans")
	}
	return count, nil
}

// authorizeView lets a reader see their own loans; anyone else's need staff.
func (s *LoanService) authorizeView(actor authz.Actor, readerID uuid.UUID) error {
	if actor.UserID == readerID {
		return nil
	}
	return authz.Authorize(actor, authz.PermProcessReturn)
}

func (s *LoanService) notifyClosed(ctx context.Context, loan *model.Loan, lost bool) {
	if s.dispatcher == nil {
		return
	}
	body := "Thanks for returning your book."
	if lost {
		body = "Your loan was closed as a lost copy."
	}
	if loan.FineAmount.IsPositive() {
		body = fmt.Sprintf("%s A fine of %s was added to your account.", body, loan.FineAmount.StringFixed(2))
	}
	err := s.dispatcher.Dispatch(ctx, notify.Notification{
		ReaderID: loan.ReaderID,
		Kind:     notify.KindLoanReturned,
		Subject:  "Loan closed",
		Body:     body,
		SentAt:   time.Now(),
	})
	if err != nil {
		logger.Error("Failed to dispatch loan notification", err)
	}
}

func (s *LoanService) classify(err error, msg string) error {
	switch {
	case model.IsNotFoundError(err):
		return fault.Wrap(fault.KindNotFound, err, "%s: %v", msg, err)
	case errors.Is(err, model.ErrAlreadyClosed):
		return fault.Wrap(fault.KindConflict, err, "%s: %v", msg, err)
	case model.IsRenewalDenied(err):
		return fault.Wrap(fault.KindPolicyViolation, err, "%s: %v", msg, err)
	default:
		return fault.Infrastructure(err, "%s", msg)
	}
}
