package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	catalogmodel "library-backend/internal/domains/catalog/model"
	catalogrepo "library-backend/internal/domains/catalog/repository"
	loanmodel "library-backend/internal/domains/loan/model"
	loanrepo "library-backend/internal/domains/loan/repository"
	policyservice "library-backend/internal/domains/policy/service"
	readermodel "library-backend/internal/domains/reader/model"
	readerrepo "library-backend/internal/domains/reader/repository"
	"library-backend/internal/domains/request/model"
	"library-backend/internal/domains/request/repository"
	"library-backend/internal/infrastructure/notify"
	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/fault"
	"library-backend/pkg/logger"
)

type RequestService struct {
	repo       repository.Repository
	readers    readerrepo.Repository
	catalog    catalogrepo.Repository
	loans      loanrepo.Repository
	policy     policyservice.ServiceInterface
	dispatcher notify.Dispatcher
}

// NewService creates a new borrow-request service. dispatcher may be nil.
func NewService(
	repo repository.Repository,
	readers readerrepo.Repository,
	catalog catalogrepo.Repository,
	loans loanrepo.Repository,
	policy policyservice.ServiceInterface,
	dispatcher notify.Dispatcher,
) ServiceInterface {
	return &RequestService{
		repo:       repo,
		readers:    readers,
		catalog:    catalog,
		loans:      loans,
		policy:     policy,
		dispatcher: dispatcher,
	}
}

func (s *RequestService) Submit(ctx context.Context, actor authz.Actor, req model.SubmitRequest) (*model.BorrowRequest, error) {
	if err := authz.Authorize(actor, authz.PermSubmitRequest); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fault.Wrap(fault.KindValidation, err, "invalid request: %v", err)
	}
	bookID, err := uuid.Parse(req.BookID)
	if err != nil {
		return nil, fault.Validation("book id must be a UUID")
	}

	reader, err := s.readers.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, s.classify(err, "failed to load reader")
	}
	if !reader.Active {
		return nil, fault.Wrap(fault.KindPolicyViolation, readermodel.ErrReaderInactive,
			"membership is suspended")
	}

	if _, err := s.catalog.GetBook(ctx, bookID); err != nil {
		return nil, s.classify(err, "failed to load book")
	}

	request := model.BorrowRequest{
		ID:          uuid.New(),
		BookID:      bookID,
		ReaderID:    actor.UserID,
		State:       model.RequestPending,
		RequestedAt: time.Now(),
	}
	if err := s.repo.Create(ctx, &request); err != nil {
		return nil, s.classify(err, "failed to submit request")
	}

	logger.Info("Borrow request submitted", map[string]interface{}{
		"request_id": request.ID.String(),
		"book_id":    bookID.String(),
		"reader_id":  actor.UserID.String(),
	})

	return &request, nil
}

func (s *RequestService) Cancel(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.BorrowRequest, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.classify(err, "failed to load request")
	}
	if err := authz.AuthorizeOwn(actor, authz.PermCancelOwnRequest, request.ReaderID); err != nil {
		return nil, err
	}

	if err := s.repo.Transition(ctx, id, model.RequestCancelled, actor.UserID, ""); err != nil {
		return nil, s.classify(err, "failed to cancel request")
	}

	return s.repo.GetByID(ctx, id)
}

func (s *RequestService) Resolve(ctx context.Context, actor authz.Actor, id uuid.UUID, req model.ResolveRequest) (*model.BorrowRequest, error) {
	if err := authz.Authorize(actor, authz.PermResolveRequest); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fault.Wrap(fault.KindValidation, err, "invalid decision: %v", err)
	}

	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.classify(err, "failed to load request")
	}
	if request.State.IsTerminal() {
		return nil, fault.Wrap(fault.KindConflict, model.ErrAlreadyResolved,
			"request is already %s", request.State)
	}

	switch model.Decision(req.Decision) {
	case model.DecisionApprove:
		if err := s.approve(ctx, actor, request); err != nil {
			return nil, err
		}
	case model.DecisionReject:
		if err := s.repo.Transition(ctx, id, model.RequestRejected, actor.UserID, req.Reason); err != nil {
			return nil, s.classify(err, "failed to reject request")
		}
	}

	resolved, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.classify(err, "failed to reload request")
	}

	s.notifyResolved(ctx, resolved)
	return resolved, nil
}

// approve runs the approval pipeline. Each reserved resource is released when
// a later step fails, so the request stays Pending and nothing leaks.
func (s *RequestService) approve(ctx context.Context, actor authz.Actor, request *model.BorrowRequest) error {
	policy, err := s.policy.Effective(ctx)
	if err != nil {
		return err
	}

	reader, err := s.readers.GetByID(ctx, request.ReaderID)
	if err != nil {
		return s.classify(err, "failed to load reader")
	}
	if !reader.Active {
		return fault.Wrap(fault.KindPolicyViolation, readermodel.ErrReaderInactive,
			"reader membership is suspended")
	}
	// Fines at exactly the threshold still borrow; only exceeding it suspends.
	if policy.FineSuspendThreshold.IsPositive() &&
		reader.OutstandingFines.GreaterThan(policy.FineSuspendThreshold) {
		return fault.Wrap(fault.KindPolicyViolation, model.ErrFineThresholdExceeded,
			"outstanding fines of %s exceed the %s threshold",
			reader.OutstandingFines.StringFixed(2), policy.FineSuspendThreshold.StringFixed(2))
	}

	if err := s.readers.ReserveLoanSlot(ctx, request.ReaderID, policy.MaxBooksPerReader); err != nil {
		return s.classify(err, "failed to reserve loan slot")
	}

	claimed, err := s.catalog.ClaimAvailableCopy(ctx, request.BookID)
	if err != nil {
		s.releaseSlot(ctx, request.ReaderID)
		return s.classify(err, "failed to claim a copy")
	}

	if err := s.repo.Transition(ctx, request.ID, model.RequestApproved, actor.UserID, ""); err != nil {
		s.releaseCopy(ctx, claimed.ID)
		s.releaseSlot(ctx, request.ReaderID)
		return s.classify(err, "failed to approve request")
	}

	now := time.Now()
	loan := loanmodel.Loan{
		ID:         uuid.New(),
		CopyID:     claimed.ID,
		BookID:     request.BookID,
		ReaderID:   request.ReaderID,
		BorrowedAt: now,
		DueAt:      now.Add(policy.LoanPeriod()),
	}
	if err := s.loans.Create(ctx, &loan); err != nil {
		// The request is already Approved; leaving the copy out without a
		// ledger entry would strand it, so unwind what we still can.
		s.releaseCopy(ctx, claimed.ID)
		s.releaseSlot(ctx, request.ReaderID)
		logger.Error("Loan creation failed after approval", err)
		return fault.Infrastructure(err, "failed to open loan")
	}

	logger.Info("Borrow request approved", map[string]interface{}{
		"request_id": request.ID.String(),
		"loan_id":    loan.ID.String(),
		"copy_id":    claimed.ID.String(),
		"reader_id":  request.ReaderID.String(),
		"due_at":     loan.DueAt.Format(time.RFC3339),
	})

	return nil
}

func (s *RequestService) releaseSlot(ctx context.Context, readerID uuid.UUID) {
	if err := s.readers.ReleaseLoanSlot(ctx, readerID); err != nil {
		logger.Error("Failed to release loan slot", err)
	}
}

func (s *RequestService) releaseCopy(ctx context.Context, copyID uuid.UUID) {
	err := s.catalog.TransitionCopy(ctx, copyID, catalogmodel.CopyOnLoan, catalogmodel.CopyAvailable)
	if err != nil {
		logger.Error("Failed to release claimed copy", err)
	}
}

func (s *RequestService) ListPending(ctx context.Context, actor authz.Actor, scope model.ListScope) ([]model.BorrowRequest, error) {
	switch scope {
	case model.ScopeAll:
		if err := authz.Authorize(actor, authz.PermResolveRequest); err != nil {
			return nil, err
		}
		return s.listPending(ctx, uuid.Nil)
	case model.ScopeMine:
		if err := authz.Authorize(actor, authz.PermSubmitRequest); err != nil {
			return nil, err
		}
		return s.listPending(ctx, actor.UserID)
	default:
		return nil, fault.Validation("scope must be mine or all")
	}
}

func (s *RequestService) listPending(ctx context.Context, readerID uuid.UUID) ([]model.BorrowRequest, error) {
	requests, err := s.repo.ListPending(ctx, readerID)
	if err != nil {
		return nil, fault.Infrastructure(err, "failed to list pending requests")
	}
	if requests == nil {
		requests = []model.BorrowRequest{}
	}
	return requests, nil
}

func (s *RequestService) CountPending(ctx context.Context) (int, error) {
	count, err := s.repo.CountPending(ctx)
	if err != nil {
		return 0, fault.Infrastructure(err, "failed to count pending requests")
	}
	return count, nil
}

func (s *RequestService) notifyResolved(ctx context.Context, request *model.BorrowRequest) {
	if s.dispatcher == nil {
		return
	}
	body := fmt.Sprintf("Your borrow request is %s.", request.State)
	if request.Reason != "" {
		body = fmt.Sprintf("%s Reason: %s", body, request.Reason)
	}
	err := s.dispatcher.Dispatch(ctx, notify.Notification{
		ReaderID: request.ReaderID,
		Kind:     notify.KindRequestResolved,
		Subject:  "Borrow request " + string(request.State),
		Body:     body,
		SentAt:   time.Now(),
	})
	if err != nil {
		logger.Error("Failed to dispatch request notification", err)
	}
}

func (s *RequestService) classify(err error, msg string) error {
	switch {
	case model.IsNotFoundError(err) || catalogmodel.IsNotFoundError(err) || readermodel.IsNotFoundError(err):
		return fault.Wrap(fault.KindNotFound, err, "%s: %v", msg, err)
	case errors.Is(err, model.ErrAlreadyResolved) || errors.Is(err, model.ErrDuplicatePending):
		return fault.Wrap(fault.KindConflict, err, "%s: %v", msg, err)
	case errors.Is(err, catalogmodel.ErrNoAvailableCopy):
		return fault.Wrap(fault.KindConflict, err, "no copy of this book is available")
	case errors.Is(err, readermodel.ErrLoanLimitReached) || errors.Is(err, readermodel.ErrReaderInactive):
		return fault.Wrap(fault.KindPolicyViolation, err, "%s: %v", msg, err)
	default:
		return fault.Infrastructure(err, "%s", msg)
	}
}
