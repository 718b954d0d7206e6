package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/config"
	catalogmodel "library-backend/internal/domains/catalog/model"
	catalogrepo "library-backend/internal/domains/catalog/repository"
	loanmodel "library-backend/internal/domains/loan/model"
	loanrepo "library-backend/internal/domains/loan/repository"
	policyrepo "library-backend/internal/domains/policy/repository"
	policyservice "library-backend/internal/domains/policy/service"
	readermodel "library-backend/internal/domains/reader/model"
	readerrepo "library-backend/internal/domains/reader/repository"
	"library-backend/internal/domains/request/model"
	"library-backend/internal/domains/request/repository"
	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/fault"
)

type harness struct {
	svc      ServiceInterface
	requests repository.Repository
	readers  readerrepo.Repository
	catalog  catalogrepo.Repository
	loans    loanrepo.Repository
	staff    authz.Actor
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := config.LendingConfig{
		MaxBooksPerReader:    2,
		LoanPeriodDays:       14,
		MaxRenewals:          1,
		DailyFineRate:        "2.00",
		MaxFine:              "50.00",
		FineSuspendThreshold: "10.00",
		RenewalHoldScope:     "any",
	}

	requests := repository.NewMemoryRepository()
	readers := readerrepo.NewMemoryRepository()
	catalog := catalogrepo.NewMemoryRepository()
	loans := loanrepo.NewMemoryRepository()
	policy := policyservice.NewService(policyrepo.NewMemoryRepository(nil), cfg)

	return &harness{
		svc:      NewService(requests, readers, catalog, loans, policy, nil),
		requests: requests,
		readers:  readers,
		catalog:  catalog,
		loans:    loans,
		staff:    authz.Actor{UserID: uuid.New(), Role: authz.RoleStaff},
	}
}

func (h *harness) newReader(t *testing.T) authz.Actor {
	t.Helper()
	reader := readermodel.Reader{
		ID:             uuid.New(),
		FullName:       "Test Reader",
		Email:          uuid.NewString() + "@example.com",
		Role:           authz.RoleReader,
		MembershipDate: time.Now(),
		Active:         true,
	}
	require.NoError(t, h.readers.Create(context.Background(), &reader))
	return authz.Actor{UserID: reader.ID, Role: authz.RoleReader}
}

func (h *harness) newBook(t *testing.T, copies int) uuid.UUID {
	t.Helper()
	book := catalogmodel.Book{
		ID:     uuid.New(),
		Title:  "Some Book",
		Author: "Some Author",
		ISBN:   uuid.NewString(),
	}
	require.NoError(t, h.catalog.CreateBook(context.Background(), &book))
	if copies > 0 {
		_, err := h.catalog.AddCopies(context.Background(), book.ID, copies)
		require.NoError(t, err)
	}
	return book.ID
}

func (h *harness) submit(t *testing.T, reader authz.Actor, bookID uuid.UUID) *model.BorrowRequest {
	t.Helper()
	req, err := h.svc.Submit(context.Background(), reader, model.SubmitRequest{BookID: bookID.String()})
	require.NoError(t, err)
	return req
}

func TestSubmitCreatesPendingRequest(t *testing.T) {
	h := newHarness(t)
	reader := h.newReader(t)
	bookID := h.newBook(t, 1)

	req := h.submit(t, reader, bookID)
	assert.Equal(t, model.RequestPending, req.State)
	assert.Equal(t, reader.UserID, req.ReaderID)
	assert.Nil(t, req.ResolvedAt)
}

func TestSubmitDuplicatePendingConflicts(t *testing.T) {
	h := newHarness(t)
	reader := h.newReader(t)
	bookID := h.newBook(t, 2)

	h.submit(t, reader, bookID)
	_, err := h.svc.Submit(context.Background(), reader, model.SubmitRequest{BookID: bookID.String()})
	require.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))
}

func TestSubmitUnknownBookNotFound(t *testing.T) {
	h := newHarness(t)
	reader := h.newReader(t)

	_, err := h.svc.Submit(context.Background(), reader, model.SubmitRequest{BookID: uuid.NewString()})
	require.Error(t, err)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestSubmitByInactiveReaderRefused(t *testing.T) {
	h := newHarness(t)
	reader := h.newReader(t)
	bookID := h.newBook(t, 1)
	require.NoError(t, h.readers.SetActive(context.Background(), reader.UserID, false))

	_, err := h.svc.Submit(context.Background(), reader, model.SubmitRequest{BookID: bookID.String()})
	require.Error(t, err)
	assert.Equal(t, fault.KindPolicyViolation, fault.KindOf(err))
}

func loanFilterOpen() loanmodel.ListLoansFilter {
	return loanmodel.ListLoansFilter{OnlyOpen: true, Page: 1, Limit: 20}
}

func approve(h *harness, id uuid.UUID) (*model.BorrowRequest, error) {
	return h.svc.Resolve(context.Background(), h.staff, id, model.ResolveRequest{Decision: string(model.DecisionApprove)})
}

func TestApproveOpensLoanAndClaimsCopy(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reader := h.newReader(t)
	bookID := h.newBook(t, 1)
	req := h.submit(t, reader, bookID)

	resolved, err := approve(h, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, resolved.State)
	require.NotNil(t, resolved.ResolvedAt)
	require.NotNil(t, resolved.ResolvedBy)
	assert.Equal(t, h.staff.UserID, *resolved.ResolvedBy)

	// A loan is open with a two-week term.
	loans, _, err := h.loans.ListByReader(ctx, reader.UserID, loanFilterOpen())
	require.NoError(t, err)
	require.Len(t, loans, 1)
	assert.Equal(t, bookID, loans[0].BookID)
	assert.WithinDuration(t, loans[0].BorrowedAt.Add(14*24*time.Hour), loans[0].DueAt, time.Second)
	assert.Equal(t, 0, loans[0].RenewalCount)

	// The copy is no longer available.
	_, err = h.catalog.FindAvailableCopy(ctx, bookID)
	assert.ErrorIs(t, err, catalogmodel.ErrNoAvailableCopy)

	// The reader's slot is consumed.
	r, err := h.readers.GetByID(ctx, reader.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, r.ActiveLoanCount)
}

func TestApproveAtLoanLimitIsPolicyViolation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reader := h.newReader(t)

	// Fill both slots.
	for i := 0; i < 2; i++ {
		req := h.submit(t, reader, h.newBook(t, 1))
		_, err := approve(h, req.ID)
		require.NoError(t, err)
	}

	bookID := h.newBook(t, 1)
	req := h.submit(t, reader, bookID)
	_, err := approve(h, req.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindPolicyViolation, fault.KindOf(err))

	// Nothing was touched: request still pending, copy still available.
	reloaded, err := h.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, reloaded.State)

	_, err = h.catalog.FindAvailableCopy(ctx, bookID)
	assert.NoError(t, err)
}

func TestApproveBlockedByFineThreshold(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reader := h.newReader(t)
	bookID := h.newBook(t, 1)
	req := h.submit(t, reader, bookID)

	require.NoError(t, h.readers.AddFine(ctx, reader.UserID, decimal.RequireFromString("12.00")))

	_, err := approve(h, req.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindPolicyViolation, fault.KindOf(err))
	assert.ErrorIs(t, err, model.ErrFineThresholdExceeded)
}

func TestApproveAtExactFineThresholdSucceeds(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reader := h.newReader(t)
	bookID := h.newBook(t, 1)
	req := h.submit(t, reader, bookID)

	// Fines equal to the threshold do not suspend borrowing.
	require.NoError(t, h.readers.AddFine(ctx, reader.UserID, decimal.RequireFromString("10.00")))

	resolved, err := approve(h, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestApproved, resolved.State)
}

func TestApproveWithoutAvailableCopyConflictsAndUnwinds(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	reader := h.newReader(t)
	bookID := h.newBook(t, 1)
	req := h.submit(t, reader, bookID)

	// The only copy leaves the shelf before staff gets to the request.
	_, err := h.catalog.ClaimAvailableCopy(ctx, bookID)
	require.NoError(t, err)

	_, err = approve(h, req.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))

	// The reserved slot was released and the request is still pending.
	r, err := h.readers.GetByID(ctx, reader.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, r.ActiveLoanCount)

	reloaded, err := h.requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestPending, reloaded.State)
}

func TestConcurrentApprovalsLastCopyOneWinner(t *testing.T) {
	h := newHarness(t)
	bookID := h.newBook(t, 1)

	first := h.submit(t, h.newReader(t), bookID)
	second := h.submit(t, h.newReader(t), bookID)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, results[i] = approve(h, id)
		}(i, id)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.Equal(t, fault.KindConflict, fault.KindOf(err))
		}
	}
	assert.Equal(t, 1, winners)
}

func TestRejectStoresReason(t *testing.T) {
	h := newHarness(t)
	reader := h.newReader(t)
	req := h.submit(t, reader, h.newBook(t, 1))

	resolved, err := h.svc.Resolve(context.Background(), h.staff, req.ID, model.ResolveRequest{
		Decision: string(model.DecisionReject),
		Reason:   "reference copy only",
	})
	require.NoError(t, err)
	assert.Equal(t, model.RequestRejected, resolved.State)
	assert.Equal(t, "reference copy only", resolved.Reason)
}

func TestResolveRequiresStaff(t *testing.T) {
	h := newHarness(t)
	reader := h.newReader(t)
	req := h.submit(t, reader, h.newBook(t, 1))

	// A reader cannot resolve any request, their own included.
	_, err := h.svc.Resolve(context.Background(), reader, req.ID, model.ResolveRequest{
		Decision: string(model.DecisionApprove),
	})
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))
}

func TestResolveAlreadyResolvedConflicts(t *testing.T) {
	h := newHarness(t)
	req := h.submit(t, h.newReader(t), h.newBook(t, 2))

	_, err := approve(h, req.ID)
	require.NoError(t, err)

	_, err = approve(h, req.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))
}

func TestCancelOwnPendingRequest(t *testing.T) {
	h := newHarness(t)
	reader := h.newReader(t)
	req := h.submit(t, reader, h.newBook(t, 1))

	cancelled, err := h.svc.Cancel(context.Background(), reader, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RequestCancelled, cancelled.State)
}

func TestCancelSomeoneElsesRequestDenied(t *testing.T) {
	h := newHarness(t)
	owner := h.newReader(t)
	intruder := h.newReader(t)
	req := h.submit(t, owner, h.newBook(t, 1))

	_, err := h.svc.Cancel(context.Background(), intruder, req.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))
}

func TestCancelAfterApprovalConflicts(t *testing.T) {
	h := newHarness(t)
	reader := h.newReader(t)
	req := h.submit(t, reader, h.newBook(t, 1))

	_, err := approve(h, req.ID)
	require.NoError(t, err)

	_, err = h.svc.Cancel(context.Background(), reader, req.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))
	assert.ErrorIs(t, err, model.ErrAlreadyResolved)
}

func TestListPendingScopes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	first := h.newReader(t)
	second := h.newReader(t)
	h.submit(t, first, h.newBook(t, 1))
	h.submit(t, second, h.newBook(t, 1))

	mine, err := h.svc.ListPending(ctx, first, model.ScopeMine)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	// Readers cannot see the whole queue.
	_, err = h.svc.ListPending(ctx, first, model.ScopeAll)
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))

	all, err := h.svc.ListPending(ctx, h.staff, model.ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
