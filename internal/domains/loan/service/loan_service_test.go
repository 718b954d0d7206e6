package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/config"
	catalogmodel "library-backend/internal/domains/catalog/model"
	catalogrepo "library-backend/internal/domains/catalog/repository"
	"library-backend/internal/domains/loan/model"
	"library-backend/internal/domains/loan/repository"
	policyrepo "library-backend/internal/domains/policy/repository"
	policyservice "library-backend/internal/domains/policy/service"
	readermodel "library-backend/internal/domains/reader/model"
	readerrepo "library-backend/internal/domains/reader/repository"
	requestmodel "library-backend/internal/domains/request/model"
	requestrepo "library-backend/internal/domains/request/repository"
	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/fault"
)

type harness struct {
	svc      ServiceInterface
	loans    repository.Repository
	catalog  catalogrepo.Repository
	readers  readerrepo.Repository
	requests requestrepo.Repository
	staff    authz.Actor
}

func newHarness(t *testing.T, holdScope string) *harness {
	t.Helper()

	cfg := config.LendingConfig{
		MaxBooksPerReader:    5,
		LoanPeriodDays:       14,
		MaxRenewals:          1,
		DailyFineRate:        "2.00",
		MaxFine:              "50.00",
		FineSuspendThreshold: "10.00",
		RenewalHoldScope:     holdScope,
	}

	loans := repository.NewMemoryRepository()
	catalog := catalogrepo.NewMemoryRepository()
	readers := readerrepo.NewMemoryRepository()
	requests := requestrepo.NewMemoryRepository()
	policy := policyservice.NewService(policyrepo.NewMemoryRepository(nil), cfg)

	return &harness{
		svc:      NewService(loans, catalog, readers, requests, policy, nil),
		loans:    loans,
		catalog:  catalog,
		readers:  readers,
		requests: requests,
		staff:    authz.Actor{UserID: uuid.New(), Role: authz.RoleStaff},
	}
}

// openLoan wires a reader, a book with one claimed copy, and an open loan
// due at dueAt.
func (h *harness) openLoan(t *testing.T, dueAt time.Time) (*model.Loan, authz.Actor) {
	t.Helper()
	ctx := context.Background()

	reader := readermodel.Reader{
		ID:             uuid.New(),
		FullName:       "Borrower",
		Email:          uuid.NewString() + "@example.com",
		Role:           authz.RoleReader,
		MembershipDate: time.Now(),
		Active:         true,
	}
	require.NoError(t, h.readers.Create(ctx, &reader))

	book := catalogmodel.Book{
		ID:     uuid.New(),
		Title:  "Borrowed Book",
		Author: "Author",
		ISBN:   uuid.NewString(),
	}
	require.NoError(t, h.catalog.CreateBook(ctx, &book))
	_, err := h.catalog.AddCopies(ctx, book.ID, 1)
	require.NoError(t, err)

	claimed, err := h.catalog.ClaimAvailableCopy(ctx, book.ID)
	require.NoError(t, err)
	require.NoError(t, h.readers.ReserveLoanSlot(ctx, reader.ID, 5))

	loan := model.Loan{
		ID:         uuid.New(),
		CopyID:     claimed.ID,
		BookID:     book.ID,
		ReaderID:   reader.ID,
		BorrowedAt: dueAt.Add(-14 * 24 * time.Hour),
		DueAt:      dueAt,
	}
	require.NoError(t, h.loans.Create(ctx, &loan))

	return &loan, authz.Actor{UserID: reader.ID, Role: authz.RoleReader}
}

func TestReturnClosesLoanAndReleasesEverything(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "any")
	loan, borrower := h.openLoan(t, time.Now().Add(72*time.Hour))

	closed, err := h.svc.Return(ctx, h.staff, loan.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.ReturnedAt)
	assert.False(t, closed.Lost)
	assert.True(t, closed.FineAmount.IsZero())

	// The copy is lendable again.
	storedCopy, err := h.catalog.GetCopy(ctx, loan.CopyID)
	require.NoError(t, err)
	assert.Equal(t, catalogmodel.CopyAvailable, storedCopy.State)

	// The reader's slot came back.
	reader, err := h.readers.GetByID(ctx, borrower.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, reader.ActiveLoanCount)
}

func TestReturnOverdueFinalizesFine(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "any")
	// 3.75 days late rounds up to 4 chargeable days.
	loan, borrower := h.openLoan(t, time.Now().Add(-90*time.Hour))

	closed, err := h.svc.Return(ctx, h.staff, loan.ID)
	require.NoError(t, err)
	assert.True(t, closed.FineAmount.Equal(decimal.RequireFromString("8.00")), "got %s", closed.FineAmount)

	// The fine landed on the reader's balance.
	reader, err := h.readers.GetByID(ctx, borrower.UserID)
	require.NoError(t, err)
	assert.True(t, reader.OutstandingFines.Equal(decimal.RequireFromString("8.00")))
}

func TestDoubleReturnConflicts(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "any")
	loan, _ := h.openLoan(t, time.Now().Add(72*time.Hour))

	_, err := h.svc.Return(ctx, h.staff, loan.ID)
	require.NoError(t, err)

	_, err = h.svc.Return(ctx, h.staff, loan.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))
	assert.ErrorIs(t, err, model.ErrAlreadyClosed)
}

func TestReturnRequiresStaff(t *testing.T) {
	h := newHarness(t, "any")
	loan, borrower := h.openLoan(t, time.Now().Add(72*time.Hour))

	_, err := h.svc.Return(context.Background(), borrower, loan.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))
}

func TestRenewExtendsOnceThenRefuses(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "any")
	due := time.Now().Add(72 * time.Hour)
	loan, borrower := h.openLoan(t, due)

	renewed, err := h.svc.Renew(ctx, borrower, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed.RenewalCount)
	assert.WithinDuration(t, due.Add(14*24*time.Hour), renewed.DueAt, time.Second)

	_, err = h.svc.Renew(ctx, borrower, loan.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindPolicyViolation, fault.KindOf(err))
	assert.ErrorIs(t, err, model.ErrRenewalLimitReached)
}

func TestRenewBlockedByAnyPendingRequest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "any")
	loan, borrower := h.openLoan(t, time.Now().Add(72*time.Hour))

	// The borrower's own pending request counts under the "any" scope.
	require.NoError(t, h.requests.Create(ctx, &requestmodel.BorrowRequest{
		ID:          uuid.New(),
		BookID:      loan.BookID,
		ReaderID:    borrower.UserID,
		State:       requestmodel.RequestPending,
		RequestedAt: time.Now(),
	}))

	_, err := h.svc.Renew(ctx, borrower, loan.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindPolicyViolation, fault.KindOf(err))
	assert.ErrorIs(t, err, model.ErrRenewalHold)
}

func TestRenewHoldScopeOthersIgnoresOwnRequest(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "others")
	loan, borrower := h.openLoan(t, time.Now().Add(72*time.Hour))

	require.NoError(t, h.requests.Create(ctx, &requestmodel.BorrowRequest{
		ID:          uuid.New(),
		BookID:      loan.BookID,
		ReaderID:    borrower.UserID,
		State:       requestmodel.RequestPending,
		RequestedAt: time.Now(),
	}))

	// Own pending request does not block under "others".
	_, err := h.svc.Renew(ctx, borrower, loan.ID)
	require.NoError(t, err)

	// A second loan held while another reader is waiting does block.
	other, borrower2 := h.openLoan(t, time.Now().Add(72*time.Hour))
	require.NoError(t, h.requests.Create(ctx, &requestmodel.BorrowRequest{
		ID:          uuid.New(),
		BookID:      other.BookID,
		ReaderID:    uuid.New(),
		State:       requestmodel.RequestPending,
		RequestedAt: time.Now(),
	}))

	_, err = h.svc.Renew(ctx, borrower2, other.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrRenewalHold)
}

func TestRenewOnBehalfNeedsStaff(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "any")
	loan, _ := h.openLoan(t, time.Now().Add(72*time.Hour))

	stranger := authz.Actor{UserID: uuid.New(), Role: authz.RoleReader}
	_, err := h.svc.Renew(ctx, stranger, loan.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))

	renewed, err := h.svc.Renew(ctx, h.staff, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, renewed.RenewalCount)
}

func TestReportLostRetiresCopyAndClosesLoan(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "any")
	loan, borrower := h.openLoan(t, time.Now().Add(-40*time.Hour))

	closed, err := h.svc.ReportLost(ctx, h.staff, loan.CopyID)
	require.NoError(t, err)
	assert.True(t, closed.Lost)
	require.NotNil(t, closed.ReturnedAt)
	assert.True(t, closed.FineAmount.Equal(decimal.RequireFromString("4.00")), "got %s", closed.FineAmount)

	storedCopy, err := h.catalog.GetCopy(ctx, loan.CopyID)
	require.NoError(t, err)
	assert.Equal(t, catalogmodel.CopyLost, storedCopy.State)

	reader, err := h.readers.GetByID(ctx, borrower.UserID)
	require.NoError(t, err)
	assert.Equal(t, 0, reader.ActiveLoanCount)
}

func TestReportLostWithoutOpenLoan(t *testing.T) {
	h := newHarness(t, "any")

	_, err := h.svc.ReportLost(context.Background(), h.staff, uuid.New())
	require.Error(t, err)
	assert.Equal(t, fault.KindNotFound, fault.KindOf(err))
}

func TestGetLoanOwnership(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "any")
	loan, borrower := h.openLoan(t, time.Now().Add(72*time.Hour))

	_, err := h.svc.GetLoan(ctx, borrower, loan.ID)
	assert.NoError(t, err)

	_, err = h.svc.GetLoan(ctx, h.staff, loan.ID)
	assert.NoError(t, err)

	stranger := authz.Actor{UserID: uuid.New(), Role: authz.RoleReader}
	_, err = h.svc.GetLoan(ctx, stranger, loan.ID)
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))
}

func TestListReaderLoansFilters(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, "any")
	overdue, borrower := h.openLoan(t, time.Now().Add(-24*time.Hour))
	_ = overdue

	res, err := h.svc.ListReaderLoans(ctx, borrower, borrower.UserID, model.ListLoansFilter{OnlyOverdue: true})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)

	// Another reader's history is staff-only.
	stranger := authz.Actor{UserID: uuid.New(), Role: authz.RoleReader}
	_, err = h.svc.ListReaderLoans(ctx, stranger, borrower.UserID, model.ListLoansFilter{})
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))
}
