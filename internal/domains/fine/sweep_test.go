package fine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/config"
	loanmodel "library-backend/internal/domains/loan/model"
	loanrepo "library-backend/internal/domains/loan/repository"
	policyrepo "library-backend/internal/domains/policy/repository"
	policyservice "library-backend/internal/domains/policy/service"
)

func testLendingConfig() config.LendingConfig {
	return config.LendingConfig{
		MaxBooksPerReader:    5,
		LoanPeriodDays:       14,
		MaxRenewals:          1,
		DailyFineRate:        "2.00",
		MaxFine:              "50.00",
		FineSuspendThreshold: "10.00",
		RenewalHoldScope:     "any",
	}
}

func openLoan(t *testing.T, loans loanrepo.Repository, dueAt time.Time) loanmodel.Loan {
	t.Helper()
	loan := loanmodel.Loan{
		ID:         uuid.New(),
		CopyID:     uuid.New(),
		BookID:     uuid.New(),
		ReaderID:   uuid.New(),
		BorrowedAt: dueAt.Add(-14 * 24 * time.Hour),
		DueAt:      dueAt,
	}
	require.NoError(t, loans.Create(context.Background(), &loan))
	return loan
}

func TestSweepStoresAccruedFines(t *testing.T) {
	ctx := context.Background()
	loans := loanrepo.NewMemoryRepository()
	policy := policyservice.NewService(policyrepo.NewMemoryRepository(nil), testLendingConfig())
	sweeper := NewSweeper(loans, policy, nil, 100)

	now := time.Now()
	overdue := openLoan(t, loans, now.Add(-72*time.Hour))
	onTime := openLoan(t, loans, now.Add(72*time.Hour))

	updated, err := sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	got, err := loans.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	assert.True(t, got.FineAmount.Equal(decimal.RequireFromString("6.00")), "got %s", got.FineAmount)

	clean, err := loans.GetByID(ctx, onTime.ID)
	require.NoError(t, err)
	assert.True(t, clean.FineAmount.IsZero())
}

func TestSweepIsIdempotent(t *testing.T) {
	ctx := context.Background()
	loans := loanrepo.NewMemoryRepository()
	policy := policyservice.NewService(policyrepo.NewMemoryRepository(nil), testLendingConfig())
	sweeper := NewSweeper(loans, policy, nil, 100)

	now := time.Now()
	loan := openLoan(t, loans, now.Add(-48*time.Hour))

	_, err := sweeper.Sweep(ctx, now)
	require.NoError(t, err)

	first, err := loans.GetByID(ctx, loan.ID)
	require.NoError(t, err)

	// A second pass at the same moment recomputes the same amount and
	// touches nothing.
	updated, err := sweeper.Sweep(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)

	second, err := loans.GetByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, first.FineAmount.Equal(second.FineAmount))
}

func TestRemindDueSoonSelectsWindow(t *testing.T) {
	ctx := context.Background()
	loans := loanrepo.NewMemoryRepository()
	policy := policyservice.NewService(policyrepo.NewMemoryRepository(nil), testLendingConfig())
	sweeper := NewSweeper(loans, policy, nil, 100)

	now := time.Now()
	openLoan(t, loans, now.Add(24*time.Hour))  // inside window
	openLoan(t, loans, now.Add(96*time.Hour))  // beyond window
	openLoan(t, loans, now.Add(-24*time.Hour)) // already overdue

	notified, err := sweeper.RemindDueSoon(ctx, now, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)
}
