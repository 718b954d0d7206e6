package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/loan/model"
)

// memoryRepository keeps the loan ledger in process. One mutex serializes
// every guarded mutation, mirroring the conditional UPDATEs of the postgres
// implementation.
type memoryRepository struct {
	mu    sync.RWMutex
	loans map[uuid.UUID]*model.Loan
}

// NewMemoryRepository creates an in-memory loan repository
func NewMemoryRepository() Repository {
	return &memoryRepository{
		loans: make(map[uuid.UUID]*model.Loan),
	}
}

func cloneLoan(l *model.Loan) *model.Loan {
	clone := *l
	if l.ReturnedAt != nil {
		at := *l.ReturnedAt
		clone.ReturnedAt = &at
	}
	return &clone
}

func (r *memoryRepository) Create(_ context.Context, loan *model.Loan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	loan.CreatedAt = now
	loan.UpdatedAt = now
	r.loans[loan.ID] = cloneLoan(loan)
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	loan, ok := r.loans[id]
	if !ok {
		return nil, model.NewLoanNotFoundError(id)
	}
	return cloneLoan(loan), nil
}

func (r *memoryRepository) ListByReader(_ context.Context, readerID uuid.UUID, filter model.ListLoansFilter) ([]model.Loan, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	var matched []model.Loan
	for _, loan := range r.loans {
		if loan.ReaderID != readerID {
			continue
		}
		if filter.OnlyOpen && !loan.IsOpen() {
			continue
		}
		if filter.OnlyOverdue && !loan.IsOverdue(now) {
			continue
		}
		matched = append(matched, *cloneLoan(loan))
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].BorrowedAt.After(matched[j].BorrowedAt)
	})

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return []model.Loan{}, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *memoryRepository) GetOpenByCopy(_ context.Context, copyID uuid.UUID) (*model.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, loan := range r.loans {
		if loan.CopyID == copyID && loan.IsOpen() {
			return cloneLoan(loan), nil
		}
	}
	return nil, fmt.Errorf("%w: copy=%s", model.ErrNoOpenLoanForCopy, copyID)
}

func (r *memoryRepository) Close(_ context.Context, id uuid.UUID, returnedAt time.Time, lost bool, fine decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loan, ok := r.loans[id]
	if !ok {
		return model.NewLoanNotFoundError(id)
	}
	if !loan.IsOpen() {
		return fmt.Errorf("%w: id=%s", model.ErrAlreadyClosed, id)
	}

	at := returnedAt
	loan.ReturnedAt = &at
	loan.Lost = lost
	loan.FineAmount = fine
	loan.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRepository) Renew(_ context.Context, id uuid.UUID, newDueAt time.Time, maxRenewals int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loan, ok := r.loans[id]
	if !ok {
		return model.NewLoanNotFoundError(id)
	}
	if !loan.IsOpen() {
		return fmt.Errorf("%w: id=%s", model.ErrAlreadyClosed, id)
	}
	if loan.RenewalCount >= maxRenewals {
		return fmt.Errorf("%w: id=%s", model.ErrRenewalLimitReached, id)
	}

	loan.DueAt = newDueAt
	loan.RenewalCount++
	loan.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRepository) UpdateFineSnapshot(_ context.Context, id uuid.UUID, fine decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	loan, ok := r.loans[id]
	if !ok || !loan.IsOpen() {
		return nil
	}
	loan.FineAmount = fine
	loan.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRepository) ListOpenOverdue(_ context.Context, asOf time.Time, limit int) ([]model.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var overdue []model.Loan
	for _, loan := range r.loans {
		if loan.IsOpen() && loan.DueAt.Before(asOf) {
			overdue = append(overdue, *cloneLoan(loan))
		}
	}
	sort.Slice(overdue, func(i, j int) bool {
		return overdue[i].DueAt.Before(overdue[j].DueAt)
	})
	if limit > 0 && len(overdue) > limit {
		overdue = overdue[:limit]
	}
	return overdue, nil
}

func (r *memoryRepository) ListOpenDueBetween(_ context.Context, from, to time.Time) ([]model.Loan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var due []model.Loan
	for _, loan := range r.loans {
		if loan.IsOpen() && !loan.DueAt.Before(from) && loan.DueAt.Before(to) {
			due = append(due, *cloneLoan(loan))
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].DueAt.Before(due[j].DueAt)
	})
	return due, nil
}

func (r *memoryRepository) CountOpen(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, loan := range r.loans {
		if loan.IsOpen() {
			count++
		}
	}
	return count, nil
}

func (r *memoryRepository) CountOverdue(_ context.Context, asOf time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, loan := range r.loans {
		if loan.IsOverdue(asOf) {
			count++
		}
	}
	return count, nil
}
