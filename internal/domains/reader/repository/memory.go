package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/reader/model"
	"library-backend/internal/shared/authz"
)

// memoryRepository is the in-memory reader store for tests and local runs.
// The mutex makes slot reservation a true check-then-act region.
type memoryRepository struct {
	mu      sync.RWMutex
	readers map[uuid.UUID]*model.Reader
}

// NewMemoryRepository creates an empty in-memory reader repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		readers: make(map[uuid.UUID]*model.Reader),
	}
}

func (r *memoryRepository) Create(_ context.Context, reader *model.Reader) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.readers {
		if existing.Email == reader.Email {
			return model.ErrDuplicateEmail
		}
	}

	clone := *reader
	r.readers[reader.ID] = &clone
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.Reader, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reader, ok := r.readers[id]
	if !ok {
		return nil, model.NewReaderNotFoundError(id)
	}
	clone := *reader
	return &clone, nil
}

func (r *memoryRepository) List(_ context.Context, page, limit int) ([]model.Reader, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]model.Reader, 0, len(r.readers))
	for _, reader := range r.readers {
		all = append(all, *reader)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].MembershipDate.Before(all[j].MembershipDate)
	})

	total := len(all)
	start := (page - 1) * limit
	if start >= total {
		return nil, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	return all[start:end], total, nil
}

func (r *memoryRepository) UpdateRole(_ context.Context, id uuid.UUID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reader, ok := r.readers[id]
	if !ok {
		return model.NewReaderNotFoundError(id)
	}

	reader.Role = authz.Role(role)
	reader.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRepository) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reader, ok := r.readers[id]
	if !ok {
		return model.NewReaderNotFoundError(id)
	}

	reader.Active = active
	reader.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRepository) ReserveLoanSlot(_ context.Context, readerID uuid.UUID, max int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reader, ok := r.readers[readerID]
	if !ok {
		return model.NewReaderNotFoundError(readerID)
	}
	if !reader.Active {
		return model.ErrReaderInactive
	}
	if reader.ActiveLoanCount >= max {
		return model.NewLoanLimitError(max)
	}

	reader.ActiveLoanCount++
	reader.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRepository) ReleaseLoanSlot(_ context.Context, readerID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reader, ok := r.readers[readerID]
	if !ok {
		return model.NewReaderNotFoundError(readerID)
	}
	if reader.ActiveLoanCount > 0 {
		reader.ActiveLoanCount--
	}
	reader.UpdatedAt = time.Now()
	return nil
}

func (r *memoryRepository) AddFine(_ context.Context, readerID uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reader, ok := r.readers[readerID]
	if !ok {
		return model.NewReaderNotFoundError(readerID)
	}

	reader.OutstandingFines = reader.OutstandingFines.Add(amount)
	reader.UpdatedAt = time.Now()
	return nil
}
