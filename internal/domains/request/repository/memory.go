package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/request/model"
)

// memoryRepository keeps borrow requests in process. A single mutex
// serializes every check-then-act, matching the row-level guards the
// postgres implementation gets from conditional UPDATEs.
type memoryRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*model.BorrowRequest
}

// NewMemoryRepository creates an in-memory borrow-request repository
func NewMemoryRepository() Repository {
	return &memoryRepository{
		requests: make(map[uuid.UUID]*model.BorrowRequest),
	}
}

func cloneRequest(r *model.BorrowRequest) *model.BorrowRequest {
	clone := *r
	if r.ResolvedAt != nil {
		at := *r.ResolvedAt
		clone.ResolvedAt = &at
	}
	if r.ResolvedBy != nil {
		by := *r.ResolvedBy
		clone.ResolvedBy = &by
	}
	return &clone
}

func (r *memoryRepository) Create(_ context.Context, request *model.BorrowRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.requests {
		if existing.ReaderID == request.ReaderID &&
			existing.BookID == request.BookID &&
			existing.State == model.RequestPending {
			return model.ErrDuplicatePending
		}
	}

	r.requests[request.ID] = cloneRequest(request)
	return nil
}

func (r *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*model.BorrowRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	request, ok := r.requests[id]
	if !ok {
		return nil, model.NewRequestNotFoundError(id)
	}
	return cloneRequest(request), nil
}

func (r *memoryRepository) ListPending(_ context.Context, readerID uuid.UUID) ([]model.BorrowRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var pending []model.BorrowRequest
	for _, request := range r.requests {
		if request.State != model.RequestPending {
			continue
		}
		if readerID != uuid.Nil && request.ReaderID != readerID {
			continue
		}
		pending = append(pending, *cloneRequest(request))
	}

	sort.Slice(pending, func(i, j int) bool {
		return pending[i].RequestedAt.Before(pending[j].RequestedAt)
	})
	return pending, nil
}

func (r *memoryRepository) CountPending(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, request := range r.requests {
		if request.State == model.RequestPending {
			count++
		}
	}
	return count, nil
}

func (r *memoryRepository) HasPendingForBook(_ context.Context, readerID, bookID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, request := range r.requests {
		if request.ReaderID == readerID &&
			request.BookID == bookID &&
			request.State == model.RequestPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepository) CountPendingByBook(_ context.Context, bookID, excludeReader uuid.UUID) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, request := range r.requests {
		if request.BookID != bookID || request.State != model.RequestPending {
			continue
		}
		if excludeReader != uuid.Nil && request.ReaderID == excludeReader {
			continue
		}
		count++
	}
	return count, nil
}

func (r *memoryRepository) Transition(_ context.Context, id uuid.UUID, to model.RequestState, resolvedBy uuid.UUID, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	request, ok := r.requests[id]
	if !ok {
		return model.NewRequestNotFoundError(id)
	}
	if request.State != model.RequestPending {
		return fmt.Errorf("%w: id=%s", model.ErrAlreadyResolved, id)
	}

	now := time.Now()
	request.State = to
	request.Reason = reason
	request.ResolvedAt = &now
	request.ResolvedBy = &resolvedBy
	return nil
}
