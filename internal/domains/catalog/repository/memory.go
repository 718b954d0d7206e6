package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
)

// memoryRepository is an in-memory catalog store used in tests and local
// development without PostgreSQL. One mutex guards all copy mutations, which
// strictly serializes the check-then-act sequences the lending flow needs.
type memoryRepository struct {
	mu     sync.RWMutex
	books  map[uuid.UUID]*model.Book
	copies map[uuid.UUID]*model.Copy
}

// NewMemoryRepository creates an empty in-memory catalog repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		books:  make(map[uuid.UUID]*model.Book),
		copies: make(map[uuid.UUID]*model.Copy),
	}
}

func (r *memoryRepository) CreateBook(_ context.Context, book *model.Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.books {
		if b.ISBN == book.ISBN {
			return model.ErrDuplicateISBN
		}
	}

	clone := *book
	r.books[book.ID] = &clone
	return nil
}

func (r *memoryRepository) GetBook(_ context.Context, id uuid.UUID) (*model.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[id]
	if !ok {
		return nil, model.NewBookNotFoundError(id)
	}
	clone := *book
	return &clone, nil
}

func (r *memoryRepository) ListBooks(_ context.Context, filter model.ListBooksFilter) ([]model.BookWithAvailability, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []model.BookWithAvailability
	for _, b := range r.books {
		if filter.Title != "" && !strings.Contains(strings.ToLower(b.Title), strings.ToLower(filter.Title)) {
			continue
		}
		if filter.Author != "" && !strings.Contains(strings.ToLower(b.Author), strings.ToLower(filter.Author)) {
			continue
		}
		if filter.Category != "" && b.Category != filter.Category {
			continue
		}
		if filter.Tag != "" && !containsTag(b.Tags, filter.Tag) {
			continue
		}

		row := model.BookWithAvailability{Book: *b}
		for _, c := range r.copies {
			if c.BookID != b.ID {
				continue
			}
			switch c.State {
			case model.CopyAvailable:
				row.AvailableCopies++
			case model.CopyOnLoan:
				row.OnLoanCopies++
			case model.CopyLost:
				row.LostCopies++
			}
		}
		matched = append(matched, row)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].Title < matched[j].Title })

	total := len(matched)
	start := (filter.Page - 1) * filter.Limit
	if start >= total {
		return nil, total, nil
	}
	end := start + filter.Limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (r *memoryRepository) CountBooks(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.books), nil
}

func (r *memoryRepository) AddCopies(_ context.Context, bookID uuid.UUID, n int) ([]model.Copy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[bookID]
	if !ok {
		return nil, model.NewBookNotFoundError(bookID)
	}

	now := time.Now()
	copies := make([]model.Copy, 0, n)
	for i := 0; i < n; i++ {
		c := model.Copy{
			ID:        uuid.New(),
			BookID:    bookID,
			State:     model.CopyAvailable,
			CreatedAt: now,
			UpdatedAt: now,
		}
		clone := c
		r.copies[c.ID] = &clone
		copies = append(copies, c)
	}
	book.TotalCopies += n
	book.UpdatedAt = now

	return copies, nil
}

func (r *memoryRepository) RemoveAvailableCopies(_ context.Context, bookID uuid.UUID, n int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, ok := r.books[bookID]
	if !ok {
		return model.NewBookNotFoundError(bookID)
	}

	var available []uuid.UUID
	for id, c := range r.copies {
		if c.BookID == bookID && c.State == model.CopyAvailable {
			available = append(available, id)
		}
	}

	if len(available) < n {
		return model.NewInsufficientCopiesError(n, len(available))
	}

	for _, id := range available[:n] {
		delete(r.copies, id)
	}
	book.TotalCopies -= n
	book.UpdatedAt = time.Now()

	return nil
}

func (r *memoryRepository) GetCopy(_ context.Context, copyID uuid.UUID) (*model.Copy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.copies[copyID]
	if !ok {
		return nil, fmt.Errorf("%w: id=%s", model.ErrCopyNotFound, copyID)
	}
	clone := *c
	return &clone, nil
}

func (r *memoryRepository) ListCopies(_ context.Context, bookID uuid.UUID) ([]model.Copy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var copies []model.Copy
	for _, c := range r.copies {
		if c.BookID == bookID {
			copies = append(copies, *c)
		}
	}
	sort.Slice(copies, func(i, j int) bool {
		return copies[i].ID.String() < copies[j].ID.String()
	})

	return copies, nil
}

func (r *memoryRepository) FindAvailableCopy(_ context.Context, bookID uuid.UUID) (*model.Copy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.copies {
		if c.BookID == bookID && c.State == model.CopyAvailable {
			clone := *c
			return &clone, nil
		}
	}
	return nil, model.ErrNoAvailableCopy
}

func (r *memoryRepository) ClaimAvailableCopy(_ context.Context, bookID uuid.UUID) (*model.Copy, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.copies {
		if c.BookID == bookID && c.State == model.CopyAvailable {
			c.State = model.CopyOnLoan
			c.UpdatedAt = time.Now()
			clone := *c
			return &clone, nil
		}
	}
	return nil, model.ErrNoAvailableCopy
}

func (r *memoryRepository) TransitionCopy(_ context.Context, copyID uuid.UUID, from, to model.CopyState) error {
	if !model.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidCopyTransition, from, to)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.copies[copyID]
	if !ok {
		return fmt.Errorf("%w: id=%s", model.ErrCopyNotFound, copyID)
	}
	if c.State != from {
		return fmt.Errorf("%w: copy %s is no longer %s", model.ErrInvalidCopyTransition, copyID, from)
	}

	c.State = to
	c.UpdatedAt = time.Now()
	return nil
}
