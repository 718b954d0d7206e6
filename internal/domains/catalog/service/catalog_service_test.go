package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/domains/catalog/model"
	"library-backend/internal/domains/catalog/repository"
	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/fault"
)

var (
	staffActor  = authz.Actor{UserID: uuid.New(), Role: authz.RoleStaff}
	readerActor = authz.Actor{UserID: uuid.New(), Role: authz.RoleReader}
)

func newTestService() (ServiceInterface, repository.Repository) {
	repo := repository.NewMemoryRepository()
	return NewService(repo, nil), repo
}

func addBook(t *testing.T, svc ServiceInterface, isbn string, copies int) *model.BookWithAvailability {
	t.Helper()
	book, err := svc.AddBook(context.Background(), staffActor, model.AddBookRequest{
		Title:         "The Go Programming Language",
		Author:        "Donovan and Kernighan",
		ISBN:          isbn,
		Category:      "programming",
		Tags:          []string{"go", "reference"},
		InitialCopies: copies,
	})
	require.NoError(t, err)
	return book
}

func TestAddBookWithInitialCopies(t *testing.T) {
	svc, _ := newTestService()
	book := addBook(t, svc, "9780134190440", 3)

	status, err := svc.ListCopiesStatus(context.Background(), staffActor, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, status.TotalCopies)
	assert.Equal(t, 3, status.AvailableCopies)
	assert.Equal(t, 0, status.OnLoanCopies)
	assert.Equal(t, 0, status.LostCopies)
}

func TestAddBookRequiresStaff(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddBook(context.Background(), readerActor, model.AddBookRequest{
		Title:  "Forbidden",
		Author: "Nobody",
		ISBN:   "9780134190440",
	})
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))
}

func TestAddBookDuplicateISBN(t *testing.T) {
	svc, _ := newTestService()
	addBook(t, svc, "9780134190440", 1)

	_, err := svc.AddBook(context.Background(), staffActor, model.AddBookRequest{
		Title:  "Same Book Again",
		Author: "Someone Else",
		ISBN:   "9780134190440",
	})
	require.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))
}

func TestCopyCountInvariantAcrossCommands(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	book := addBook(t, svc, "9780134190440", 2)

	_, err := svc.AddCopies(ctx, staffActor, book.ID, 3)
	require.NoError(t, err)

	// Put one copy on loan and lose another.
	claimed, err := repo.ClaimAvailableCopy(ctx, book.ID)
	require.NoError(t, err)
	require.NoError(t, repo.TransitionCopy(ctx, claimed.ID, model.CopyOnLoan, model.CopyLost))

	require.NoError(t, svc.RemoveCopies(ctx, staffActor, book.ID, 1))

	status, err := svc.ListCopiesStatus(ctx, staffActor, book.ID)
	require.NoError(t, err)
	assert.Equal(t, status.TotalCopies,
		status.AvailableCopies+status.OnLoanCopies+status.LostCopies)
	assert.Equal(t, 4, status.TotalCopies)
	assert.Equal(t, 1, status.LostCopies)
}

func TestRemoveCopiesInsufficientAvailable(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	book := addBook(t, svc, "9780134190440", 2)

	// One copy goes out on loan; only one remains removable.
	_, err := repo.ClaimAvailableCopy(ctx, book.ID)
	require.NoError(t, err)

	err = svc.RemoveCopies(ctx, staffActor, book.ID, 2)
	require.Error(t, err)
	assert.Equal(t, fault.KindConflict, fault.KindOf(err))
	assert.ErrorIs(t, err, model.ErrInsufficientCopies)

	// The failed removal changed nothing.
	status, err := svc.ListCopiesStatus(ctx, staffActor, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, status.TotalCopies)
}

func TestClaimLastCopyResolvesToOneWinner(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	book := addBook(t, svc, "9780134190440", 1)

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.ClaimAvailableCopy(ctx, book.ID)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, model.ErrNoAvailableCopy)
		}
	}
	assert.Equal(t, 1, winners)
}

func TestTransitionCopyGuardsState(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	book := addBook(t, svc, "9780134190440", 1)

	claimed, err := repo.ClaimAvailableCopy(ctx, book.ID)
	require.NoError(t, err)

	// Transition guarded on a stale from-state fails.
	err = repo.TransitionCopy(ctx, claimed.ID, model.CopyAvailable, model.CopyLost)
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidCopyTransition)

	// Lost is terminal.
	require.NoError(t, repo.TransitionCopy(ctx, claimed.ID, model.CopyOnLoan, model.CopyLost))
	err = repo.TransitionCopy(ctx, claimed.ID, model.CopyLost, model.CopyAvailable)
	require.Error(t, err)
}

func TestListBooksFiltersAndBrowsePermission(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	addBook(t, svc, "9780134190440", 1)

	res, err := svc.ListBooks(ctx, readerActor, model.ListBooksFilter{Author: "kernighan"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalItems)

	res, err = svc.ListBooks(ctx, readerActor, model.ListBooksFilter{Author: "nonexistent"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalItems)
}
