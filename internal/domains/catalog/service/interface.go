package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
	"library-backend/internal/shared/authz"
)

// ServiceInterface is the catalog store's command/query surface. Every
// operation authorizes the actor before touching state.
type ServiceInterface interface {
	AddBook(ctx context.Context, actor authz.Actor, req model.AddBookRequest) (*model.BookWithAvailability, error)
	AddCopies(ctx context.Context, actor authz.Actor, bookID uuid.UUID, count int) ([]model.Copy, error)
	RemoveCopies(ctx context.Context, actor authz.Actor, bookID uuid.UUID, count int) error

	ListBooks(ctx context.Context, actor authz.Actor, filter model.ListBooksFilter) (*model.ListBooksResponse, error)
	ListCopiesStatus(ctx context.Context, actor authz.Actor, bookID uuid.UUID) (*model.CopyStatusResponse, error)

	CountBooks(ctx context.Context) (int, error)
}
