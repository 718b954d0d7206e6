package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
	"library-backend/internal/domains/catalog/repository"
	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/fault"
	"library-backend/pkg/cache"
	"library-backend/pkg/logger"
)

const (
	listCacheTTL     = 2 * time.Minute
	listCachePattern = "catalog:list:*"
)

type CatalogService struct {
	repo  repository.Repository
	cache cache.Cache
}

// NewService creates a new catalog service. cache may be nil (tests, worker).
func NewService(repo repository.Repository, c cache.Cache) ServiceInterface {
	return &CatalogService{
		repo:  repo,
		cache: c,
	}
}

func (s *CatalogService) AddBook(ctx context.Context, actor authz.Actor, req model.AddBookRequest) (*model.BookWithAvailability, error) {
	if err := authz.Authorize(actor, authz.PermManageCatalog); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fault.Wrap(fault.KindValidation, err, "invalid book: %v", err)
	}

	now := time.Now()
	book := model.Book{
		ID:        uuid.New(),
		Title:     req.Title,
		Author:    req.Author,
		ISBN:      req.ISBN,
		Category:  req.Category,
		Tags:      req.Tags,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateBook(ctx, &book); err != nil {
		return nil, s.classify(err, "failed to add book")
	}

	var copies []model.Copy
	if req.InitialCopies > 0 {
		var err error
		copies, err = s.repo.AddCopies(ctx, book.ID, req.InitialCopies)
		if err != nil {
			return nil, s.classify(err, "failed to create initial copies")
		}
		book.TotalCopies = req.InitialCopies
	}

	s.invalidateListings(ctx)

	logger.Info("Book added", map[string]interface{}{
		"book_id": book.ID.String(),
		"isbn":    book.ISBN,
		"copies":  len(copies),
	})

	return &model.BookWithAvailability{Book: book, AvailableCopies: len(copies)}, nil
}

func (s *CatalogService) AddCopies(ctx context.Context, actor authz.Actor, bookID uuid.UUID, count int) ([]model.Copy, error) {
	if err := authz.Authorize(actor, authz.PermManageCatalog); err != nil {
		return nil, err
	}
	if count < 1 {
		return nil, fault.Validation("count must be at least 1")
	}

	copies, err := s.repo.AddCopies(ctx, bookID, count)
	if err != nil {
		return nil, s.classify(err, "failed to add copies")
	}

	s.invalidateListings(ctx)
	return copies, nil
}

func (s *CatalogService) RemoveCopies(ctx context.Context, actor authz.Actor, bookID uuid.UUID, count int) error {
	if err := authz.Authorize(actor, authz.PermManageCatalog); err != nil {
		return err
	}
	if count < 1 {
		return fault.Validation("count must be at least 1")
	}

	if err := s.repo.RemoveAvailableCopies(ctx, bookID, count); err != nil {
		return s.classify(err, "failed to remove copies")
	}

	s.invalidateListings(ctx)
	return nil
}

func (s *CatalogService) ListBooks(ctx context.Context, actor authz.Actor, filter model.ListBooksFilter) (*model.ListBooksResponse, error) {
	if err := authz.Authorize(actor, authz.PermBrowseCatalog); err != nil {
		return nil, err
	}
	filter.Normalize()

	cacheKey := fmt.Sprintf("catalog:list:%s:%s:%s:%s:%d:%d",
		filter.Title, filter.Author, filter.Category, filter.Tag, filter.Page, filter.Limit)

	if s.cache != nil {
		var cached model.ListBooksResponse
		if found, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
			logger.Error("Catalog cache read failed", err)
		} else if found {
			return &cached, nil
		}
	}

	books, total, err := s.repo.ListBooks(ctx, filter)
	if err != nil {
		return nil, s.classify(err, "failed to list books")
	}

	resp := &model.ListBooksResponse{
		Items:      books,
		TotalItems: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, resp, listCacheTTL); err != nil {
			logger.Error("Catalog cache write failed", err)
		}
	}

	return resp, nil
}

func (s *CatalogService) ListCopiesStatus(ctx context.Context, actor authz.Actor, bookID uuid.UUID) (*model.CopyStatusResponse, error) {
	if err := authz.Authorize(actor, authz.PermBrowseCatalog); err != nil {
		return nil, err
	}

	book, err := s.repo.GetBook(ctx, bookID)
	if err != nil {
		return nil, s.classify(err, "failed to get book")
	}

	copies, err := s.repo.ListCopies(ctx, bookID)
	if err != nil {
		return nil, s.classify(err, "failed to list copies")
	}

	resp := &model.CopyStatusResponse{
		BookID:      bookID.String(),
		TotalCopies: book.TotalCopies,
		Copies:      copies,
	}
	for _, c := range copies {
		switch c.State {
		case model.CopyAvailable:
			resp.AvailableCopies++
		case model.CopyOnLoan:
			resp.OnLoanCopies++
		case model.CopyLost:
			resp.LostCopies++
		}
	}

	return resp, nil
}

func (s *CatalogService) CountBooks(ctx context.Context) (int, error) {
	count, err := s.repo.CountBooks(ctx)
	if err != nil {
		return 0, fault.Infrastructure(err, "failed to count books")
	}
	return count, nil
}

func (s *CatalogService) invalidateListings(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, listCachePattern); err != nil {
		logger.Error("Catalog cache invalidation failed", err)
	}
}

// classify maps repository sentinels onto the failure taxonomy.
func (s *CatalogService) classify(err error, msg string) error {
	switch {
	case model.IsNotFoundError(err):
		return fault.Wrap(fault.KindNotFound, err, "%v", err)
	case model.IsConflictError(err):
		return fault.Wrap(fault.KindConflict, err, "%v", err)
	case fault.KindOf(err) != fault.KindInfrastructure:
		return err
	default:
		return fault.Infrastructure(err, "%s", msg)
	}
}
