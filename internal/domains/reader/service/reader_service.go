package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/reader/model"
	"library-backend/internal/domains/reader/repository"
	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/fault"
	"library-backend/pkg/logger"
)

type ReaderService struct {
	repo repository.Repository
}

// NewService creates a new reader service
func NewService(repo repository.Repository) ServiceInterface {
	return &ReaderService{
		repo: repo,
	}
}

func (s *ReaderService) CreateReader(ctx context.Context, actor authz.Actor, req model.CreateReaderRequest) (*model.Reader, error) {
	if err := authz.Authorize(actor, authz.PermManageSystemUsers); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fault.Wrap(fault.KindValidation, err, "invalid reader: %v", err)
	}

	role := authz.Role(req.Role)
	if req.Role == "" {
		role = authz.RoleReader
	}

	now := time.Now()
	reader := model.Reader{
		ID:               uuid.New(),
		FullName:         req.FullName,
		Email:            req.Email,
		Role:             role,
		MembershipDate:   now,
		OutstandingFines: decimal.Zero,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, &reader); err != nil {
		return nil, s.classify(err, "failed to create reader")
	}

	logger.Info("Reader created", map[string]interface{}{
		"reader_id": reader.ID.String(),
		"role":      string(reader.Role),
	})

	return &reader, nil
}

func (s *ReaderService) ListReaders(ctx context.Context, actor authz.Actor, req model.ListReadersRequest) ([]model.Reader, int, error) {
	if err := authz.Authorize(actor, authz.PermManageSystemUsers); err != nil {
		return nil, 0, err
	}
	req.Normalize()

	readers, total, err := s.repo.List(ctx, req.Page, req.Limit)
	if err != nil {
		return nil, 0, s.classify(err, "failed to list readers")
	}

	return readers, total, nil
}

func (s *ReaderService) UpdateRole(ctx context.Context, actor authz.Actor, readerID uuid.UUID, req model.UpdateRoleRequest) error {
	if err := authz.Authorize(actor, authz.PermManageSystemUsers); err != nil {
		return err
	}
	if err := req.Validate(); err != nil {
		return fault.Wrap(fault.KindValidation, err, "invalid role update: %v", err)
	}

	if err := s.repo.UpdateRole(ctx, readerID, req.Role); err != nil {
		return s.classify(err, "failed to update role")
	}

	logger.Info("Reader role updated", map[string]interface{}{
		"reader_id": readerID.String(),
		"role":      req.Role,
	})

	return nil
}

func (s *ReaderService) SetActive(ctx context.Context, actor authz.Actor, readerID uuid.UUID, active bool) error {
	if err := authz.Authorize(actor, authz.PermManageSystemUsers); err != nil {
		return err
	}

	if err := s.repo.SetActive(ctx, readerID, active); err != nil {
		return s.classify(err, "failed to update reader status")
	}

	return nil
}

func (s *ReaderService) GetReader(ctx context.Context, readerID uuid.UUID) (*model.Reader, error) {
	reader, err := s.repo.GetByID(ctx, readerID)
	if err != nil {
		return nil, s.classify(err, "failed to get reader")
	}
	return reader, nil
}

func (s *ReaderService) classify(err error, msg string) error {
	switch {
	case model.IsNotFoundError(err):
		return fault.Wrap(fault.KindNotFound, err, "%v", err)
	case model.IsPolicyError(err):
		return fault.Wrap(fault.KindPolicyViolation, err, "%v", err)
	case errors.Is(err, model.ErrDuplicateEmail):
		return fault.Wrap(fault.KindConflict, err, "%v", err)
	case fault.KindOf(err) != fault.KindInfrastructure:
		return err
	default:
		return fault.Infrastructure(err, "%s", msg)
	}
}
