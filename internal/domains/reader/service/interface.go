package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/reader/model"
	"library-backend/internal/shared/authz"
)

// ServiceInterface covers system-user management (admin only) plus the reads
// other domains need.
type ServiceInterface interface {
	CreateReader(ctx context.Context, actor authz.Actor, req model.CreateReaderRequest) (*model.Reader, error)
	ListReaders(ctx context.Context, actor authz.Actor, req model.ListReadersRequest) ([]model.Reader, int, error)
	UpdateRole(ctx context.Context, actor authz.Actor, readerID uuid.UUID, req model.UpdateRoleRequest) error
	SetActive(ctx context.Context, actor authz.Actor, readerID uuid.UUID, active bool) error

	GetReader(ctx context.Context, readerID uuid.UUID) (*model.Reader, error)
}
