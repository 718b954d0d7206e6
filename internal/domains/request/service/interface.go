package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/request/model"
	"library-backend/internal/shared/authz"
)

// ServiceInterface is the borrow-request workflow. Resolve with an approve
// decision is the orchestration point of the lending engine: it reserves a
// loan slot, claims a copy and opens the loan, unwinding on any failure so a
// failed approval leaves the request Pending and the world unchanged.
type ServiceInterface interface {
	Submit(ctx context.Context, actor authz.Actor, req model.SubmitRequest) (*model.BorrowRequest, error)
	Cancel(ctx context.Context, actor authz.Actor, id uuid.UUID) (*model.BorrowRequest, error)
	Resolve(ctx context.Context, actor authz.Actor, id uuid.UUID, req model.ResolveRequest) (*model.BorrowRequest, error)
	ListPending(ctx context.Context, actor authz.Actor, scope model.ListScope) ([]model.BorrowRequest, error)
	CountPending(ctx context.Context) (int, error)
}
