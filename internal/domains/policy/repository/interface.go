package repository

import (
	"context"

	"library-backend/internal/domains/policy/model"
)

// Repository stores the single effective lending policy.
type Repository interface {
	Get(ctx context.Context) (*model.LendingPolicy, error)
	Save(ctx context.Context, policy *model.LendingPolicy) error
}
