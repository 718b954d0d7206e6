package repository

import (
	"context"
	"sync"

	"library-backend/internal/domains/policy/model"
)

type memoryRepository struct {
	mu     sync.RWMutex
	policy *model.LendingPolicy
}

// NewMemoryRepository creates an in-memory policy store, optionally seeded.
func NewMemoryRepository(seed *model.LendingPolicy) Repository {
	r := &memoryRepository{}
	if seed != nil {
		clone := *seed
		r.policy = &clone
	}
	return r
}

func (r *memoryRepository) Get(_ context.Context) (*model.LendingPolicy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.policy == nil {
		return nil, model.ErrPolicyNotFound
	}
	clone := *r.policy
	return &clone, nil
}

func (r *memoryRepository) Save(_ context.Context, policy *model.LendingPolicy) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *policy
	r.policy = &clone
	return nil
}
