package service

import (
	"context"
	"errors"
	"time"

	"library-backend/internal/config"
	"library-backend/internal/domains/policy/model"
	"library-backend/internal/domains/policy/repository"
	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/fault"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/logger"
)

// ServiceInterface exposes the effective lending policy. Effective reads the
// stored policy, falling back to the configured defaults before an admin has
// ever saved one.
type ServiceInterface interface {
	Effective(ctx context.Context) (*model.LendingPolicy, error)
	Get(ctx context.Context, actor authz.Actor) (*model.LendingPolicy, error)
	Update(ctx context.Context, actor authz.Actor, req model.UpdatePolicyRequest) (*model.LendingPolicy, error)
}

type PolicyService struct {
	repo     repository.Repository
	defaults model.LendingPolicy
}

// NewService creates a new policy service with startup defaults from config.
func NewService(repo repository.Repository, cfg config.LendingConfig) ServiceInterface {
	return &PolicyService{
		repo: repo,
		defaults: model.LendingPolicy{
			MaxBooksPerReader:    cfg.MaxBooksPerReader,
			LoanPeriodDays:       cfg.LoanPeriodDays,
			MaxRenewals:          cfg.MaxRenewals,
			DailyFineRate:        utils.ParseDecimal(cfg.DailyFineRate),
			MaxFine:              utils.ParseDecimal(cfg.MaxFine),
			FineSuspendThreshold: utils.ParseDecimal(cfg.FineSuspendThreshold),
			RenewalHoldScope:     model.RenewalHoldScope(cfg.RenewalHoldScope),
		},
	}
}

func (s *PolicyService) Effective(ctx context.Context) (*model.LendingPolicy, error) {
	policy, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, model.ErrPolicyNotFound) {
			defaults := s.defaults
			return &defaults, nil
		}
		return nil, fault.Infrastructure(err, "failed to load lending policy")
	}
	return policy, nil
}

func (s *PolicyService) Get(ctx context.Context, actor authz.Actor) (*model.LendingPolicy, error) {
	if err := authz.Authorize(actor, authz.PermConfigurePolicy); err != nil {
		return nil, err
	}
	return s.Effective(ctx)
}

func (s *PolicyService) Update(ctx context.Context, actor authz.Actor, req model.UpdatePolicyRequest) (*model.LendingPolicy, error) {
	if err := authz.Authorize(actor, authz.PermConfigurePolicy); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fault.Wrap(fault.KindValidation, err, "invalid policy: %v", err)
	}

	policy := model.LendingPolicy{
		MaxBooksPerReader:    req.MaxBooksPerReader,
		LoanPeriodDays:       req.LoanPeriodDays,
		MaxRenewals:          *req.MaxRenewals,
		DailyFineRate:        utils.ParseDecimal(req.DailyFineRate),
		MaxFine:              utils.ParseDecimal(req.MaxFine),
		FineSuspendThreshold: utils.ParseDecimal(req.FineSuspendThreshold),
		RenewalHoldScope:     model.RenewalHoldScope(req.RenewalHoldScope),
		UpdatedAt:            time.Now(),
	}

	if err := s.repo.Save(ctx, &policy); err != nil {
		return nil, fault.Infrastructure(err, "failed to save lending policy")
	}

	logger.Info("Lending policy updated", map[string]interface{}{
		"max_books_per_reader": policy.MaxBooksPerReader,
		"loan_period_days":     policy.LoanPeriodDays,
		"max_renewals":         policy.MaxRenewals,
	})

	return &policy, nil
}
