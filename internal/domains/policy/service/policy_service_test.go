package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-backend/internal/config"
	"library-backend/internal/domains/policy/model"
	"library-backend/internal/domains/policy/repository"
	"library-backend/internal/shared/authz"
	"library-backend/internal/shared/fault"
)

func defaultsConfig() config.LendingConfig {
	return config.LendingConfig{
		MaxBooksPerReader:    5,
		LoanPeriodDays:       14,
		MaxRenewals:          1,
		DailyFineRate:        "2.00",
		MaxFine:              "50.00",
		FineSuspendThreshold: "10.00",
		RenewalHoldScope:     "any",
	}
}

func intPtr(v int) *int { return &v }

func TestEffectiveFallsBackToDefaults(t *testing.T) {
	svc := NewService(repository.NewMemoryRepository(nil), defaultsConfig())

	policy, err := svc.Effective(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, policy.MaxBooksPerReader)
	assert.Equal(t, 14, policy.LoanPeriodDays)
	assert.Equal(t, 1, policy.MaxRenewals)
	assert.True(t, policy.DailyFineRate.Equal(decimal.RequireFromString("2.00")))
	assert.Equal(t, model.HoldScopeAny, policy.RenewalHoldScope)
}

func TestUpdateReplacesEffectivePolicy(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewMemoryRepository(nil), defaultsConfig())
	admin := authz.Actor{UserID: uuid.New(), Role: authz.RoleAdmin}

	updated, err := svc.Update(ctx, admin, model.UpdatePolicyRequest{
		MaxBooksPerReader:    3,
		LoanPeriodDays:       21,
		MaxRenewals:          intPtr(2),
		DailyFineRate:        "1.50",
		MaxFine:              "30.00",
		FineSuspendThreshold: "15.00",
		RenewalHoldScope:     "others",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.MaxBooksPerReader)

	effective, err := svc.Effective(ctx)
	require.NoError(t, err)
	assert.Equal(t, 21, effective.LoanPeriodDays)
	assert.Equal(t, 2, effective.MaxRenewals)
	assert.Equal(t, model.HoldScopeOthers, effective.RenewalHoldScope)
	assert.True(t, effective.DailyFineRate.Equal(decimal.RequireFromString("1.50")))
}

func TestUpdateRequiresAdmin(t *testing.T) {
	svc := NewService(repository.NewMemoryRepository(nil), defaultsConfig())
	staff := authz.Actor{UserID: uuid.New(), Role: authz.RoleStaff}

	_, err := svc.Update(context.Background(), staff, model.UpdatePolicyRequest{})
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))

	_, err = svc.Get(context.Background(), staff)
	require.Error(t, err)
	assert.Equal(t, fault.KindPermissionDenied, fault.KindOf(err))
}

func TestUpdateRejectsMalformedAmounts(t *testing.T) {
	svc := NewService(repository.NewMemoryRepository(nil), defaultsConfig())
	admin := authz.Actor{UserID: uuid.New(), Role: authz.RoleAdmin}

	_, err := svc.Update(context.Background(), admin, model.UpdatePolicyRequest{
		MaxBooksPerReader:    3,
		LoanPeriodDays:       21,
		MaxRenewals:          intPtr(1),
		DailyFineRate:        "two dollars",
		MaxFine:              "30.00",
		FineSuspendThreshold: "15.00",
		RenewalHoldScope:     "any",
	})
	require.Error(t, err)
	assert.Equal(t, fault.KindValidation, fault.KindOf(err))
}
