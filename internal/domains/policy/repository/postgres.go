package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/policy/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL policy repository
func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{
		pool: pool,
	}
}

// The policy lives in a single keyed row so updates are atomic.
const policyRowID = 1

func (r *postgresRepository) Get(ctx context.Context) (*model.LendingPolicy, error) {
	query := `
		SELECT max_books_per_reader, loan_period_days, max_renewals,
		       daily_fine_rate, max_fine, fine_suspend_threshold,
		       renewal_hold_scope, updated_at
		FROM lending_policy
		WHERE id = $1
	`

	var p model.LendingPolicy
	err := r.pool.QueryRow(ctx, query, policyRowID).Scan(
		&p.MaxBooksPerReader,
		&p.LoanPeriodDays,
		&p.MaxRenewals,
		&p.DailyFineRate,
		&p.MaxFine,
		&p.FineSuspendThreshold,
		&p.RenewalHoldScope,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrPolicyNotFound
		}
		return nil, fmt.Errorf("failed to get lending policy: %w", err)
	}

	return &p, nil
}

func (r *postgresRepository) Save(ctx context.Context, policy *model.LendingPolicy) error {
	query := `
		INSERT INTO lending_policy (
			id, max_books_per_reader, loan_period_days, max_renewals,
			daily_fine_rate, max_fine, fine_suspend_threshold,
			renewal_hold_scope, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			max_books_per_reader   = EXCLUDED.max_books_per_reader,
			loan_period_days       = EXCLUDED.loan_period_days,
			max_renewals           = EXCLUDED.max_renewals,
			daily_fine_rate        = EXCLUDED.daily_fine_rate,
			max_fine               = EXCLUDED.max_fine,
			fine_suspend_threshold = EXCLUDED.fine_suspend_threshold,
			renewal_hold_scope     = EXCLUDED.renewal_hold_scope,
			updated_at             = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		policyRowID,
		policy.MaxBooksPerReader,
		policy.LoanPeriodDays,
		policy.MaxRenewals,
		policy.DailyFineRate,
		policy.MaxFine,
		policy.FineSuspendThreshold,
		policy.RenewalHoldScope,
		policy.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save lending policy: %w", err)
	}

	return nil
}
