package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"library-backend/internal/domains/reader/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL reader repository
func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{
		pool: pool,
	}
}

const readerColumns = `
	id, full_name, email, role, membership_date,
	active_loan_count, outstanding_fines, active, created_at, updated_at
`

func scanReader(row pgx.Row) (*model.Reader, error) {
	var r model.Reader
	err := row.Scan(
		&r.ID,
		&r.FullName,
		&r.Email,
		&r.Role,
		&r.MembershipDate,
		&r.ActiveLoanCount,
		&r.OutstandingFines,
		&r.Active,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *postgresRepository) Create(ctx context.Context, reader *model.Reader) error {
	query := `
		INSERT INTO readers (` + readerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.pool.Exec(ctx, query,
		reader.ID,
		reader.FullName,
		reader.Email,
		reader.Role,
		reader.MembershipDate,
		reader.ActiveLoanCount,
		reader.OutstandingFines,
		reader.Active,
		reader.CreatedAt,
		reader.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert reader: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Reader, error) {
	query := "SELECT " + readerColumns + " FROM readers WHERE id = $1"

	reader, err := scanReader(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewReaderNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get reader: %w", err)
	}

	return reader, nil
}

func (r *postgresRepository) List(ctx context.Context, page, limit int) ([]model.Reader, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM readers").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count readers: %w", err)
	}

	query := "SELECT " + readerColumns + " FROM readers ORDER BY membership_date LIMIT $1 OFFSET $2"
	rows, err := r.pool.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list readers: %w", err)
	}
	defer rows.Close()

	var readers []model.Reader
	for rows.Next() {
		reader, err := scanReader(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan reader: %w", err)
		}
		readers = append(readers, *reader)
	}

	return readers, total, rows.Err()
}

func (r *postgresRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE readers SET role = $1, updated_at = $2 WHERE id = $3",
		role, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewReaderNotFoundError(id)
	}
	return nil
}

func (r *postgresRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		"UPDATE readers SET active = $1, updated_at = $2 WHERE id = $3",
		active, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewReaderNotFoundError(id)
	}
	return nil
}

func (r *postgresRepository) ReserveLoanSlot(ctx context.Context, readerID uuid.UUID, max int) error {
	// Conditional increment keeps the limit check and the increment in one
	// atomic statement.
	tag, err := r.pool.Exec(ctx, `
		UPDATE readers
		SET active_loan_count = active_loan_count + 1, updated_at = $1
		WHERE id = $2 AND active AND active_loan_count < $3
	`, time.Now(), readerID, max)
	if err != nil {
		return fmt.Errorf("failed to reserve loan slot: %w", err)
	}

	if tag.RowsAffected() == 0 {
		reader, getErr := r.GetByID(ctx, readerID)
		if getErr != nil {
			return getErr
		}
		if !reader.Active {
			return model.ErrReaderInactive
		}
		return model.NewLoanLimitError(max)
	}

	return nil
}

func (r *postgresRepository) ReleaseLoanSlot(ctx context.Context, readerID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE readers
		SET active_loan_count = GREATEST(active_loan_count - 1, 0), updated_at = $1
		WHERE id = $2
	`, time.Now(), readerID)
	if err != nil {
		return fmt.Errorf("failed to release loan slot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewReaderNotFoundError(readerID)
	}
	return nil
}

func (r *postgresRepository) AddFine(ctx context.Context, readerID uuid.UUID, amount decimal.Decimal) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE readers
		SET outstanding_fines = outstanding_fines + $1, updated_at = $2
		WHERE id = $3
	`, amount, time.Now(), readerID)
	if err != nil {
		return fmt.Errorf("failed to add fine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.NewReaderNotFoundError(readerID)
	}
	return nil
}
