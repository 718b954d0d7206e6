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

	"library-backend/internal/domains/request/model"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL borrow-request repository
func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{
		pool: pool,
	}
}

const requestColumns = "id, book_id, reader_id, state, reason, requested_at, resolved_at, resolved_by"

func scanRequest(row pgx.Row) (*model.BorrowRequest, error) {
	var req model.BorrowRequest
	err := row.Scan(
		&req.ID,
		&req.BookID,
		&req.ReaderID,
		&req.State,
		&req.Reason,
		&req.RequestedAt,
		&req.ResolvedAt,
		&req.ResolvedBy,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *postgresRepository) Create(ctx context.Context, request *model.BorrowRequest) error {
	query := `
		INSERT INTO borrow_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.pool.Exec(ctx, query,
		request.ID,
		request.BookID,
		request.ReaderID,
		request.State,
		request.Reason,
		request.RequestedAt,
		request.ResolvedAt,
		request.ResolvedBy,
	)

	if err != nil {
		// Partial unique index on (reader_id, book_id) WHERE state = 'pending'
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return model.ErrDuplicatePending
		}
		return fmt.Errorf("failed to insert borrow request: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BorrowRequest, error) {
	query := "SELECT " + requestColumns + " FROM borrow_requests WHERE id = $1"

	request, err := scanRequest(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewRequestNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get borrow request: %w", err)
	}

	return request, nil
}

func (r *postgresRepository) ListPending(ctx context.Context, readerID uuid.UUID) ([]model.BorrowRequest, error) {
	query := "SELECT " + requestColumns + " FROM borrow_requests WHERE state = 'pending'"
	args := []interface{}{}
	if readerID != uuid.Nil {
		query += " AND reader_id = $1"
		args = append(args, readerID)
	}
	query += " ORDER BY requested_at"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []model.BorrowRequest
	for rows.Next() {
		request, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan borrow request: %w", err)
		}
		requests = append(requests, *request)
	}

	return requests, rows.Err()
}

func (r *postgresRepository) CountPending(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM borrow_requests WHERE state = 'pending'").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) HasPendingForBook(ctx context.Context, readerID, bookID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM borrow_requests
			WHERE reader_id = $1 AND book_id = $2 AND state = 'pending'
		)
	`, readerID, bookID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending request: %w", err)
	}
	return exists, nil
}

func (r *postgresRepository) CountPendingByBook(ctx context.Context, bookID, excludeReader uuid.UUID) (int, error) {
	query := "SELECT COUNT(*) FROM borrow_requests WHERE book_id = $1 AND state = 'pending'"
	args := []interface{}{bookID}
	if excludeReader != uuid.Nil {
		query += " AND reader_id <> $2"
		args = append(args, excludeReader)
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pending requests for book: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) Transition(ctx context.Context, id uuid.UUID, to model.RequestState, resolvedBy uuid.UUID, reason string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE borrow_requests
		SET state = $1, reason = $2, resolved_at = $3, resolved_by = $4
		WHERE id = $5 AND state = 'pending'
	`, to, reason, time.Now(), resolvedBy, id)
	if err != nil {
		return fmt.Errorf("failed to transition borrow request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: id=%s", model.ErrAlreadyResolved, id)
	}

	return nil
}
