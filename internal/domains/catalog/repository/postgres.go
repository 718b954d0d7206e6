package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"library-backend/internal/domains/catalog/model"
	"library-backend/pkg/database"
)

// postgresRepository implements Repository on PostgreSQL. Per-book
// serialization of copy mutations relies on row locks: claims and removals
// lock the candidate copy rows inside a transaction.
type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new PostgreSQL catalog repository
func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{
		pool: pool,
	}
}

func (r *postgresRepository) CreateBook(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (id, title, author, isbn, category, tags, total_copies, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.pool.Exec(ctx, query,
		book.ID,
		book.Title,
		book.Author,
		book.ISBN,
		book.Category,
		pq.Array(book.Tags),
		book.TotalCopies,
		book.CreatedAt,
		book.UpdatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return model.ErrDuplicateISBN
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `
		SELECT id, title, author, isbn, category, tags, total_copies, created_at, updated_at
		FROM books
		WHERE id = $1
	`

	var book model.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.Category,
		pq.Array(&book.Tags),
		&book.TotalCopies,
		&book.CreatedAt,
		&book.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.NewBookNotFoundError(id)
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return &book, nil
}

func (r *postgresRepository) ListBooks(ctx context.Context, filter model.ListBooksFilter) ([]model.BookWithAvailability, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filter.Title != "" {
		conditions = append(conditions, fmt.Sprintf("b.title ILIKE $%d", argPos))
		args = append(args, "%"+filter.Title+"%")
		argPos++
	}
	if filter.Author != "" {
		conditions = append(conditions, fmt.Sprintf("b.author ILIKE $%d", argPos))
		args = append(args, "%"+filter.Author+"%")
		argPos++
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("b.category = $%d", argPos))
		args = append(args, filter.Category)
		argPos++
	}
	if filter.Tag != "" {
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(b.tags)", argPos))
		args = append(args, filter.Tag)
		argPos++
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM books b WHERE %s", where)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count books: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT
			b.id, b.title, b.author, b.isbn, b.category, b.tags, b.total_copies,
			b.created_at, b.updated_at,
			COUNT(c.id) FILTER (WHERE c.state = 'available') AS available_copies,
			COUNT(c.id) FILTER (WHERE c.state = 'on_loan')   AS on_loan_copies,
			COUNT(c.id) FILTER (WHERE c.state = 'lost')      AS lost_copies
		FROM books b
		LEFT JOIN copies c ON c.book_id = b.id
		WHERE %s
		GROUP BY b.id
		ORDER BY b.title
		LIMIT $%d OFFSET $%d
	`, where, argPos, argPos+1)

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []model.BookWithAvailability
	for rows.Next() {
		var b model.BookWithAvailability
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.ISBN, &b.Category, pq.Array(&b.Tags),
			&b.TotalCopies, &b.CreatedAt, &b.UpdatedAt,
			&b.AvailableCopies, &b.OnLoanCopies, &b.LostCopies,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan book row: %w", err)
		}
		books = append(books, b)
	}

	return books, total, rows.Err()
}

func (r *postgresRepository) CountBooks(ctx context.Context) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM books").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count books: %w", err)
	}
	return count, nil
}

func (r *postgresRepository) AddCopies(ctx context.Context, bookID uuid.UUID, n int) ([]model.Copy, error) {
	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) ([]model.Copy, error) {
		tag, err := tx.Exec(ctx,
			"UPDATE books SET total_copies = total_copies + $1, updated_at = $2 WHERE id = $3",
			n, time.Now(), bookID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to bump total copies: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, model.NewBookNotFoundError(bookID)
		}

		now := time.Now()
		copies := make([]model.Copy, 0, n)
		rows := make([][]interface{}, 0, n)
		for i := 0; i < n; i++ {
			c := model.Copy{
				ID:        uuid.New(),
				BookID:    bookID,
				State:     model.CopyAvailable,
				CreatedAt: now,
				UpdatedAt: now,
			}
			copies = append(copies, c)
			rows = append(rows, []interface{}{c.ID, c.BookID, c.State, c.CreatedAt, c.UpdatedAt})
		}

		copied, err := tx.CopyFrom(
			ctx,
			pgx.Identifier{"copies"},
			[]string{"id", "book_id", "state", "created_at", "updated_at"},
			pgx.CopyFromRows(rows),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to insert copies: %w", err)
		}
		if copied != int64(n) {
			return nil, fmt.Errorf("expected to insert %d copies, inserted %d", n, copied)
		}

		return copies, nil
	})
}

func (r *postgresRepository) RemoveAvailableCopies(ctx context.Context, bookID uuid.UUID, n int) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		// Lock n available copies; an OnLoan copy never matches, so a copy
		// with an open loan cannot be removed.
		rows, err := tx.Query(ctx, `
			SELECT id FROM copies
			WHERE book_id = $1 AND state = 'available'
			LIMIT $2
			FOR UPDATE SKIP LOCKED
		`, bookID, n)
		if err != nil {
			return fmt.Errorf("failed to lock available copies: %w", err)
		}

		var ids []uuid.UUID
		for rows.Next() {
			var id uuid.UUID
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan copy id: %w", err)
			}
			ids = append(ids, id)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if len(ids) < n {
			return model.NewInsufficientCopiesError(n, len(ids))
		}

		if _, err := tx.Exec(ctx, "DELETE FROM copies WHERE id = ANY($1)", ids); err != nil {
			return fmt.Errorf("failed to delete copies: %w", err)
		}

		tag, err := tx.Exec(ctx,
			"UPDATE books SET total_copies = total_copies - $1, updated_at = $2 WHERE id = $3",
			n, time.Now(), bookID,
		)
		if err != nil {
			return fmt.Errorf("failed to lower total copies: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.NewBookNotFoundError(bookID)
		}

		return nil
	})
}

func (r *postgresRepository) GetCopy(ctx context.Context, copyID uuid.UUID) (*model.Copy, error) {
	query := "SELECT id, book_id, state, created_at, updated_at FROM copies WHERE id = $1"

	var c model.Copy
	err := r.pool.QueryRow(ctx, query, copyID).Scan(&c.ID, &c.BookID, &c.State, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id=%s", model.ErrCopyNotFound, copyID)
		}
		return nil, fmt.Errorf("failed to get copy: %w", err)
	}

	return &c, nil
}

func (r *postgresRepository) ListCopies(ctx context.Context, bookID uuid.UUID) ([]model.Copy, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, book_id, state, created_at, updated_at FROM copies WHERE book_id = $1 ORDER BY created_at",
		bookID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list copies: %w", err)
	}
	defer rows.Close()

	var copies []model.Copy
	for rows.Next() {
		var c model.Copy
		if err := rows.Scan(&c.ID, &c.BookID, &c.State, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan copy: %w", err)
		}
		copies = append(copies, c)
	}

	return copies, rows.Err()
}

func (r *postgresRepository) FindAvailableCopy(ctx context.Context, bookID uuid.UUID) (*model.Copy, error) {
	query := `
		SELECT id, book_id, state, created_at, updated_at
		FROM copies
		WHERE book_id = $1 AND state = 'available'
		LIMIT 1
	`

	var c model.Copy
	err := r.pool.QueryRow(ctx, query, bookID).Scan(&c.ID, &c.BookID, &c.State, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoAvailableCopy
		}
		return nil, fmt.Errorf("failed to find available copy: %w", err)
	}

	return &c, nil
}

func (r *postgresRepository) ClaimAvailableCopy(ctx context.Context, bookID uuid.UUID) (*model.Copy, error) {
	// Single-statement claim: the inner SELECT locks one available row, the
	// UPDATE flips it. Concurrent claims on the last copy cannot both match.
	query := `
		UPDATE copies SET state = 'on_loan', updated_at = $2
		WHERE id = (
			SELECT id FROM copies
			WHERE book_id = $1 AND state = 'available'
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, book_id, state, created_at, updated_at
	`

	var c model.Copy
	err := r.pool.QueryRow(ctx, query, bookID, time.Now()).Scan(&c.ID, &c.BookID, &c.State, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoAvailableCopy
		}
		return nil, fmt.Errorf("failed to claim copy: %w", err)
	}

	return &c, nil
}

func (r *postgresRepository) TransitionCopy(ctx context.Context, copyID uuid.UUID, from, to model.CopyState) error {
	if !model.CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", model.ErrInvalidCopyTransition, from, to)
	}

	tag, err := r.pool.Exec(ctx,
		"UPDATE copies SET state = $1, updated_at = $2 WHERE id = $3 AND state = $4",
		to, time.Now(), copyID, from,
	)
	if err != nil {
		return fmt.Errorf("failed to transition copy: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Either the copy does not exist or its state moved under the caller.
		if _, getErr := r.GetCopy(ctx, copyID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: copy %s is no longer %s", model.ErrInvalidCopyTransition, copyID, from)
	}

	return nil
}
