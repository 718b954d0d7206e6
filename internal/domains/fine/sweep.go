package fine

import (
	"context"
	"fmt"
	"time"

	loanrepo "library-backend/internal/domains/loan/repository"
	policyservice "library-backend/internal/domains/policy/service"
	"library-backend/internal/infrastructure/notify"
	"library-backend/pkg/logger"
)

// Sweeper is the periodic fine pass. Each run recomputes the accrued fine on
// every open overdue loan from scratch, so running it twice in a row changes
// nothing: the stored amount is a snapshot, never a running total.
type Sweeper struct {
	loans      loanrepo.Repository
	policy     policyservice.ServiceInterface
	dispatcher notify.Dispatcher
	batchLimit int
}

// NewSweeper creates a fine sweeper. dispatcher may be nil.
func NewSweeper(loans loanrepo.Repository, policy policyservice.ServiceInterface, dispatcher notify.Dispatcher, batchLimit int) *Sweeper {
	if batchLimit < 1 {
		batchLimit = 500
	}
	return &Sweeper{
		loans:      loans,
		policy:     policy,
		dispatcher: dispatcher,
		batchLimit: batchLimit,
	}
}

// Sweep refreshes fine snapshots on open overdue loans as of asOf. It returns
// the number of loans touched.
func (s *Sweeper) Sweep(ctx context.Context, asOf time.Time) (int, error) {
	policy, err := s.policy.Effective(ctx)
	if err != nil {
		return 0, err
	}

	overdue, err := s.loans.ListOpenOverdue(ctx, asOf, s.batchLimit)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue loans: %w", err)
	}

	updated := 0
	for i := range overdue {
		loan := &overdue[i]
		accrued := Evaluate(loan.DueAt, asOf, policy.DailyFineRate, policy.MaxFine)
		if accrued.Equal(loan.FineAmount) {
			continue
		}
		if err := s.loans.UpdateFineSnapshot(ctx, loan.ID, accrued); err != nil {
			logger.Error("Failed to store fine snapshot", err)
			continue
		}
		updated++

		s.dispatch(ctx, notify.Notification{
			ReaderID: loan.ReaderID,
			Kind:     notify.KindOverdue,
			Subject:  "Overdue loan",
			Body:     fmt.Sprintf("Your loan due %s has accrued a fine of %s.", loan.DueAt.Format("2006-01-02"), accrued.StringFixed(2)),
			SentAt:   asOf,
		})
	}

	logger.Info("Fine sweep complete", map[string]interface{}{
		"scanned": len(overdue),
		"updated": updated,
	})

	return updated, nil
}

// RemindDueSoon notifies readers whose open loans fall due within window.
func (s *Sweeper) RemindDueSoon(ctx context.Context, asOf time.Time, window time.Duration) (int, error) {
	due, err := s.loans.ListOpenDueBetween(ctx, asOf, asOf.Add(window))
	if err != nil {
		return 0, fmt.Errorf("failed to list due loans: %w", err)
	}

	for i := range due {
		loan := &due[i]
		s.dispatch(ctx, notify.Notification{
			ReaderID: loan.ReaderID,
			Kind:     notify.KindDueSoon,
			Subject:  "Loan due soon",
			Body:     fmt.Sprintf("Your loan is due %s. Renew or return it in time to avoid fines.", loan.DueAt.Format("2006-01-02")),
			SentAt:   asOf,
		})
	}

	return len(due), nil
}

func (s *Sweeper) dispatch(ctx context.Context, n notify.Notification) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Dispatch(ctx, n); err != nil {
		logger.Error("Failed to dispatch reminder", err)
	}
}
