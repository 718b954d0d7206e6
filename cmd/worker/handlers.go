package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	loanJob "library-backend/internal/domains/loan/job"
	readerRepo "library-backend/internal/domains/reader/repository"
	"library-backend/internal/infrastructure/notify"
	notifyJob "library-backend/internal/infrastructure/notify/job"
	"library-backend/internal/shared"
	"library-backend/internal/shared/utils"
	"library-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	fineSweep    *loanJob.FineSweepHandler
	dueSoon      *loanJob.DueSoonHandler
	notifyReader *notifyJob.NotifyReaderHandler
}

// initializeHandlers creates all job handlers with their dependencies
func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		fineSweep:    loanJob.NewFineSweepHandler(c.Sweeper),
		dueSoon:      loanJob.NewDueSoonHandler(c.Sweeper, c.Config.Job.DueSoonWindow),
		notifyReader: notifyJob.NewNotifyReaderHandler(buildSender(c)),
	}
}

// buildSender picks SMTP delivery when a mail host is configured, otherwise
// notifications land in the worker log.
func buildSender(c *container.Container) notify.Sender {
	if host := os.Getenv("SMTP_HOST"); host != "" {
		port := utils.GetEnvVariable("SMTP_PORT", "1025")
		return notify.NewSMTPSender(host, port, readerDirectory{repo: c.ReaderRepo})
	}
	return notify.NewLogSender()
}

// readerDirectory adapts the reader repository to the sender's address lookup.
type readerDirectory struct {
	repo readerRepo.Repository
}

func (d readerDirectory) EmailFor(ctx context.Context, readerID uuid.UUID) (string, error) {
	reader, err := d.repo.GetByID(ctx, readerID)
	if err != nil {
		return "", err
	}
	return reader.Email, nil
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeFineSweep, h.fineSweep.ProcessTask)
	mux.HandleFunc(shared.TypeDueSoonReminder, h.dueSoon.ProcessTask)
	mux.HandleFunc(shared.TypeNotifyReader, h.notifyReader.ProcessTask)
}
