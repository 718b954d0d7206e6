package notify

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/google/uuid"
)

// ReaderDirectory resolves a reader id to a deliverable address.
type ReaderDirectory interface {
	EmailFor(ctx context.Context, readerID uuid.UUID) (string, error)
}

// SMTPSender delivers notifications over plain SMTP. Meant for the dev
// mailcatcher and small deployments; delivery failures bubble up so asynq
// retries the task.
type SMTPSender struct {
	smtpAddr  string
	smtpFrom  string
	directory ReaderDirectory
}

func NewSMTPSender(smtpHost, smtpPort string, directory ReaderDirectory) *SMTPSender {
	return &SMTPSender{
		smtpAddr:  smtpHost + ":" + smtpPort,
		smtpFrom:  "noreply@library.dev",
		directory: directory,
	}
}

func (s *SMTPSender) Send(ctx context.Context, n Notification) error {
	email, err := s.directory.EmailFor(ctx, n.ReaderID)
	if err != nil {
		return fmt.Errorf("resolve reader address: %w", err)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.smtpFrom, email, n.Subject, n.Body))
	return smtp.SendMail(s.smtpAddr, nil, s.smtpFrom, []string{email}, msg)
}
