package notify

import (
	"context"

	"github.com/rs/zerolog/log"
)

// LogSender writes notices to the structured log. It stands in for a real
// delivery channel (email, push) which is an external collaborator.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(_ context.Context, n Notification) error {
	log.Info().
		Str("reader_id", n.ReaderID.String()).
		Str("kind", string(n.Kind)).
		Str("subject", n.Subject).
		Msg("Notification delivered")
	return nil
}
