package gmail

import (
	"context"
	"log/slog"
	"time"
)

// Source lists unread messages.
type Source interface {
	Unread(ctx context.Context, query string, max int64) ([]Message, error)
}

// Poller checks for new mail from watched senders periodically and hands
// each message to the handler once.
type Poller struct {
	source   Source
	query    string
	interval time.Duration
	handler  func(Message) error
	logger   *slog.Logger
	seen     map[string]bool
}

// NewPoller creates a new Poller
func NewPoller(source Source, senders []string, interval time.Duration, handler func(Message) error, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Poller{
		source:   source,
		query:    UnreadQuery(senders),
		interval: interval,
		handler:  handler,
		logger:   logger,
		seen:     map[string]bool{},
	}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.Poll(ctx); err != nil {
			p.logger.Warn("gmail poll failed", "error", err)
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

// Poll runs one check. Messages whose handler fails are retried next time.
func (p *Poller) Poll(ctx context.Context) error {
	msgs, err := p.source.Unread(ctx, p.query, 25)
	if err != nil {
		return err
	}

	for _, msg := range msgs {
		if p.seen[msg.ID] {
			continue
		}
		if err := p.handler(msg); err != nil {
			p.logger.Warn("failed to handle email", "id", msg.ID, "error", err)
			continue
		}
		p.seen[msg.ID] = true
	}
	return nil
}
