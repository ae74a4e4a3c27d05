package email

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/config"
	"github.com/Venkateshvenki404224/chitty-dashboard/pkg/integration/gmail"
)

// GmailChecker counts unread mail from watched senders through the Gmail API.
type GmailChecker struct {
	Source  gmail.Source
	Senders []string
	Timeout time.Duration
	Now     func() time.Time
}

func (c *GmailChecker) Check(ctx context.Context) Result {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	msgs, err := c.Source.Unread(ctx, gmail.UnreadQuery(c.Senders), 50)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return timedOut(timeout, c.Now)
	case err != nil:
		return Result{Status: StatusError, Error: err.Error(), CheckedAt: checkedAt(c.Now)}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d unread", len(msgs))
	if len(c.Senders) > 0 {
		b.WriteString(" from watched senders")
	}
	for _, m := range msgs {
		fmt.Fprintf(&b, "\n- %s: %s", m.From, m.Subject)
	}
	return Result{Status: StatusSuccess, Output: b.String(), CheckedAt: checkedAt(c.Now)}
}

// SenderAddresses returns the addresses of watched senders.
func SenderAddresses(senders []config.Sender) []string {
	out := make([]string, 0, len(senders))
	for _, s := range senders {
		out = append(out, s.Email)
	}
	return out
}
