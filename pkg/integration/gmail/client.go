package gmail

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// Scope is the read-only Gmail scope the dashboard needs.
const Scope = gmail.GmailReadonlyScope

// Message is the header summary of one mail.
type Message struct {
	ID      string `json:"id"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Snippet string `json:"snippet"`
}

// Service wraps the Gmail API service
type Service struct {
	srv  *gmail.Service
	user string
}

// NewService creates a new Gmail service using an authenticated HTTP client.
// Extra options are passed to the API client.
func NewService(ctx context.Context, client *http.Client, opts ...option.ClientOption) (*Service, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	srv, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Gmail client: %w", err)
	}

	return &Service{srv: srv, user: "me"}, nil
}

// Unread lists up to max messages matching query, fetching only the From
// and Subject headers of each.
func (s *Service) Unread(ctx context.Context, query string, max int64) ([]Message, error) {
	call := s.srv.Users.Messages.List(s.user).Q(query).Context(ctx)
	if max > 0 {
		call = call.MaxResults(max)
	}
	r, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve messages: %w", err)
	}

	messages := make([]Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		msg, err := s.srv.Users.Messages.Get(s.user, m.Id).
			Format("metadata").
			MetadataHeaders("From", "Subject").
			Context(ctx).
			Do()
		if err != nil {
			continue // Skip if fail to get details
		}
		messages = append(messages, Message{
			ID:      msg.Id,
			From:    Header(msg, "From"),
			Subject: Header(msg, "Subject"),
			Snippet: msg.Snippet,
		})
	}

	return messages, nil
}

// Header returns the first header named name, ignoring case.
func Header(msg *gmail.Message, name string) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	for _, h := range msg.Payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// UnreadQuery builds a search for unread mail from any of senders.
func UnreadQuery(senders []string) string {
	var from []string
	for _, s := range senders {
		if s = strings.TrimSpace(s); s != "" {
			from = append(from, s)
		}
	}
	switch len(from) {
	case 0:
		return "is:unread"
	case 1:
		return "is:unread from:" + from[0]
	}
	return "is:unread from:(" + strings.Join(from, " OR ") + ")"
}
