package email

import "context"

// Message is a single outbound HTML mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers messages. Implementations must treat delivery as
// best-effort; callers never abort their own operation on a send failure.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
