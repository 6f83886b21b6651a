package mailer

import "context"

// Message is one outbound plaintext email.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

// Mailer delivers a message through an email transport. A failed send
// surfaces immediately; nothing is queued or retried.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}
