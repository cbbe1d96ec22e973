package port

import "context"

// Mail is a single outbound message.
type Mail struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Mailer delivers outbound mail. Delivery is fire-and-forget: transport-level
// acceptance is the only confirmation. A non-nil error means the message was
// not handed to the transport.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}
