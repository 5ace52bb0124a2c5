package outbox

import (
	"context"

	"paperdesk/pkg/mail"
)

// QueueMailer satisfies mail.Mailer by staging messages on the outbox
// instead of delivering inline. A worker drains the stream.
type QueueMailer struct {
	Outbox *RedisOutbox
}

func (m QueueMailer) Send(ctx context.Context, msg mail.Message) error {
	_, err := m.Outbox.Enqueue(ctx, msg)
	return err
}
