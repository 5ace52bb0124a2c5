package outbox

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"paperdesk/pkg/mail"
)

func TestRedisOutboxDeliversAndMarksDone(t *testing.T) {
	q, ctx, msg := newPendingOutboxMessage(t)

	mailer := &mail.MemoryMailer{}
	q.handleMessage(ctx, msg, mailer)

	sent := mailer.Messages()
	if len(sent) != 1 {
		t.Fatalf("expected one delivered message, got %d", len(sent))
	}
	if sent[0].To != "a@b.com" || sent[0].Subject != "hello" {
		t.Fatalf("unexpected delivered message: %+v", sent[0])
	}

	jobID, _ := msg.Values["job_id"].(string)
	job, ok, err := q.GetJob(ctx, jobID)
	if err != nil || !ok {
		t.Fatalf("get job: ok=%v err=%v", ok, err)
	}
	if job.Status != StatusDone {
		t.Fatalf("expected done status, got %q", job.Status)
	}

	pending, err := q.client.XPending(ctx, q.stream, q.group).Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	if pending.Count != 0 {
		t.Fatalf("expected no pending messages, got %d", pending.Count)
	}
}

func TestRedisOutboxMarksFailedAfterMaxRetries(t *testing.T) {
	q, ctx, msg := newPendingOutboxMessage(t)
	q.maxRetries = 1

	mailer := &mail.MemoryMailer{FailWith: errors.New("smtp down")}
	q.handleMessage(ctx, msg, mailer)

	jobID, _ := msg.Values["job_id"].(string)
	job, ok, err := q.GetJob(ctx, jobID)
	if err != nil || !ok {
		t.Fatalf("get job: ok=%v err=%v", ok, err)
	}
	if job.Status != StatusFailed {
		t.Fatalf("expected failed status, got %q", job.Status)
	}
	if job.ErrorMessage != "smtp down" {
		t.Fatalf("expected delivery error recorded, got %q", job.ErrorMessage)
	}
}

func TestRedisOutboxRequeuesOnTransientFailure(t *testing.T) {
	q, ctx, msg := newPendingOutboxMessage(t)
	q.maxRetries = 3
	q.retryDelay = 0

	mailer := &mail.MemoryMailer{FailWith: errors.New("smtp down")}
	q.handleMessage(ctx, msg, mailer)

	jobID, _ := msg.Values["job_id"].(string)
	job, ok, err := q.GetJob(ctx, jobID)
	if err != nil || !ok {
		t.Fatalf("get job: ok=%v err=%v", ok, err)
	}
	if job.Status != StatusQueued {
		t.Fatalf("expected requeued status, got %q", job.Status)
	}
	if job.Attempts != 1 {
		t.Fatalf("expected one attempt, got %d", job.Attempts)
	}

	streamLen, err := q.client.XLen(ctx, q.stream).Result()
	if err != nil {
		t.Fatalf("xlen: %v", err)
	}
	if streamLen != 1 {
		t.Fatalf("expected requeued message in stream, got len=%d", streamLen)
	}
}

func newPendingOutboxMessage(t *testing.T) (*RedisOutbox, context.Context, redis.XMessage) {
	t.Helper()

	redisSrv := miniredis.RunT(t)
	q, err := NewRedisOutbox(Config{
		Addr:       redisSrv.Addr(),
		Stream:     "test:mail",
		Group:      "test-group",
		Consumer:   "consumer-1",
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new outbox: %v", err)
	}

	ctx := context.Background()
	q.ensureGroup(ctx)

	if _, err := q.Enqueue(ctx, mail.Message{To: "a@b.com", Subject: "hello", Body: "hi"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	streams, err := q.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: "consumer-1",
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    0,
	}).Result()
	if err != nil {
		t.Fatalf("readgroup: %v", err)
	}
	if len(streams) != 1 || len(streams[0].Messages) != 1 {
		t.Fatalf("expected one pending message, got %+v", streams)
	}
	return q, ctx, streams[0].Messages[0]
}
