package campusgate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func newTestDispatcher(t *testing.T, rdb *redis.Client, gateway PushGateway) *Dispatcher {
	t.Helper()

	return NewDispatcher(rdb, PushConfig{
		PopTimeout: 100 * time.Millisecond,
	}, gateway, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func enqueueTestMessage(t *testing.T, rdb *redis.Client, tokenCount int) *pushMessage {
	t.Helper()

	tokens := make([]string, tokenCount)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("ExponentPushToken[%d]", i)
	}
	msg := pushMessage{
		MessageID:  "msg-1",
		PushTokens: tokens,
		Notification: Notification{
			Title: "New reply",
			Body:  "Someone answered your post",
		},
	}

	queue := newPushQueue(rdb, defaultQueueKey)
	if err := queue.Enqueue(context.Background(), msg); err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}
	return &msg
}

func TestDispatcherEmptyQueue(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dispatcher := newTestDispatcher(t, rdb, &mockGateway{})

	report, err := dispatcher.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce on empty queue failed: %v", err)
	}
	if report != (DispatchReport{}) {
		t.Fatalf("expected zero report, got %+v", report)
	}
}

func TestDispatcherChunking(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	gateway := &mockGateway{}
	dispatcher := newTestDispatcher(t, rdb, gateway)
	enqueueTestMessage(t, rdb, 250)

	report, err := dispatcher.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	if len(gateway.calls) != 3 {
		t.Fatalf("expected 3 chunked submissions, got %d", len(gateway.calls))
	}
	for i, want := range []int{100, 100, 50} {
		if got := len(gateway.calls[i].messages); got != want {
			t.Fatalf("chunk %d: expected %d messages, got %d", i+1, want, got)
		}
	}

	if report.Processed != 250 || report.Succeeded != 250 || report.Failed != 0 || report.Unknown != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.MessageID != "msg-1" {
		t.Fatalf("expected message id msg-1, got %q", report.MessageID)
	}
}

func TestDispatcherChunkFailureIsolation(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	gateway := &mockGateway{failOn: map[int]bool{2: true}}
	dispatcher := newTestDispatcher(t, rdb, gateway)
	enqueueTestMessage(t, rdb, 250)

	report, err := dispatcher.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	// The failed middle chunk must not stop chunks one and three.
	if len(gateway.calls) != 3 {
		t.Fatalf("expected all 3 chunks attempted, got %d", len(gateway.calls))
	}
	if report.Succeeded != 150 {
		t.Fatalf("expected 150 delivered, got %d", report.Succeeded)
	}
	if report.Unknown != 100 {
		t.Fatalf("expected 100 unknown, got %d", report.Unknown)
	}
}

func TestDispatcherTicketStatuses(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	gateway := &mockGateway{
		tickets: func(_ int, messages []GatewayMessage) []GatewayTicket {
			tickets := make([]GatewayTicket, len(messages))
			for i := range messages {
				if i%2 == 0 {
					tickets[i] = GatewayTicket{Status: TicketStatusOK, ID: "ticket"}
				} else {
					tickets[i] = GatewayTicket{Status: TicketStatusError, Message: "DeviceNotRegistered"}
				}
			}
			return tickets
		},
	}
	dispatcher := newTestDispatcher(t, rdb, gateway)
	enqueueTestMessage(t, rdb, 10)

	report, err := dispatcher.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if report.Succeeded != 5 || report.Failed != 5 || report.Unknown != 0 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestDispatcherMisalignedTickets(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	gateway := &mockGateway{
		tickets: func(_ int, _ []GatewayMessage) []GatewayTicket {
			return []GatewayTicket{{Status: TicketStatusOK}}
		},
	}
	dispatcher := newTestDispatcher(t, rdb, gateway)
	enqueueTestMessage(t, rdb, 10)

	report, err := dispatcher.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}
	if report.Unknown != 10 || report.Succeeded != 0 {
		t.Fatalf("misaligned tickets must count as unknown, got %+v", report)
	}
}

func TestDispatcherGatewayMessageShape(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	gateway := &mockGateway{}
	dispatcher := newTestDispatcher(t, rdb, gateway)
	enqueueTestMessage(t, rdb, 2)

	if _, err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	msg := gateway.calls[0].messages[0]
	if msg.To != "ExponentPushToken[0]" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if msg.Sound != "default" || msg.Priority != "high" {
		t.Fatalf("expected default sound and high priority, got %+v", msg)
	}
	if msg.Data == nil {
		t.Fatal("nil notification data must be sent as an empty object")
	}
}

func TestDispatcherConsumesMessage(t *testing.T) {
	mr, rdb := newTestRedis(t)
	defer mr.Close()

	dispatcher := newTestDispatcher(t, rdb, &mockGateway{})
	enqueueTestMessage(t, rdb, 3)

	if _, err := dispatcher.RunOnce(context.Background()); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	length, err := newPushQueue(rdb, defaultQueueKey).Len(context.Background())
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if length != 0 {
		t.Fatalf("message must be consumed exactly once, queue length %d", length)
	}
}

func TestChunkTokens(t *testing.T) {
	cases := []struct {
		count, size int
		want        []int
	}{
		{0, 100, nil},
		{1, 100, []int{1}},
		{100, 100, []int{100}},
		{101, 100, []int{100, 1}},
		{250, 100, []int{100, 100, 50}},
	}
	for _, tc := range cases {
		tokens := make([]string, tc.count)
		chunks := chunkTokens(tokens, tc.size)
		if len(chunks) != len(tc.want) {
			t.Fatalf("%d/%d: expected %d chunks, got %d", tc.count, tc.size, len(tc.want), len(chunks))
		}
		for i, want := range tc.want {
			if len(chunks[i]) != want {
				t.Fatalf("%d/%d: chunk %d expected %d, got %d", tc.count, tc.size, i, want, len(chunks[i]))
			}
		}
	}
}
