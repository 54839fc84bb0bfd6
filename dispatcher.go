package campusgate

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dispatcher drains the push notification queue and submits provider-sized
// chunks to the push gateway. It is a poll-cycle primitive: RunOnce performs
// exactly one blocking dequeue and is meant to be invoked repeatedly by an
// external scheduler (see cmd/pushworker).
type Dispatcher struct {
	queue   *pushQueue
	gateway PushGateway
	config  PushConfig
	logger  *slog.Logger
	metrics *Metrics
	audit   *auditDispatcher
}

func newDispatcher(engine *Engine, gateway PushGateway) *Dispatcher {
	return &Dispatcher{
		queue:   engine.queue,
		gateway: gateway,
		config:  engine.config.Push,
		logger:  engine.logger,
		metrics: engine.metrics,
		audit:   engine.audit,
	}
}

// NewDispatcher builds a standalone dispatcher for worker processes that only
// drain the queue and never touch the verification engine. cfg zero values
// fall back to the defaults.
func NewDispatcher(redisClient *redis.Client, cfg PushConfig, gateway PushGateway, logger *slog.Logger) *Dispatcher {
	if cfg.QueueKey == "" {
		cfg.QueueKey = defaultQueueKey
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaultChunkSize
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = defaultPopTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		queue:   newPushQueue(redisClient, cfg.QueueKey),
		gateway: gateway,
		config:  cfg,
		logger:  logger,
		metrics: NewMetrics(MetricsConfig{Enabled: true}),
	}
}

// RunOnce blocks up to the configured poll timeout for one queued message and
// dispatches it. An empty queue yields a zero report. Each chunk is handled
// independently: a chunk-level submission failure or malformed ticket array
// marks that chunk's addresses unknown and the remaining chunks still go out.
// Nothing is requeued — one dequeued message gets at most one delivery
// attempt per address.
//
// RunOnce may return an error when input validation, dependency calls, or security checks fail.
// RunOnce does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (d *Dispatcher) RunOnce(ctx context.Context) (DispatchReport, error) {
	if d == nil || d.queue == nil || d.gateway == nil {
		return DispatchReport{}, ErrEngineNotReady
	}

	msg, err := d.queue.PopWait(ctx, d.config.PopTimeout)
	if err != nil {
		return DispatchReport{}, err
	}
	if msg == nil {
		return DispatchReport{}, nil
	}

	report := DispatchReport{
		MessageID: msg.MessageID,
		Processed: len(msg.PushTokens),
	}

	chunks := chunkTokens(msg.PushTokens, d.config.ChunkSize)
	for i, chunk := range chunks {
		d.dispatchChunk(ctx, msg, chunk, i+1, len(chunks), &report)
	}

	d.metrics.Inc(MetricPushDispatched)
	d.metrics.Add(MetricPushDeliverySuccess, uint64(report.Succeeded))
	d.metrics.Add(MetricPushDeliveryFailure, uint64(report.Failed))
	d.metrics.Add(MetricPushDeliveryUnknown, uint64(report.Unknown))

	if d.audit != nil {
		d.audit.Emit(ctx, AuditEvent{
			Timestamp: time.Now(),
			EventType: auditEventPushDispatch,
			Success:   report.Failed == 0 && report.Unknown == 0,
			Metadata: map[string]string{
				"message_id": msg.MessageID,
			},
		})
	}

	return report, nil
}

func (d *Dispatcher) dispatchChunk(ctx context.Context, msg *pushMessage, chunk []string, index, total int, report *DispatchReport) {
	messages := make([]GatewayMessage, len(chunk))
	for i, token := range chunk {
		data := msg.Notification.Data
		if data == nil {
			data = map[string]any{}
		}
		messages[i] = GatewayMessage{
			To:       token,
			Title:    msg.Notification.Title,
			Body:     msg.Notification.Body,
			Data:     data,
			Sound:    "default",
			Priority: "high",
		}
	}

	tickets, err := d.gateway.Send(ctx, messages)
	if err != nil {
		// Chunk failure never aborts the remaining chunks.
		report.Unknown += len(chunk)
		d.logger.ErrorContext(ctx, "push chunk submission failed",
			"message_id", msg.MessageID,
			"chunk", index,
			"chunks", total,
			"addresses", len(chunk),
			"error", err,
		)
		return
	}

	if len(tickets) != len(chunk) {
		report.Unknown += len(chunk)
		d.logger.ErrorContext(ctx, "push gateway returned misaligned ticket array",
			"message_id", msg.MessageID,
			"chunk", index,
			"expected", len(chunk),
			"got", len(tickets),
		)
		return
	}

	for i, ticket := range tickets {
		if ticket.Status == TicketStatusOK {
			report.Succeeded++
			d.logger.InfoContext(ctx, "push delivered",
				"message_id", msg.MessageID,
				"address", chunk[i],
				"ticket_id", ticket.ID,
			)
			continue
		}
		report.Failed++
		d.logger.WarnContext(ctx, "push delivery failed",
			"message_id", msg.MessageID,
			"address", chunk[i],
			"ticket_error", ticket.Message,
		)
	}
}

// chunkTokens partitions tokens into provider-sized chunks; the final chunk
// carries the remainder.
func chunkTokens(tokens []string, size int) [][]string {
	if size <= 0 {
		return [][]string{tokens}
	}

	chunks := make([][]string, 0, (len(tokens)+size-1)/size)
	for start := 0; start < len(tokens); start += size {
		end := start + size
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, tokens[start:end])
	}
	return chunks
}
