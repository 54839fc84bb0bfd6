// Command pushworker drains the push notification queue in a loop. Each
// iteration is one blocking pop against Redis followed by chunked dispatch to
// the push gateway; an empty queue simply starts the next poll cycle. The
// scheduler is this loop, nothing fancier.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/redis/go-redis/v9"

	"github.com/campusgate/campusgate"
)

type workerConfig struct {
	RedisAddr       string        `env:"REDIS_ADDR" env-default:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD" env-default:""`
	QueueKey        string        `env:"PUSH_QUEUE_KEY" env-default:"push_notification_queue"`
	ChunkSize       int           `env:"PUSH_CHUNK_SIZE" env-default:"100"`
	PopTimeout      time.Duration `env:"PUSH_POP_TIMEOUT" env-default:"20s"`
	GatewayURL      string        `env:"PUSH_GATEWAY_URL" env-default:"https://exp.host/--/api/v2/push/send"`
	IdleLogInterval time.Duration `env:"IDLE_LOG_INTERVAL" env-default:"5m"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var cfg workerConfig
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		logger.Error("failed to read environment", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})

	dispatcher := campusgate.NewDispatcher(rdb, campusgate.PushConfig{
		QueueKey:   cfg.QueueKey,
		ChunkSize:  cfg.ChunkSize,
		PopTimeout: cfg.PopTimeout,
	}, campusgate.NewHTTPPushGateway(cfg.GatewayURL, nil), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("push worker started",
		"queue", cfg.QueueKey,
		"chunk_size", cfg.ChunkSize,
		"pop_timeout", cfg.PopTimeout.String(),
	)

	lastActivity := time.Now()
	for {
		report, err := dispatcher.RunOnce(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				break
			}
			logger.Error("dispatch cycle failed", "error", err)
			// Back off briefly so a dead Redis does not spin the loop hot.
			select {
			case <-time.After(5 * time.Second):
			case <-ctx.Done():
			}
			continue
		}

		if report.Processed > 0 {
			lastActivity = time.Now()
			logger.Info("dispatched push message",
				"message_id", report.MessageID,
				"processed", report.Processed,
				"succeeded", report.Succeeded,
				"failed", report.Failed,
				"unknown", report.Unknown,
			)
		} else if time.Since(lastActivity) >= cfg.IdleLogInterval {
			lastActivity = time.Now()
			logger.Info("queue idle")
		}

		if ctx.Err() != nil {
			break
		}
	}

	logger.Info("push worker stopped")
}
