package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"jobhunt-backend/internal/bootstrap"
	"jobhunt-backend/internal/queue"
	"jobhunt-backend/internal/shared/config"
	"jobhunt-backend/internal/shared/telemetry"
	"jobhunt-backend/internal/workerproc"
)

const (
	receiveBatch              = 10
	receiveWaitSeconds        = 20
	defaultShutdownTimeoutSec = 30
)

func main() {
	cfg := config.Load()
	if cfg.AnalysisQueue == "" {
		log.Fatal("ANALYSIS_QUEUE_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(ctx, cfg, bootstrap.Options{SkipRouter: true})
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}
	defer app.Close(context.Background())

	shutdownTimeout := time.Duration(envInt("WORKER_SHUTDOWN_TIMEOUT_SECONDS", defaultShutdownTimeoutSec)) * time.Second
	log.Printf("worker started queue=%s concurrency=%d", cfg.AnalysisQueue, cfg.WorkerConc)

	run(ctx, app.Queue, app.AI, cfg.WorkerConc, shutdownTimeout)
}

// run polls the queue until ctx is cancelled, processing at most
// concurrency messages at once, then waits up to shutdownTimeout for
// in-flight work.
func run(ctx context.Context, client queue.Client, proc workerproc.Processor, concurrency int, shutdownTimeout time.Duration) {
	sem := make(chan struct{}, max(1, concurrency))
	var wg sync.WaitGroup

pollLoop:
	for {
		select {
		case <-ctx.Done():
			break pollLoop
		default:
		}

		msgs, err := client.Receive(ctx, receiveBatch, receiveWaitSeconds)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
				break pollLoop
			}
			telemetry.Error("worker.receive_failed", map[string]any{"error": err})
			continue
		}

		for _, msg := range msgs {
			select {
			case <-ctx.Done():
				break pollLoop
			case sem <- struct{}{}:
			}
			wg.Add(1)
			go func(m queue.Received) {
				defer wg.Done()
				defer func() { <-sem }()
				// In-flight work finishes even after a shutdown signal.
				handleMessage(context.WithoutCancel(ctx), client, proc, m)
			}(msg)
		}
	}

	telemetry.Info("worker.shutdown", map[string]any{"timeout": shutdownTimeout.String()})
	waitDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitDone)
	}()
	select {
	case <-waitDone:
	case <-time.After(shutdownTimeout):
		telemetry.Warn("worker.shutdown_timeout", nil)
	}
}

// handleMessage processes one message. Successful and permanently failing
// messages are deleted; anything else is left for redelivery.
func handleMessage(ctx context.Context, client queue.Client, proc workerproc.Processor, msg queue.Received) {
	err := workerproc.HandleMessage(ctx, proc, msg.Body)
	fields := map[string]any{"message_id": msg.ID}

	var procErr workerproc.ErrProcess
	if errors.As(err, &procErr) {
		fields["analysis_id"] = procErr.AnalysisID
		if procErr.RequestID != "" {
			fields["request_id"] = procErr.RequestID
		}
	}

	switch {
	case err == nil:
		telemetry.Info("worker.analysis.completed", fields)
	case workerproc.IsPermanent(err):
		fields["error"] = err
		telemetry.Error("worker.analysis.dropped", fields)
	default:
		fields["error"] = err
		telemetry.Error("worker.analysis.failed", fields)
		return
	}

	if msg.ReceiptHandle == "" {
		telemetry.Error("worker.analysis.delete_failed", map[string]any{"message_id": msg.ID, "error": "missing receipt handle"})
		return
	}
	if err := client.Delete(ctx, msg.ReceiptHandle); err != nil {
		telemetry.Error("worker.analysis.delete_failed", map[string]any{"message_id": msg.ID, "error": err})
	}
}

func envInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}
