package ai

import (
	"context"
	"sync"
	"time"

	"jobhunt-backend/internal/analyses"
	"jobhunt-backend/internal/queue"
	"jobhunt-backend/internal/shared/telemetry"
)

// QueueDispatcher publishes analyses to the work queue.
type QueueDispatcher struct {
	Client queue.Client
	now    func() time.Time
}

// NewQueueDispatcher constructs a QueueDispatcher.
func NewQueueDispatcher(client queue.Client) *QueueDispatcher {
	return &QueueDispatcher{Client: client, now: time.Now}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, analysisID string) error {
	msg := queue.NewMessage(analysisID, analyses.RequestIDFromContext(ctx), d.now())
	return d.Client.Send(ctx, msg)
}

type processor interface {
	Process(ctx context.Context, analysisID string) error
}

// LocalDispatcher processes analyses in background goroutines. At most
// concurrency run at once; the rest wait for a slot.
type LocalDispatcher struct {
	proc processor
	sem  chan struct{}
	wg   sync.WaitGroup
}

// NewLocalDispatcher constructs a LocalDispatcher.
func NewLocalDispatcher(p processor, concurrency int) *LocalDispatcher {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &LocalDispatcher{proc: p, sem: make(chan struct{}, concurrency)}
}

func (d *LocalDispatcher) Dispatch(ctx context.Context, analysisID string) error {
	bg := analyses.DetachedContext(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.sem <- struct{}{}
		defer func() { <-d.sem }()
		if err := d.proc.Process(bg, analysisID); err != nil {
			telemetry.Error("ai.local_process_failed", map[string]any{
				"analysis_id": analysisID,
				"request_id":  analyses.RequestIDFromContext(bg),
				"error":       err,
			})
		}
	}()
	return nil
}

// Wait blocks until every dispatched analysis has finished or ctx is done.
func (d *LocalDispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
