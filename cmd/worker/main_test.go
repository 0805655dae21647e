package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jobhunt-backend/internal/analyses"
	"jobhunt-backend/internal/queue"
)

type fakeQueue struct {
	mu       sync.Mutex
	batches  [][]queue.Received
	deleted  []string
	cancel   context.CancelFunc
	received int
}

func (f *fakeQueue) Send(ctx context.Context, msg queue.Message) error { return nil }

func (f *fakeQueue) Receive(ctx context.Context, max int32, wait int32) ([]queue.Received, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.received >= len(f.batches) {
		f.cancel()
		return nil, context.Canceled
	}
	batch := f.batches[f.received]
	f.received++
	return batch, nil
}

func (f *fakeQueue) Delete(ctx context.Context, receiptHandle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, receiptHandle)
	return nil
}

type fakeProcessor struct {
	mu   sync.Mutex
	err  error
	seen []string
}

func (f *fakeProcessor) Process(ctx context.Context, analysisID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, analysisID)
	return f.err
}

func body(t *testing.T, analysisID string) string {
	t.Helper()
	raw, err := queue.EncodeMessage(queue.NewMessage(analysisID, "req-1", time.Now()))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(raw)
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeQueue{}
	proc := &fakeProcessor{}

	handleMessage(context.Background(), client, proc, queue.Received{ID: "m1", ReceiptHandle: "r1", Body: body(t, "analysis-1")})

	if len(client.deleted) != 1 || client.deleted[0] != "r1" {
		t.Fatalf("expected r1 deleted, got %v", client.deleted)
	}
	if len(proc.seen) != 1 || proc.seen[0] != "analysis-1" {
		t.Fatalf("unexpected processed ids %v", proc.seen)
	}
}

func TestWorkerKeepsMessageOnTransientFailure(t *testing.T) {
	client := &fakeQueue{}
	proc := &fakeProcessor{err: errors.New("db unavailable")}

	handleMessage(context.Background(), client, proc, queue.Received{ID: "m2", ReceiptHandle: "r2", Body: body(t, "analysis-2")})

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %v", client.deleted)
	}
}

func TestWorkerDeletesPermanentFailures(t *testing.T) {
	cases := map[string]struct {
		body string
		err  error
	}{
		"invalid json":     {body: "{not json"},
		"empty body":       {body: "  "},
		"missing analysis": {body: `{"version":1}`},
		"unknown analysis": {err: analyses.ErrNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			client := &fakeQueue{}
			proc := &fakeProcessor{err: tc.err}
			b := tc.body
			if b == "" {
				b = body(t, "analysis-x")
			}

			handleMessage(context.Background(), client, proc, queue.Received{ID: "m", ReceiptHandle: "r", Body: b})

			if len(client.deleted) != 1 {
				t.Fatalf("expected delete, got %v", client.deleted)
			}
		})
	}
}

func TestRunDrainsBatchesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	client := &fakeQueue{
		cancel: cancel,
		batches: [][]queue.Received{
			{{ID: "a", ReceiptHandle: "ra", Body: body(t, "analysis-a")}, {ID: "b", ReceiptHandle: "rb", Body: body(t, "analysis-b")}},
			{{ID: "c", ReceiptHandle: "rc", Body: body(t, "analysis-c")}},
		},
	}
	proc := &fakeProcessor{}

	run(ctx, client, proc, 2, time.Second)

	if len(proc.seen) != 3 {
		t.Fatalf("expected 3 processed, got %v", proc.seen)
	}
	if len(client.deleted) != 3 {
		t.Fatalf("expected 3 deletes, got %v", client.deleted)
	}
}
