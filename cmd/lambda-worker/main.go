package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=amd64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-worker

import (
	"context"
	"log"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"

	"jobhunt-backend/internal/bootstrap"
	"jobhunt-backend/internal/shared/config"
	"jobhunt-backend/internal/workerproc"
)

var (
	initOnce sync.Once
	initErr  error
	proc     workerproc.Processor
)

func initApp() {
	cfg := config.Load()
	built, err := bootstrap.Build(context.Background(), cfg, bootstrap.Options{SkipRouter: true})
	if err != nil {
		initErr = err
		return
	}
	proc = built.AI
}

func handler(ctx context.Context, event events.SQSEvent) (events.SQSEventResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		log.Printf("bootstrap error: %v", initErr)
		return events.SQSEventResponse{BatchItemFailures: failAll(event)}, initErr
	}
	return processBatch(ctx, proc, event), nil
}

// processBatch reports only retryable failures; permanently bad records are
// dropped so they do not cycle through the queue.
func processBatch(ctx context.Context, p workerproc.Processor, event events.SQSEvent) events.SQSEventResponse {
	failures := make([]events.SQSBatchItemFailure, 0)
	for _, record := range event.Records {
		err := workerproc.HandleMessage(ctx, p, record.Body)
		if err != nil && !workerproc.IsPermanent(err) {
			failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
		}
	}
	return events.SQSEventResponse{BatchItemFailures: failures}
}

func failAll(event events.SQSEvent) []events.SQSBatchItemFailure {
	failures := make([]events.SQSBatchItemFailure, 0, len(event.Records))
	for _, record := range event.Records {
		failures = append(failures, events.SQSBatchItemFailure{ItemIdentifier: record.MessageId})
	}
	return failures
}

func main() {
	lambda.Start(handler)
}
