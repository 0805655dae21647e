package queue

import "context"

// Received is a message pulled from the queue.
type Received struct {
	ID            string
	ReceiptHandle string
	Body          string
}

// Client sends and receives analysis messages.
type Client interface {
	Send(ctx context.Context, msg Message) error
	Receive(ctx context.Context, max int32, wait int32) ([]Received, error)
	Delete(ctx context.Context, receiptHandle string) error
}
