package queue

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type fakeSQS struct {
	sent     []string
	deleted  []string
	received []types.Message
}

func (f *fakeSQS) SendMessage(ctx context.Context, in *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.sent = append(f.sent, aws.ToString(in.MessageBody))
	return &sqs.SendMessageOutput{MessageId: aws.String("m1")}, nil
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{Messages: f.received}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, in *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func TestSQSClientSendReceiveDelete(t *testing.T) {
	fake := &fakeSQS{}
	client := NewSQSClientWithAPI(fake, "https://sqs.example/queue")
	ctx := context.Background()

	msg := NewMessage("a1", "r1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err := client.Send(ctx, msg); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(fake.sent) != 1 {
		t.Fatalf("expected one sent message, got %d", len(fake.sent))
	}
	decoded, err := DecodeMessage([]byte(fake.sent[0]))
	if err != nil || decoded.AnalysisID != "a1" {
		t.Fatalf("unexpected payload %q: %v", fake.sent[0], err)
	}

	fake.received = []types.Message{{MessageId: aws.String("m1"), ReceiptHandle: aws.String("rh1"), Body: aws.String(fake.sent[0])}}
	got, err := client.Receive(ctx, 10, 20)
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(got) != 1 || got[0].ReceiptHandle != "rh1" {
		t.Fatalf("unexpected received: %+v", got)
	}
	if err := client.Delete(ctx, "rh1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(fake.deleted) != 1 || fake.deleted[0] != "rh1" {
		t.Fatalf("unexpected deletes: %v", fake.deleted)
	}
}
