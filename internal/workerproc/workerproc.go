package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"jobhunt-backend/internal/analyses"
	"jobhunt-backend/internal/queue"
	"jobhunt-backend/internal/shared/metrics"
	"jobhunt-backend/internal/shared/telemetry"
)

// Processor runs a queued analysis.
type Processor interface {
	Process(ctx context.Context, analysisID string) error
}

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

// ErrInvalid indicates a decoded message that fails validation.
type ErrInvalid struct {
	Meta      MessageMeta
	RequestID string
	Err       error
}

func (e ErrInvalid) Error() string { return "invalid message: " + e.Err.Error() }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	AnalysisID string
	RequestID  string
	Err        error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process analysis"
	}
	return "process analysis: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// IsPermanent reports whether redelivering the message cannot succeed.
// Permanent failures are deleted from the queue.
func IsPermanent(err error) bool {
	var empty ErrEmptyBody
	var decode ErrDecode
	var invalid ErrInvalid
	return errors.As(err, &empty) || errors.As(err, &decode) || errors.As(err, &invalid) ||
		errors.Is(err, analyses.ErrNotFound)
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}
	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if err := msg.Validate(); err != nil {
		return msg, meta, ErrInvalid{Meta: meta, RequestID: msg.RequestID, Err: err}
	}
	return msg, meta, nil
}

// HandleMessage parses, validates, and processes a message payload.
func HandleMessage(ctx context.Context, processor Processor, body string) error {
	if processor == nil {
		return errors.New("analysis processor not configured")
	}
	metrics.IncQueueMessage("received")

	msg, meta, err := ParseMessage(body)
	if err != nil {
		metrics.IncQueueMessage("dropped")
		telemetry.Warn("worker.message_invalid", map[string]any{
			"body_len": meta.BodyLen,
			"body_sha": meta.BodySHA,
			"error":    err,
		})
		return err
	}

	ctx = analyses.WithRequestID(ctx, msg.RequestID)
	if err := processor.Process(ctx, msg.AnalysisID); err != nil {
		outcome := "retry"
		if IsPermanent(err) {
			outcome = "dropped"
		}
		metrics.IncQueueMessage(outcome)
		return ErrProcess{AnalysisID: msg.AnalysisID, RequestID: msg.RequestID, Err: err}
	}
	metrics.IncQueueMessage("completed")
	return nil
}
