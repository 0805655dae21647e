package queue

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// CurrentVersion is the message schema version written by Send.
const CurrentVersion = 1

// Message is the payload sent to downstream queue consumers.
type Message struct {
	AnalysisID string `json:"analysisId"`
	RequestID  string `json:"requestId"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// NewMessage stamps a message for analysisID.
func NewMessage(analysisID, requestID string, now time.Time) Message {
	return Message{
		AnalysisID: analysisID,
		RequestID:  requestID,
		EnqueuedAt: now.UTC().Format(time.RFC3339),
		Version:    CurrentVersion,
	}
}

// Validate rejects messages this worker cannot process.
func (m Message) Validate() error {
	if strings.TrimSpace(m.AnalysisID) == "" {
		return errors.New("missing analysisId")
	}
	if m.Version != CurrentVersion {
		return errors.New("unsupported message version")
	}
	return nil
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
